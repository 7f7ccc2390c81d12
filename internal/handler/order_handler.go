package handler

import (
	"net/http"

	"fruitstore/internal/model"
	"fruitstore/internal/service"

	"github.com/rs/zerolog"
)

// OrderHandler handles order-related HTTP requests.
type OrderHandler struct {
	service service.OrderService
	logger  zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(service service.OrderService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logger:  logger.With().Str("handler", "order").Logger(),
	}
}

// Create handles POST /api/orders requests.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateOrderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err, h.logger)
		return
	}

	order, err := h.service.CreateOrder(r.Context(), &req)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeData(w, http.StatusCreated, order, h.logger)
}

// GetByID handles GET /api/orders/{id} requests.
func (h *OrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, model.ErrOrderNotFound)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	order, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeData(w, http.StatusOK, order, h.logger)
}

// List handles GET /api/orders?customerId=&userId=&status=&limit=&offset= requests.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := orderFilter(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	orders, err := h.service.List(r.Context(), filter)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeData(w, http.StatusOK, orders, h.logger)
}

// Update handles PATCH /api/orders/{id} requests.
func (h *OrderHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, model.ErrOrderNotFound)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	var req model.UpdateOrderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err, h.logger)
		return
	}

	order, err := h.service.UpdateOrder(r.Context(), id, &req)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeData(w, http.StatusOK, order, h.logger)
}

// Cancel handles POST /api/orders/{id}/cancel requests.
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, model.ErrOrderNotFound)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	order, err := h.service.CancelOrder(r.Context(), id)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeData(w, http.StatusOK, order, h.logger)
}

func orderFilter(r *http.Request) (model.OrderFilter, error) {
	var (
		filter model.OrderFilter
		err    error
	)
	if filter.Limit, filter.Offset, err = listParams(r); err != nil {
		return filter, err
	}
	if filter.CustomerID, err = queryUUID(r, "customerId"); err != nil {
		return filter, err
	}
	if filter.UserID, err = queryUUID(r, "userId"); err != nil {
		return filter, err
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := model.OrderStatus(raw)
		filter.Status = &status
	}
	return filter, nil
}
