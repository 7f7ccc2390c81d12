package handler

import (
	"net/http"
	"strings"

	"fruitstore/internal/model"
	"fruitstore/internal/service"

	"github.com/rs/zerolog"
)

// CustomerHandler handles customer-related HTTP requests.
type CustomerHandler struct {
	service service.CustomerService
	logger  zerolog.Logger
}

// NewCustomerHandler creates a new customer handler.
func NewCustomerHandler(service service.CustomerService, logger zerolog.Logger) *CustomerHandler {
	return &CustomerHandler{
		service: service,
		logger:  logger.With().Str("handler", "customer").Logger(),
	}
}

type customerList struct {
	Items []model.Customer `json:"items"`
	Meta  ListMeta         `json:"meta"`
}

// Search handles GET /api/customers?q=&limit=&offset= requests.
func (h *CustomerHandler) Search(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := listParams(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	filter := model.CustomerFilter{
		Query:  strings.TrimSpace(r.URL.Query().Get("q")),
		Limit:  limit,
		Offset: offset,
	}
	customers, total, err := h.service.Search(r.Context(), filter)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeData(w, http.StatusOK, customerList{
		Items: customers,
		Meta:  ListMeta{Total: total, Limit: limit, Offset: offset},
	}, h.logger)
}

// Create handles POST /api/customers requests.
func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateCustomerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err, h.logger)
		return
	}

	customer, err := h.service.Create(r.Context(), &req)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeData(w, http.StatusCreated, customer, h.logger)
}

// GetByID handles GET /api/customers/{id} requests.
func (h *CustomerHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, model.ErrCustomerNotFound)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	customer, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeData(w, http.StatusOK, customer, h.logger)
}

// Update handles PUT /api/customers/{id} requests.
func (h *CustomerHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, model.ErrCustomerNotFound)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	var req model.UpdateCustomerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err, h.logger)
		return
	}

	customer, err := h.service.Update(r.Context(), id, &req)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeData(w, http.StatusOK, customer, h.logger)
}

// Delete handles DELETE /api/customers/{id} requests.
func (h *CustomerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, model.ErrCustomerNotFound)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeData(w, http.StatusOK, map[string]string{"message": "Customer deleted"}, h.logger)
}
