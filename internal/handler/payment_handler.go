package handler

import (
	"net/http"

	"fruitstore/internal/model"
	"fruitstore/internal/service"

	"github.com/rs/zerolog"
)

// PaymentHandler handles payment-related HTTP requests.
type PaymentHandler struct {
	service        service.PaymentService
	maxUploadBytes int64
	logger         zerolog.Logger
}

// NewPaymentHandler creates a new payment handler.
func NewPaymentHandler(service service.PaymentService, maxUploadBytes int64, logger zerolog.Logger) *PaymentHandler {
	return &PaymentHandler{
		service:        service,
		maxUploadBytes: maxUploadBytes,
		logger:         logger.With().Str("handler", "payment").Logger(),
	}
}

// Create handles POST /api/payments requests.
func (h *PaymentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreatePaymentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err, h.logger)
		return
	}

	payment, err := h.service.CreatePayment(r.Context(), &req)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeData(w, http.StatusCreated, payment, h.logger)
}

// GetByID handles GET /api/payments/{id} requests.
func (h *PaymentHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, model.ErrPaymentNotFound)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	payment, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeData(w, http.StatusOK, payment, h.logger)
}

// List handles GET /api/payments?orderId=&status=&limit=&offset= requests.
func (h *PaymentHandler) List(w http.ResponseWriter, r *http.Request) {
	var (
		filter model.PaymentFilter
		err    error
	)
	if filter.Limit, filter.Offset, err = listParams(r); err != nil {
		writeError(w, err, h.logger)
		return
	}
	if filter.OrderID, err = queryUUID(r, "orderId"); err != nil {
		writeError(w, err, h.logger)
		return
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := model.PaymentStatus(raw)
		filter.Status = &status
	}

	payments, err := h.service.List(r.Context(), filter)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeData(w, http.StatusOK, payments, h.logger)
}

// ListByOrder handles GET /api/orders/{id}/payments requests.
func (h *PaymentHandler) ListByOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathID(r, model.ErrOrderNotFound)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	payments, err := h.service.ListByOrder(r.Context(), orderID)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeData(w, http.StatusOK, payments, h.logger)
}

// Approve handles POST /api/payments/{id}/approve requests.
func (h *PaymentHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, model.ErrPaymentNotFound)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	payment, err := h.service.ApprovePayment(r.Context(), id)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeData(w, http.StatusOK, payment, h.logger)
}

// Reject handles POST /api/payments/{id}/reject requests.
func (h *PaymentHandler) Reject(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, model.ErrPaymentNotFound)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	payment, err := h.service.RejectPayment(r.Context(), id)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeData(w, http.StatusOK, payment, h.logger)
}

// AttachProof handles POST /api/orders/{id}/payment-proof requests with a JSON proofUrl.
func (h *PaymentHandler) AttachProof(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathID(r, model.ErrOrderNotFound)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	var req model.AttachProofRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err, h.logger)
		return
	}

	payment, err := h.service.AttachProof(r.Context(), orderID, req.ProofURL)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeData(w, http.StatusOK, payment, h.logger)
}

// UploadProof handles multipart POST /api/orders/{id}/payment-proof/upload requests.
func (h *PaymentHandler) UploadProof(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathID(r, model.ErrOrderNotFound)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	upload, file, err := readUpload(w, r, h.maxUploadBytes)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	defer file.Close()

	payment, err := h.service.UploadProof(r.Context(), orderID, upload)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeData(w, http.StatusOK, payment, h.logger)
}

// Summary handles GET /api/payments/summary requests.
func (h *PaymentHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context())
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeData(w, http.StatusOK, summary, h.logger)
}
