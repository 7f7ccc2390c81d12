package handler

import (
	"net/http"

	"fruitstore/internal/model"
	"fruitstore/internal/service"

	"github.com/rs/zerolog"
)

// ReportHandler serves the sales and payment reports.
type ReportHandler struct {
	service service.ReportService
	logger  zerolog.Logger
}

// NewReportHandler creates a new report handler.
func NewReportHandler(service service.ReportService, logger zerolog.Logger) *ReportHandler {
	return &ReportHandler{
		service: service,
		logger:  logger.With().Str("handler", "report").Logger(),
	}
}

// Sales handles GET /api/reports/sales?from=&to= requests.
func (h *ReportHandler) Sales(w http.ResponseWriter, r *http.Request) {
	rng, err := dateRange(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	summary, err := h.service.Sales(r.Context(), rng)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeData(w, http.StatusOK, summary, h.logger)
}

// TopFruits handles GET /api/reports/top-fruits?from=&to=&limit= requests.
func (h *ReportHandler) TopFruits(w http.ResponseWriter, r *http.Request) {
	rng, err := dateRange(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	fruits, err := h.service.TopFruits(r.Context(), rng, limit)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeData(w, http.StatusOK, fruits, h.logger)
}

// Payments handles GET /api/reports/payments?from=&to= requests.
func (h *ReportHandler) Payments(w http.ResponseWriter, r *http.Request) {
	rng, err := dateRange(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	breakdown, err := h.service.PaymentBreakdown(r.Context(), rng)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeData(w, http.StatusOK, breakdown, h.logger)
}

func dateRange(r *http.Request) (model.DateRange, error) {
	from, err := queryTime(r, "from")
	if err != nil {
		return model.DateRange{}, err
	}
	to, err := queryTime(r, "to")
	if err != nil {
		return model.DateRange{}, err
	}
	return model.DateRange{From: from, To: to}, nil
}
