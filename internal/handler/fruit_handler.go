package handler

import (
	"net/http"
	"strings"

	"fruitstore/internal/model"
	"fruitstore/internal/service"

	"github.com/rs/zerolog"
)

// FruitHandler handles fruit-related HTTP requests.
type FruitHandler struct {
	service        service.FruitService
	maxUploadBytes int64
	logger         zerolog.Logger
}

// NewFruitHandler creates a new fruit handler.
func NewFruitHandler(service service.FruitService, maxUploadBytes int64, logger zerolog.Logger) *FruitHandler {
	return &FruitHandler{
		service:        service,
		maxUploadBytes: maxUploadBytes,
		logger:         logger.With().Str("handler", "fruit").Logger(),
	}
}

// Search handles GET /api/fruits?q=&sortBy=&order=&page=&limit=&inStock= requests.
func (h *FruitHandler) Search(w http.ResponseWriter, r *http.Request) {
	var (
		filter model.FruitFilter
		err    error
	)
	q := r.URL.Query()
	filter.Query = strings.TrimSpace(q.Get("q"))
	filter.SortBy = model.FruitSort(q.Get("sortBy"))
	filter.SortDesc = strings.EqualFold(q.Get("order"), "desc")

	if filter.Page, err = queryInt(r, "page", 1); err != nil {
		writeError(w, err, h.logger)
		return
	}
	if filter.Limit, err = queryInt(r, "limit", 0); err != nil {
		writeError(w, err, h.logger)
		return
	}
	if filter.InStock, err = queryBool(r, "inStock"); err != nil {
		writeError(w, err, h.logger)
		return
	}

	page, err := h.service.Search(r.Context(), filter)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeData(w, http.StatusOK, page, h.logger)
}

// Create handles POST /api/fruits requests.
func (h *FruitHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateFruitRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err, h.logger)
		return
	}

	fruit, err := h.service.Create(r.Context(), &req)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeData(w, http.StatusCreated, fruit, h.logger)
}

// GetByID handles GET /api/fruits/{id} requests.
func (h *FruitHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, model.ErrFruitNotFound)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	fruit, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeData(w, http.StatusOK, fruit, h.logger)
}

// Update handles PUT /api/fruits/{id} requests.
func (h *FruitHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, model.ErrFruitNotFound)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	var req model.UpdateFruitRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err, h.logger)
		return
	}

	fruit, err := h.service.Update(r.Context(), id, &req)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeData(w, http.StatusOK, fruit, h.logger)
}

// Delete handles DELETE /api/fruits/{id} requests.
func (h *FruitHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, model.ErrFruitNotFound)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeData(w, http.StatusOK, map[string]string{"message": "Fruit deleted"}, h.logger)
}

// StockHistory handles GET /api/fruits/{id}/stock-history requests.
func (h *FruitHandler) StockHistory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, model.ErrFruitNotFound)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	limit, offset, err := listParams(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	page, err := h.service.StockHistory(r.Context(), id, limit, offset)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeData(w, http.StatusOK, page, h.logger)
}

// Stats handles GET /api/fruits/stats requests.
func (h *FruitHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeData(w, http.StatusOK, stats, h.logger)
}

// UploadImage handles multipart POST /api/fruits/{id}/image requests.
func (h *FruitHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, model.ErrFruitNotFound)
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

	fruit, err := h.service.UploadImage(r.Context(), id, upload)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeData(w, http.StatusOK, fruit, h.logger)
}
