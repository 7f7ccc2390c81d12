package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"fruitstore/internal/model"
	"fruitstore/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const maxJSONBody = 1 << 20

// Response is the envelope every endpoint replies with.
type Response struct {
	Success bool              `json:"success"`
	Data    any               `json:"data,omitempty"`
	Error   string            `json:"error,omitempty"`
	Code    string            `json:"code,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// ListMeta accompanies paginated list responses.
type ListMeta struct {
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// writeJSON writes data with the given status code. The status is already sent when
// encoding fails, so the failure is only logged.
func writeJSON(w http.ResponseWriter, status int, data any, logger zerolog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error().Err(err).Int("status", status).Msg("failed to encode response")
	}
}

func writeData(w http.ResponseWriter, status int, data any, logger zerolog.Logger) {
	writeJSON(w, status, Response{Success: true, Data: data}, logger)
}

// writeError maps err to a status code. Domain errors are reported verbatim; anything
// else is logged and hidden behind a generic message.
func writeError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	var de *model.DomainError
	if errors.As(err, &de) {
		status := statusFor(de.Code)
		logger.Warn().Str("code", de.Code).Int("status", status).Msg(de.Message)
		writeJSON(w, status, Response{Error: de.Message, Code: de.Code, Details: de.Details}, logger)
		return
	}

	logger.Error().Err(err).Int("status", http.StatusInternalServerError).Msg("handler error")
	writeJSON(w, http.StatusInternalServerError, Response{
		Error: "internal server error",
		Code:  model.ErrCodeInternalError,
	}, logger)
}

func statusFor(code string) int {
	switch code {
	case model.ErrCodeInvalidJSON, model.ErrCodeValidation, model.ErrCodeInvalidQuantity,
		model.ErrCodeInvalidPrice, model.ErrCodeInvalidFile:
		return http.StatusBadRequest
	case model.ErrCodeUnauthorised:
		return http.StatusUnauthorized
	case model.ErrCodeFruitNotFound, model.ErrCodeOrderNotFound, model.ErrCodePaymentNotFound,
		model.ErrCodeCustomerNotFound, model.ErrCodeUserNotFound:
		return http.StatusNotFound
	case model.ErrCodeInsufficientStock, model.ErrCodePriceMismatch, model.ErrCodeOrderAlreadyCancelled,
		model.ErrCodeOrderCancelled, model.ErrCodeInvalidOrderTransition, model.ErrCodeInvalidPaymentTransition,
		model.ErrCodeDuplicateCustomerEmail, model.ErrCodeDuplicateUserEmail, model.ErrCodeFruitInUse,
		model.ErrCodeCustomerHasOrders:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// decodeJSON reads a single JSON object into dst, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return model.ErrInvalidJSON
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return model.ErrInvalidJSON
	}
	return nil
}

// pathID parses the {id} URL parameter.
func pathID(r *http.Request, notFound error) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, notFound
	}
	return id, nil
}

func queryInt(r *http.Request, key string, def int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, model.NewValidationError("Validation failed", map[string]string{key: "must be an integer"})
	}
	return v, nil
}

func queryUUID(r *http.Request, key string) (*uuid.UUID, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, model.NewValidationError("Validation failed", map[string]string{key: "must be a valid UUID"})
	}
	return &id, nil
}

func queryBool(r *http.Request, key string) (*bool, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, model.NewValidationError("Validation failed", map[string]string{key: "must be true or false"})
	}
	return &v, nil
}

// queryTime accepts RFC 3339 timestamps or plain dates (YYYY-MM-DD, UTC midnight).
func queryTime(r *http.Request, key string) (time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, nil
	}
	return time.Time{}, model.NewValidationError("Validation failed",
		map[string]string{key: "must be a date (YYYY-MM-DD) or RFC 3339 timestamp"})
}

// listParams reads limit and offset.
func listParams(r *http.Request) (limit, offset int, err error) {
	if limit, err = queryInt(r, "limit", 0); err != nil {
		return 0, 0, err
	}
	if offset, err = queryInt(r, "offset", 0); err != nil {
		return 0, 0, err
	}
	return limit, offset, nil
}

// readUpload extracts the multipart "file" field. The caller closes the returned file.
func readUpload(w http.ResponseWriter, r *http.Request, maxBytes int64) (service.Upload, io.Closer, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+1<<20)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		return service.Upload{}, nil, model.ErrInvalidFile
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return service.Upload{}, nil, model.ErrInvalidFile
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	return service.Upload{
		Filename:    header.Filename,
		ContentType: contentType,
		Size:        header.Size,
		Body:        file,
	}, file, nil
}
