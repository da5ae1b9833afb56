package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"hazard-admin/internal/services"
	"hazard-admin/internal/transfer"

	"github.com/paulmach/orb/geojson"
	"go.uber.org/zap"
)

// Error codes returned in the "code" field of failed responses.
const (
	CodeValidationFailed = "validation_failed"
	CodeInvalidJSON      = "invalid_json"
	CodeInvalidFormat    = "invalid_format"
	CodeInvalidQuery     = "invalid_query"
	CodeTooLarge         = "payload_too_large"
	CodeZoneNotFound     = "zone_not_found"
	CodeNoActiveEdit     = "no_active_edit"
	CodeUnauthorized     = "unauthorized"
	CodeInternal         = "internal_error"
)

type errorResponse struct {
	Success bool     `json:"success"`
	Error   string   `json:"error"`
	Code    string   `json:"code"`
	Details []string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data == nil {
		return
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(data)
}

// writeGeoJSON encodes fc before sending any header so an encoding failure
// still reaches the client as a 500.
func writeGeoJSON(w http.ResponseWriter, logr *zap.Logger, fc *geojson.FeatureCollection) {
	b, err := fc.MarshalJSON()
	if err != nil {
		writeServiceError(w, logr, fmt.Errorf("encode geojson: %w", err))
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, map[string]any{
		"success": true,
		"data":    data,
	})
}

func writeError(w http.ResponseWriter, status int, code, msg string, details ...string) {
	writeJSON(w, status, errorResponse{Error: msg, Code: code, Details: details})
}

// writeServiceError maps domain errors to HTTP responses. Anything it does not
// recognise is logged and reported as a 500 without leaking the cause.
func writeServiceError(w http.ResponseWriter, logr *zap.Logger, err error) {
	var (
		verr  *services.ValidationError
		nf    *services.NotFoundError
		perr  *transfer.ParseError
		fmerr *transfer.FormatError
		mbErr *http.MaxBytesError
	)

	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "validation failed", verr.Problems...)
	case errors.As(err, &nf):
		writeError(w, http.StatusNotFound, CodeZoneNotFound, "hazard zone not found", nf.ID)
	case errors.Is(err, services.ErrNoActiveEdit):
		writeError(w, http.StatusConflict, CodeNoActiveEdit, err.Error())
	case errors.As(err, &perr):
		writeError(w, http.StatusBadRequest, CodeInvalidJSON, "Invalid JSON file", perr.Err.Error())
	case errors.As(err, &fmerr):
		writeError(w, http.StatusBadRequest, CodeInvalidFormat, "Invalid file format", fmerr.Reason)
	case errors.Is(err, transfer.ErrTooLarge), errors.As(err, &mbErr):
		writeError(w, http.StatusRequestEntityTooLarge, CodeTooLarge, "import document too large")
	default:
		logr.Error("request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, CodeInternal, "internal server error")
	}
}

// decodeBody reads a JSON request body into v, answering 400 on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, CodeInvalidJSON, "invalid payload", err.Error())
		return false
	}
	return true
}
