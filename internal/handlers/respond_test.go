package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"hazard-admin/internal/services"
	"hazard-admin/internal/transfer"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestWriteServiceError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", &services.ValidationError{Problems: []string{"name: is required"}}, http.StatusBadRequest, CodeValidationFailed},
		{"wrapped not found", fmt.Errorf("update: %w", &services.NotFoundError{ID: "x"}), http.StatusNotFound, CodeZoneNotFound},
		{"no edit", services.ErrNoActiveEdit, http.StatusConflict, CodeNoActiveEdit},
		{"parse", &transfer.ParseError{Err: errors.New("unexpected end")}, http.StatusBadRequest, CodeInvalidJSON},
		{"format", &transfer.FormatError{Reason: "missing hazardZones"}, http.StatusBadRequest, CodeInvalidFormat},
		{"too large", fmt.Errorf("%w: more than 10 bytes", transfer.ErrTooLarge), http.StatusRequestEntityTooLarge, CodeTooLarge},
		{"storage", errors.New("persist hazard zones: quota exceeded"), http.StatusInternalServerError, CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeServiceError(rec, zap.NewNop(), tt.err)

			assert.Equal(t, tt.status, rec.Code)
			var body errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.code, body.Code)
			assert.False(t, body.Success)
		})
	}
}

func TestWriteServiceError_HidesInternalCause(t *testing.T) {
	rec := httptest.NewRecorder()
	writeServiceError(rec, zap.NewNop(), errors.New("dial tcp 10.0.0.5:5432: refused"))
	assert.NotContains(t, rec.Body.String(), "10.0.0.5")
}

func TestWriteServiceError_ValidationDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	writeServiceError(rec, zap.NewNop(), &services.ValidationError{Problems: []string{"a", "b"}})

	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{"a", "b"}, body.Details)
}

func TestWriteGeoJSON(t *testing.T) {
	fc := geojson.NewFeatureCollection()
	f := geojson.NewFeature(orb.Point{57.5, -20.16})
	f.Properties["radius"] = 800.0
	fc.Append(f)

	rec := httptest.NewRecorder()
	writeGeoJSON(rec, zap.NewNop(), fc)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/geo+json", rec.Header().Get("Content-Type"))
	got, err := geojson.UnmarshalFeatureCollection(rec.Body.Bytes())
	require.NoError(t, err)
	require.Len(t, got.Features, 1)
	assert.Equal(t, 800.0, got.Features[0].Properties["radius"])
}

func TestWriteGeoJSON_EncodeFailureIs500(t *testing.T) {
	fc := geojson.NewFeatureCollection()
	f := geojson.NewFeature(orb.Point{57.5, -20.16})
	f.Properties["radius"] = math.NaN()
	fc.Append(f)

	rec := httptest.NewRecorder()
	writeGeoJSON(rec, zap.NewNop(), fc)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, CodeInternal, body.Code)
}
