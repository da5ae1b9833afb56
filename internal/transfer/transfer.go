// Package transfer reads and writes the hazard-zones.json exchange document.
package transfer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"hazard-admin/internal/models"
)

// FileName is the suggested name for an exported document.
const FileName = "hazard-zones.json"

var (
	ErrParse    = errors.New("invalid JSON")
	ErrFormat   = errors.New("invalid file format")
	ErrTooLarge = errors.New("import document too large")
)

// ParseError means the input was not JSON at all.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string { return fmt.Sprintf("%s: %v", ErrParse, e.Err) }
func (e *ParseError) Unwrap() error { return e.Err }
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// FormatError means the JSON did not have the expected shape.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string { return fmt.Sprintf("%s: %s", ErrFormat, e.Reason) }
func (e *FormatError) Is(target error) bool {
	return target == ErrFormat
}

// Document is the exchange format.
type Document struct {
	LastUpdated time.Time           `json:"lastUpdated"`
	HazardZones []models.HazardZone `json:"hazardZones"`
}

// Export renders zones as an indented document stamped with now.
func Export(zones []models.HazardZone, now time.Time) ([]byte, error) {
	if zones == nil {
		zones = []models.HazardZone{}
	}
	b, err := json.MarshalIndent(Document{LastUpdated: now.UTC(), HazardZones: zones}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode export: %w", err)
	}
	return b, nil
}

// Import decodes a document and returns its zones unvalidated. Reading stops
// after limit bytes; limit <= 0 means no limit.
func Import(r io.Reader, limit int64) ([]models.HazardZone, error) {
	if limit > 0 {
		r = io.LimitReader(r, limit+1)
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read import: %w", err)
	}
	if limit > 0 && int64(len(b)) > limit {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, limit)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(b, &doc); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, &FormatError{Reason: "document must be a JSON object"}
		}
		return nil, &ParseError{Err: err}
	}

	raw, ok := doc["hazardZones"]
	if !ok {
		return nil, &FormatError{Reason: "missing hazardZones"}
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, &FormatError{Reason: "hazardZones must be an array"}
	}

	var zones []models.HazardZone
	if err := json.Unmarshal(raw, &zones); err != nil {
		return nil, &FormatError{Reason: describe(err)}
	}
	if zones == nil {
		zones = []models.HazardZone{}
	}
	return zones, nil
}

func describe(err error) string {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return fmt.Sprintf("hazardZones: field %s must be %s, got %s", typeErr.Field, typeErr.Type, typeErr.Value)
	}
	return "hazardZones: " + err.Error()
}
