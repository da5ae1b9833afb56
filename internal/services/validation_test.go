package services

import (
	"math"
	"testing"
	"time"

	"hazard-admin/internal/catalog"
	"hazard-admin/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZoneValidator_Draft(t *testing.T) {
	v := NewZoneValidator(catalog.Default(), 500)

	tests := []struct {
		name   string
		mutate func(d *models.Draft)
		want   []string
	}{
		{name: "valid", mutate: func(*models.Draft) {}},
		{name: "whitespace name", mutate: func(d *models.Draft) { d.Name = " \t " }, want: []string{"name: is required"}},
		{name: "missing type", mutate: func(d *models.Draft) { d.Type = "" }, want: []string{"type: is required"}},
		{name: "latitude out of range", mutate: func(d *models.Draft) { d.Center = &models.LatLng{Lat: -91, Lng: 57} },
			want: []string{"center.lat: must be a latitude between -90 and 90"}},
		{name: "longitude out of range", mutate: func(d *models.Draft) { d.Center = &models.LatLng{Lat: -20, Lng: 181} },
			want: []string{"center.lng: must be a longitude between -180 and 180"}},
		{name: "infinite radius", mutate: func(d *models.Draft) { d.Radius = math.Inf(1) },
			want: []string{"radius: must be at least 500 meters"}},
		{name: "NaN radius", mutate: func(d *models.Draft) { d.Radius = math.NaN() },
			want: []string{"radius: must be at least 500 meters"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := shelterDraft()
			tt.mutate(&d)
			assert.Equal(t, tt.want, v.Draft(d))
		})
	}
}

func TestZoneValidator_OpenTypeCatalog(t *testing.T) {
	cat, err := catalog.Parse([]byte("severities:\n  - name: high\n    color: \"#f00\"\n"))
	require.NoError(t, err)
	v := NewZoneValidator(cat, 100)

	d := shelterDraft()
	d.Type = "volcano"
	d.Radius = 100
	assert.Empty(t, v.Draft(d))
	assert.Equal(t, 100.0, v.MinRadius())
}

func TestZoneValidator_Record(t *testing.T) {
	v := NewZoneValidator(catalog.Default(), 500)

	z := models.HazardZone{
		ID: "z1", Name: "Flood Plain", Type: "flood", Severity: "medium",
		Center: models.LatLng{Lat: -20.1, Lng: 57.4}, Radius: 600,
		CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	assert.Empty(t, v.Record(z))

	z.ID = ""
	z.CreatedAt = time.Time{}
	assert.Equal(t, []string{"id: is required", "createdAt: is required"}, v.Record(z))
}

func TestValidationError(t *testing.T) {
	err := &ValidationError{Problems: []string{"name: is required", "radius: must be at least 500 meters"}}
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "validation failed: name: is required; radius: must be at least 500 meters", err.Error())

	nf := &NotFoundError{ID: "abc"}
	assert.ErrorIs(t, nf, ErrNotFound)
	assert.NotErrorIs(t, nf, ErrValidation)
}
