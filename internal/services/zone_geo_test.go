package services

import (
	"context"
	"encoding/json"
	"testing"

	"hazard-admin/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCovers(t *testing.T) {
	z := models.HazardZone{Center: models.LatLng{Lat: -20.16, Lng: 57.5}, Radius: 1000}

	assert.True(t, Covers(z, models.LatLng{Lat: -20.16, Lng: 57.5}))
	// ~555m north
	assert.True(t, Covers(z, models.LatLng{Lat: -20.155, Lng: 57.5}))
	// ~2.2km north
	assert.False(t, Covers(z, models.LatLng{Lat: -20.14, Lng: 57.5}))
}

func TestContaining(t *testing.T) {
	f := newStoreFixture(t)
	ctx := context.Background()

	near := shelterDraft()
	near.Radius = 1000
	_, err := f.store.Create(ctx, near)
	require.NoError(t, err)

	far := shelterDraft()
	far.Name = "Far"
	far.Center = &models.LatLng{Lat: -20.5, Lng: 57.3}
	_, err = f.store.Create(ctx, far)
	require.NoError(t, err)

	got := f.store.Containing(models.LatLng{Lat: -20.161, Lng: 57.501})
	require.Len(t, got, 1)
	assert.Equal(t, "Cyclone Shelter Area", got[0].Name)

	assert.Empty(t, f.store.Containing(models.LatLng{Lat: 10, Lng: 10}))
}

func TestFeatureCollection(t *testing.T) {
	zones := []models.HazardZone{{
		ID: "z1", Name: "Port Louis", Type: "flood", Severity: "high", Color: "#e74c3c",
		Center: models.LatLng{Lat: -20.16, Lng: 57.5}, Radius: 1500, CreatedAt: testEpoch,
	}}

	b, err := json.Marshal(FeatureCollection(zones))
	require.NoError(t, err)

	var doc struct {
		Type     string `json:"type"`
		Features []struct {
			ID       string `json:"id"`
			Geometry struct {
				Type        string    `json:"type"`
				Coordinates []float64 `json:"coordinates"`
			} `json:"geometry"`
			Properties map[string]any `json:"properties"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal(b, &doc))

	assert.Equal(t, "FeatureCollection", doc.Type)
	require.Len(t, doc.Features, 1)
	feat := doc.Features[0]
	assert.Equal(t, "z1", feat.ID)
	assert.Equal(t, "Point", feat.Geometry.Type)
	assert.Equal(t, []float64{57.5, -20.16}, feat.Geometry.Coordinates)
	assert.Equal(t, "#e74c3c", feat.Properties["color"])
	assert.Equal(t, 1500.0, feat.Properties["radius"])
}

func TestFeatureCollection_Empty(t *testing.T) {
	b, err := json.Marshal(FeatureCollection(nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"FeatureCollection","features":[]}`, string(b))
}
