package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStepRadius(t *testing.T) {
	cases := []struct {
		name    string
		current float64
		deltaY  float64
		want    float64
	}{
		{"scroll up grows", 1000, -3, 1500},
		{"scroll down shrinks", 1500, 3, 1000},
		{"zero delta grows", 1000, 0, 1500},
		{"floor at minimum", 500, 1, 500},
		{"below minimum clamps", 700, 1, 500},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, StepRadius(c.current, c.deltaY, 500))
		})
	}
}

func TestDraftFrom_CopiesCenter(t *testing.T) {
	z := HazardZone{
		ID:        "z1",
		Name:      "Port Louis Flood Plain",
		Type:      "flood",
		Severity:  "medium",
		Color:     "#f39c12",
		Center:    LatLng{Lat: -20.16, Lng: 57.50},
		Radius:    1500,
		CreatedAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	d := DraftFrom(z)
	d.Center.Lat = 0

	assert.Equal(t, -20.16, z.Center.Lat, "draft must not alias the zone")
	assert.Equal(t, "Port Louis Flood Plain", d.Name)
	assert.Equal(t, 1500.0, d.Radius)
}

func TestViewOf(t *testing.T) {
	v := ViewOf(HazardZone{Center: LatLng{Lat: -20.3, Lng: 57.5}})
	assert.Equal(t, MapView{Center: LatLng{Lat: -20.3, Lng: 57.5}, Zoom: 12}, v)
}

func TestHazardZoneDecode_CenterPresence(t *testing.T) {
	tests := []struct {
		name   string
		center string
		placed bool
	}{
		{"both components", `,"center":{"lat":-20.16,"lng":57.5}`, true},
		{"origin", `,"center":{"lat":0,"lng":0}`, true},
		{"missing", ``, false},
		{"null", `,"center":null`, false},
		{"empty object", `,"center":{}`, false},
		{"lat only", `,"center":{"lat":-20}`, false},
		{"null lng", `,"center":{"lat":-20,"lng":null}`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var z HazardZone
			require.NoError(t, json.Unmarshal([]byte(`{"id":"z1","radius":800`+tt.center+`}`), &z))
			assert.Equal(t, "z1", z.ID)
			assert.Equal(t, 800.0, z.Radius)
			assert.Equal(t, tt.placed, z.Center.Placed())
		})
	}
}

func TestHazardZoneDecode_EqualsBuiltZone(t *testing.T) {
	built := HazardZone{ID: "z1", Center: LatLng{Lat: -20.16, Lng: 57.5}, Radius: 800}
	b, err := json.Marshal(built)
	require.NoError(t, err)

	var decoded HazardZone
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, built, decoded)
}
