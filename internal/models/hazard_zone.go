package models

import (
	"encoding/json"
	"time"
)

// LatLng is a WGS84 coordinate in decimal degrees.
type LatLng struct {
	Lat float64 `json:"lat" validate:"lat"`
	Lng float64 `json:"lng" validate:"lng"`

	// unplaced is set when a decoded document left out lat, lng or the
	// whole object. The zero value is a placed coordinate.
	unplaced bool
}

// Placed reports whether both components were present when c was decoded.
// Coordinates built in code are always placed.
func (c LatLng) Placed() bool {
	return !c.unplaced
}

func (c *LatLng) UnmarshalJSON(b []byte) error {
	var raw struct {
		Lat *float64 `json:"lat"`
		Lng *float64 `json:"lng"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*c = LatLng{}
	if raw.Lat != nil {
		c.Lat = *raw.Lat
	}
	if raw.Lng != nil {
		c.Lng = *raw.Lng
	}
	c.unplaced = raw.Lat == nil || raw.Lng == nil
	return nil
}

// HazardZone is a circular area on the map tagged with hazard metadata.
// ID and CreatedAt are assigned once and never change.
type HazardZone struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Type        string    `json:"type"`
	Severity    string    `json:"severity"`
	Color       string    `json:"color"` // derived from Severity
	Center      LatLng    `json:"center"`
	Radius      float64   `json:"radius"` // meters
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

// UnmarshalJSON marks Center as unplaced when the document has no center or
// a null one, so validation can tell it apart from a zone at 0,0.
func (z *HazardZone) UnmarshalJSON(b []byte) error {
	type plain HazardZone
	aux := struct {
		*plain
		Center *LatLng `json:"center"`
	}{plain: (*plain)(z)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	if aux.Center == nil {
		z.Center = LatLng{unplaced: true}
	} else {
		z.Center = *aux.Center
	}
	return nil
}

// Draft is unvalidated user input for creating or updating a zone.
// Center is nil until a geometry has been placed on the map.
type Draft struct {
	Name        string  `json:"name"`
	Type        string  `json:"type"`
	Severity    string  `json:"severity"`
	Color       string  `json:"color,omitempty"` // ignored, color always follows severity
	Center      *LatLng `json:"center"`
	Radius      float64 `json:"radius"`
	Description string  `json:"description"`
}

// DraftFrom prefills a draft with the values of an existing zone.
func DraftFrom(z HazardZone) Draft {
	center := z.Center
	return Draft{
		Name:        z.Name,
		Type:        z.Type,
		Severity:    z.Severity,
		Color:       z.Color,
		Center:      &center,
		Radius:      z.Radius,
		Description: z.Description,
	}
}

// MapView is where the map widget should pan to when a zone is viewed.
type MapView struct {
	Center LatLng `json:"center"`
	Zoom   int    `json:"zoom"`
}

const (
	// ZoneViewZoom is the zoom level used when focusing a single zone.
	ZoneViewZoom = 12

	// RadiusStep is how far one wheel notch grows or shrinks a circle.
	RadiusStep = 500.0
)

// DefaultView centers the admin map on Mauritius.
var DefaultView = MapView{Center: LatLng{Lat: -20.3484, Lng: 57.5522}, Zoom: 10}

// ViewOf returns the map view that focuses z.
func ViewOf(z HazardZone) MapView {
	return MapView{Center: z.Center, Zoom: ZoneViewZoom}
}

// StepRadius applies one wheel notch to a radius. Scrolling down (positive
// deltaY) shrinks the circle, anything else grows it; the result never drops
// below minRadius.
func StepRadius(current, deltaY, minRadius float64) float64 {
	delta := RadiusStep
	if deltaY > 0 {
		delta = -RadiusStep
	}
	next := current + delta
	if next < minRadius {
		return minRadius
	}
	return next
}
