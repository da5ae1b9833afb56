package services

import (
	"hazard-admin/internal/models"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/geojson"
)

// point converts a zone center to orb's [lng, lat] order.
func point(c models.LatLng) orb.Point {
	return orb.Point{c.Lng, c.Lat}
}

// FeatureCollection renders zones as GeoJSON point features whose properties
// carry everything a map needs to draw the circle.
func FeatureCollection(zones []models.HazardZone) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, z := range zones {
		f := geojson.NewFeature(point(z.Center))
		f.ID = z.ID
		f.Properties["name"] = z.Name
		f.Properties["type"] = z.Type
		f.Properties["severity"] = z.Severity
		f.Properties["color"] = z.Color
		f.Properties["radius"] = z.Radius
		f.Properties["description"] = z.Description
		f.Properties["createdAt"] = z.CreatedAt
		fc.Append(f)
	}
	return fc
}

// Covers reports whether p lies inside the zone's circle.
func Covers(z models.HazardZone, p models.LatLng) bool {
	return geo.DistanceHaversine(point(z.Center), point(p)) <= z.Radius
}

// Containing returns the zones whose circle covers p, in list order.
func (s *ZoneStore) Containing(p models.LatLng) []models.HazardZone {
	out := []models.HazardZone{}
	for _, z := range s.List() {
		if Covers(z, p) {
			out = append(out, z)
		}
	}
	return out
}
