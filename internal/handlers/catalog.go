package handlers

import (
	"net/http"

	"hazard-admin/internal/catalog"
	"hazard-admin/internal/models"
)

type CatalogHandler struct {
	catalog   *catalog.Catalog
	minRadius float64
}

func NewCatalogHandler(cat *catalog.Catalog, minRadius float64) *CatalogHandler {
	return &CatalogHandler{catalog: cat, minRadius: minRadius}
}

type catalogResp struct {
	Severities  []catalog.Severity `json:"severities"`
	HazardTypes []string           `json:"hazardTypes"`
	MinRadius   float64            `json:"minRadius"`
	RadiusStep  float64            `json:"radiusStep"`
	DefaultView models.MapView     `json:"defaultView"`
}

// GetCatalog handles GET /api/v1/catalog
func (h *CatalogHandler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	types := h.catalog.HazardTypes
	if types == nil {
		types = []string{}
	}
	writeData(w, http.StatusOK, catalogResp{
		Severities:  h.catalog.Severities,
		HazardTypes: types,
		MinRadius:   h.minRadius,
		RadiusStep:  models.RadiusStep,
		DefaultView: models.DefaultView,
	})
}
