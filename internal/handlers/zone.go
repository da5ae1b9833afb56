package handlers

import (
	"net/http"
	"strconv"

	"hazard-admin/internal/models"
	"hazard-admin/internal/services"
	"hazard-admin/internal/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type ZoneHandler struct {
	store *services.ZoneStore
	logr  *zap.Logger
}

func NewZoneHandler(store *services.ZoneStore, logr *zap.Logger) *ZoneHandler {
	return &ZoneHandler{store: store, logr: logr}
}

// ListZones handles GET /api/v1/zones
// Optional filters: ?severity=high,medium&type=flood
func (h *ZoneHandler) ListZones(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	zones := h.store.Filter(
		utils.ParseQueryList(q, "severity"),
		utils.ParseQueryList(q, "type"),
	)

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    zones,
		"total":   len(zones),
	})
}

// CreateZone handles POST /api/v1/zones
func (h *ZoneHandler) CreateZone(w http.ResponseWriter, r *http.Request) {
	var d models.Draft
	if !decodeBody(w, r, &d) {
		return
	}

	z, err := h.store.Create(r.Context(), d)
	if err != nil {
		writeServiceError(w, h.logr, err)
		return
	}
	writeData(w, http.StatusCreated, z)
}

// ClearZones handles DELETE /api/v1/zones
func (h *ZoneHandler) ClearZones(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Clear(r.Context()); err != nil {
		writeServiceError(w, h.logr, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type draftRadiusReq struct {
	Draft  models.Draft `json:"draft"`
	DeltaY float64      `json:"deltaY"`
}

// StepDraftRadius handles POST /api/v1/zones/draft/radius with
// {"draft": {...}, "deltaY": n} while a new zone is being drawn.
func (h *ZoneHandler) StepDraftRadius(w http.ResponseWriter, r *http.Request) {
	var req draftRadiusReq
	if !decodeBody(w, r, &req) {
		return
	}
	writeData(w, http.StatusOK, h.store.StepDraftRadius(req.Draft, req.DeltaY))
}

// GetGeoJSON handles GET /api/v1/zones/geojson
func (h *ZoneHandler) GetGeoJSON(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	zones := h.store.Filter(
		utils.ParseQueryList(q, "severity"),
		utils.ParseQueryList(q, "type"),
	)
	writeGeoJSON(w, h.logr, services.FeatureCollection(zones))
}

// GetContaining handles GET /api/v1/zones/containing?lat=&lng=
func (h *ZoneHandler) GetContaining(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lat, errLat := strconv.ParseFloat(q.Get("lat"), 64)
	lng, errLng := strconv.ParseFloat(q.Get("lng"), 64)
	if errLat != nil || errLng != nil || lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		writeError(w, http.StatusBadRequest, CodeInvalidQuery, "lat and lng must be valid coordinates")
		return
	}

	zones := h.store.Containing(models.LatLng{Lat: lat, Lng: lng})
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    zones,
		"total":   len(zones),
	})
}

// GetZone handles GET /api/v1/zones/{id}
func (h *ZoneHandler) GetZone(w http.ResponseWriter, r *http.Request) {
	z, err := h.store.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.logr, err)
		return
	}
	writeData(w, http.StatusOK, z)
}

// GetZoneView handles GET /api/v1/zones/{id}/view
func (h *ZoneHandler) GetZoneView(w http.ResponseWriter, r *http.Request) {
	z, err := h.store.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.logr, err)
		return
	}
	writeData(w, http.StatusOK, models.ViewOf(z))
}

// UpdateZone handles PUT /api/v1/zones/{id}
func (h *ZoneHandler) UpdateZone(w http.ResponseWriter, r *http.Request) {
	var d models.Draft
	if !decodeBody(w, r, &d) {
		return
	}

	z, err := h.store.Update(r.Context(), chi.URLParam(r, "id"), d)
	if err != nil {
		writeServiceError(w, h.logr, err)
		return
	}
	writeData(w, http.StatusOK, z)
}

// DeleteZone handles DELETE /api/v1/zones/{id}
func (h *ZoneHandler) DeleteZone(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, h.logr, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
