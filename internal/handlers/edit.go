package handlers

import (
	"net/http"

	"hazard-admin/internal/models"
	"hazard-admin/internal/services"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// EditHandler drives the single pending edit held by the store.
type EditHandler struct {
	store *services.ZoneStore
	logr  *zap.Logger
}

func NewEditHandler(store *services.ZoneStore, logr *zap.Logger) *EditHandler {
	return &EditHandler{store: store, logr: logr}
}

type editResp struct {
	ZoneID string       `json:"zoneId"`
	Draft  models.Draft `json:"draft"`
}

type radiusReq struct {
	DeltaY float64 `json:"deltaY"`
}

// BeginEdit handles POST /api/v1/zones/{id}/edit
func (h *EditHandler) BeginEdit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	d, err := h.store.BeginEdit(id)
	if err != nil {
		writeServiceError(w, h.logr, err)
		return
	}
	writeData(w, http.StatusOK, editResp{ZoneID: id, Draft: d})
}

// GetEdit handles GET /api/v1/edit
func (h *EditHandler) GetEdit(w http.ResponseWriter, r *http.Request) {
	d, id, ok := h.store.PendingEdit()
	if !ok {
		writeServiceError(w, h.logr, services.ErrNoActiveEdit)
		return
	}
	writeData(w, http.StatusOK, editResp{ZoneID: id, Draft: d})
}

// CommitEdit handles PUT /api/v1/edit
func (h *EditHandler) CommitEdit(w http.ResponseWriter, r *http.Request) {
	var d models.Draft
	if !decodeBody(w, r, &d) {
		return
	}

	z, err := h.store.CommitEdit(r.Context(), d)
	if err != nil {
		writeServiceError(w, h.logr, err)
		return
	}
	writeData(w, http.StatusOK, z)
}

// DiscardEdit handles DELETE /api/v1/edit
func (h *EditHandler) DiscardEdit(w http.ResponseWriter, r *http.Request) {
	h.store.DiscardEdit()
	w.WriteHeader(http.StatusNoContent)
}

// StepRadius handles POST /api/v1/edit/radius with {"deltaY": n}
func (h *EditHandler) StepRadius(w http.ResponseWriter, r *http.Request) {
	var req radiusReq
	if !decodeBody(w, r, &req) {
		return
	}

	d, err := h.store.StepEditRadius(req.DeltaY)
	if err != nil {
		writeServiceError(w, h.logr, err)
		return
	}
	_, id, _ := h.store.PendingEdit()
	writeData(w, http.StatusOK, editResp{ZoneID: id, Draft: d})
}
