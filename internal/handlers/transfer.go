package handlers

import (
	"fmt"
	"io"
	"mime"
	"net/http"

	"hazard-admin/internal/services"
	"hazard-admin/internal/transfer"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// ImportRecorder counts import outcomes.
type ImportRecorder interface {
	ImportAccepted()
	ImportRejected()
}

type TransferHandler struct {
	store    *services.ZoneStore
	maxBytes int64
	clock    clockwork.Clock
	recorder ImportRecorder
	logr     *zap.Logger
}

func NewTransferHandler(store *services.ZoneStore, maxBytes int64, clock clockwork.Clock, recorder ImportRecorder, logr *zap.Logger) *TransferHandler {
	return &TransferHandler{store: store, maxBytes: maxBytes, clock: clock, recorder: recorder, logr: logr}
}

// Export handles GET /api/v1/transfer/export
func (h *TransferHandler) Export(w http.ResponseWriter, r *http.Request) {
	b, err := transfer.Export(h.store.List(), h.clock.Now())
	if err != nil {
		writeServiceError(w, h.logr, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", transfer.FileName))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

// Import handles POST /api/v1/transfer/import. The document is either the raw
// request body or the multipart field "file".
func (h *TransferHandler) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+(1<<20))

	src, closeSrc, err := h.source(r)
	if err != nil {
		h.reject()
		writeError(w, http.StatusBadRequest, CodeInvalidFormat, "Invalid file format", err.Error())
		return
	}
	defer closeSrc()

	zones, err := transfer.Import(src, h.maxBytes)
	if err == nil {
		err = h.store.ReplaceAll(r.Context(), zones)
	}
	if err != nil {
		h.reject()
		writeServiceError(w, h.logr, err)
		return
	}

	if h.recorder != nil {
		h.recorder.ImportAccepted()
	}
	h.logr.Info("hazard zones imported", zap.Int("count", len(zones)))
	writeData(w, http.StatusOK, map[string]any{
		"imported": len(zones),
		"message":  fmt.Sprintf("Successfully imported %d hazard zones", len(zones)),
	})
}

func (h *TransferHandler) source(r *http.Request) (io.Reader, func(), error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		return r.Body, func() {}, nil
	}

	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		return nil, nil, fmt.Errorf("read multipart form: %w", err)
	}
	f, _, err := r.FormFile("file")
	if err != nil {
		return nil, nil, fmt.Errorf("multipart field \"file\" is required")
	}
	return f, func() { _ = f.Close() }, nil
}

func (h *TransferHandler) reject() {
	if h.recorder != nil {
		h.recorder.ImportRejected()
	}
}
