package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/starford/gigs/internal/apperr"
)

// Handler serves the exported document.
type Handler struct {
	snap *Snapshot
}

// NewHandler creates a Handler reading from snap.
func NewHandler(snap *Snapshot) *Handler {
	return &Handler{snap: snap}
}

// Gigs handles GET /gigs.json.
func (h *Handler) Gigs(w http.ResponseWriter, r *http.Request) {
	view, err := h.snap.Get()
	if err != nil {
		h.handleErr(w, err)
		return
	}

	etag := `"` + view.Checksum + `"`
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "no-cache")
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Last-Modified", view.UpdatedAt.Format(http.TimeFormat))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(view.Document)
}

// Live handles GET /health/live.
func (h *Handler) Live(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{Status: "ok"})
}

// Ready handles GET /health/ready; it succeeds once a document exists.
func (h *Handler) Ready(w http.ResponseWriter, _ *http.Request) {
	view, err := h.snap.Get()
	if err != nil {
		h.handleErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{
		Status:    "ok",
		Count:     view.Count,
		Checksum:  view.Checksum,
		UpdatedAt: view.UpdatedAt.Format(time.RFC3339),
	})
}

func (h *Handler) handleErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperr.ErrNoSnapshot):
		writeJSON(w, http.StatusServiceUnavailable, errorBody(err.Error()))
	default:
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}
