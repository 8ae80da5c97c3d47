package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter creates a chi router serving the snapshot.
// events, if non-nil, is mounted at GET /events.
func NewRouter(snap *Snapshot, events http.Handler, allowOrigin string) chi.Router {
	h := NewHandler(snap)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(CORSMiddleware(allowOrigin))

	r.Get("/health/live", h.Live)
	r.Get("/health/ready", h.Ready)
	r.Get("/gigs.json", h.Gigs)

	if events != nil {
		r.Get("/events", events.ServeHTTP)
	}

	return r
}
