// Package api implements the preview HTTP server using chi.
package api

import (
	"net/http"
)

// CORSMiddleware lets a static site dev server on another origin fetch the
// document and subscribe to events. An empty origin disables the header.
func CORSMiddleware(origin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if origin != "" {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "If-None-Match")
				w.Header().Set("Access-Control-Expose-Headers", "ETag")
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
