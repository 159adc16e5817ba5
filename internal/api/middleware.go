// Package api implements the Epropulse REST API using chi.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
)

// noStore marks responses as private and uncacheable. Used for the
// back-office routes.
func noStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

func requestID(r *http.Request) string {
	return middleware.GetReqID(r.Context())
}
