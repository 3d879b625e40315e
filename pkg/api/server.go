package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

// SetupRoutes configures all HTTP routes.
func (h *Handler) SetupRoutes() *mux.Router {
	r := mux.NewRouter()

	api := r.PathPrefix("/api/scraping").Subrouter()
	api.HandleFunc("/execute", h.ExecuteScraping).Methods("POST", "OPTIONS")
	api.HandleFunc("/validate", h.ValidateRequest).Methods("POST", "OPTIONS")
	api.HandleFunc("/health", h.Health).Methods("GET")
	api.HandleFunc("/config", h.Config).Methods("GET")

	r.Use(corsMiddleware)

	return r
}

// corsMiddleware adds CORS headers.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
