package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all quote routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/quotes", func(r chi.Router) {
		r.Get("/", h.HandleGetQuotes)
		r.Get("/cache/stats", h.HandleGetCacheStats)
		r.Get("/{ticker}", func(w http.ResponseWriter, r *http.Request) {
			h.HandleGetQuote(w, r, chi.URLParam(r, "ticker"))
		})
		r.Get("/{ticker}/validate", func(w http.ResponseWriter, r *http.Request) {
			h.HandleValidateTicker(w, r, chi.URLParam(r, "ticker"))
		})
	})
}
