package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all currency routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/currency", func(r chi.Router) {
		r.Get("/rate/{currency}", func(w http.ResponseWriter, r *http.Request) {
			h.HandleGetRate(w, r, chi.URLParam(r, "currency"))
		})
		r.Get("/history/{currency}", func(w http.ResponseWriter, r *http.Request) {
			h.HandleGetHistory(w, r, chi.URLParam(r, "currency"))
		})
	})
}
