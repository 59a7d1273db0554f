package dashboard

import "github.com/go-chi/chi/v5"

// Routes returns the router for the dashboard endpoints.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.SummaryHandler)
	return r
}
