package teethevents

import "github.com/go-chi/chi/v5"

// Routes returns the router for the tooth event endpoints.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ListHandler)
	r.Post("/", h.CreateHandler)
	r.Get("/status", h.StatusHandler)
	r.Delete("/{id}", h.DeleteHandler)
	return r
}
