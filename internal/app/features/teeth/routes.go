package teeth

import "github.com/go-chi/chi/v5"

// Routes returns the router for the tooth catalog endpoints.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ListHandler)
	return r
}
