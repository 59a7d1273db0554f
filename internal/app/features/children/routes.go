package children

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns a router with the child profile endpoints.
//
// When mounted at /api/children:
//   - GET    /api/children
//   - POST   /api/children
//   - GET    /api/children/{id}
//   - PATCH  /api/children/{id}
//   - DELETE /api/children/{id}
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.ListHandler)
	r.Post("/", h.CreateHandler)
	r.Get("/{id}", h.GetHandler)
	r.Patch("/{id}", h.UpdateHandler)
	r.Delete("/{id}", h.DeleteHandler)
	return r
}
