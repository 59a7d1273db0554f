package register

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns a router with the registration endpoint.
//
// When mounted at /api/register:
//   - POST /api/register
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Post("/", h.RegisterHandler)
	return r
}
