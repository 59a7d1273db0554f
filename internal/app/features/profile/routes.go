package profile

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns a router with the profile endpoints.
//
// When mounted at /api/profile:
//   - GET   /api/profile
//   - PATCH /api/profile
//   - PATCH /api/profile/dentist
//   - GET   /api/profile/dentist/history
//   - PATCH /api/profile/password
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.GetHandler)
	r.Patch("/", h.UpdateHandler)
	r.Patch("/dentist", h.DentistHandler)
	r.Get("/dentist/history", h.DentistHistoryHandler)
	r.Patch("/password", h.PasswordHandler)
	return r
}
