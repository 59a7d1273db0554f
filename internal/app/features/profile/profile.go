// Package profile provides the account profile endpoints.
//
// Endpoints (mounted at /api/profile, all require a signed-in user):
//   - GET   /api/profile                 - Current user's profile
//   - PATCH /api/profile                 - Update email
//   - PATCH /api/profile/dentist         - Tri-state dentist reminder patch
//   - GET   /api/profile/dentist/history - Reminder history, most recent first
//   - PATCH /api/profile/password        - Change password
package profile

import (
	"errors"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	userstore "github.com/dalemusser/smilebloom/internal/app/store/users"
	"github.com/dalemusser/smilebloom/internal/app/system/auditlog"
	"github.com/dalemusser/smilebloom/internal/app/system/auth"
	"github.com/dalemusser/smilebloom/internal/app/system/authutil"
	"github.com/dalemusser/smilebloom/internal/app/system/dentist"
	"github.com/dalemusser/smilebloom/internal/app/system/htmlsanitize"
	"github.com/dalemusser/smilebloom/internal/app/system/inputval"
	"github.com/dalemusser/smilebloom/internal/app/system/jsonutil"
	"github.com/dalemusser/smilebloom/internal/app/system/normalize"
	"github.com/dalemusser/smilebloom/internal/domain/models"
)

// Handler handles profile API requests.
type Handler struct {
	users       *userstore.Store
	auditLogger *auditlog.Logger
	logger      *zap.Logger
}

// NewHandler creates a new profile Handler.
func NewHandler(db *mongo.Database, auditLogger *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		users:       userstore.New(db),
		auditLogger: auditLogger,
		logger:      logger,
	}
}

// profileResponse is the JSON shape of a profile.
type profileResponse struct {
	ID          string  `json:"id"`
	Username    string  `json:"username"`
	Email       *string `json:"email,omitempty"`
	Role        string  `json:"role"`
	DentistName *string `json:"dentist_name,omitempty"`
	DentistDay  *string `json:"dentist_day,omitempty"`
	CreatedAt   string  `json:"created_at"`
}

func toProfileResponse(u *models.User) profileResponse {
	return profileResponse{
		ID:          u.ID.Hex(),
		Username:    u.Username,
		Email:       u.Email,
		Role:        u.Role,
		DentistName: u.DentistName,
		DentistDay:  u.DentistDay,
		CreatedAt:   u.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// GetHandler handles GET /api/profile.
func (h *Handler) GetHandler(w http.ResponseWriter, r *http.Request) {
	_, user := h.currentUser(w, r)
	if user == nil {
		return
	}
	jsonutil.OK(w, toProfileResponse(user))
}

// UpdateHandler handles PATCH /api/profile.
//
// Request body:
//
//	{"email": "new@example.com"}
//
// An empty email string clears the address.
func (h *Handler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	sessionUser, user := h.currentUser(w, r)
	if user == nil {
		return
	}

	var in struct {
		Email *string `json:"email"`
	}
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, "Invalid JSON payload")
		return
	}
	if in.Email == nil {
		jsonutil.BadRequest(w, "No fields to update")
		return
	}

	email := normalize.Email(*in.Email)
	if email != "" && !inputval.IsValidEmail(email) {
		jsonutil.BadRequest(w, "Invalid email address")
		return
	}

	if err := h.users.UpdateEmail(r.Context(), user.ID, email); err != nil {
		h.logger.Error("failed to update email",
			zap.String("user_id", sessionUser.ID),
			zap.Error(err))
		jsonutil.InternalError(w, "Failed to update profile")
		return
	}

	h.auditLogger.EmailUpdated(r.Context(), r, user.ID)

	updated, err := h.users.GetByID(r.Context(), user.ID)
	if err != nil {
		jsonutil.InternalError(w, "Failed to load profile")
		return
	}
	jsonutil.OK(w, toProfileResponse(updated))
}

// DentistHandler handles PATCH /api/profile/dentist.
//
// Request body (tri-state: omitted = leave, "" = clear, value = set):
//
//	{"dentist_name": "Dr. Malee", "dentist_day": "2026-09-15"}
func (h *Handler) DentistHandler(w http.ResponseWriter, r *http.Request) {
	sessionUser, user := h.currentUser(w, r)
	if user == nil {
		return
	}

	var in struct {
		DentistName *string `json:"dentist_name"`
		DentistDay  *string `json:"dentist_day"`
	}
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, "Invalid JSON payload")
		return
	}

	// Sanitize the name without losing the tri-state presence bit: an
	// explicit "" means clear, so the pointer must survive sanitizing.
	patch := dentist.Patch{Day: in.DentistDay}
	if in.DentistName != nil {
		name := htmlsanitize.Text(*in.DentistName)
		patch.Name = &name
	}

	current := dentist.State{Name: user.DentistName, Day: user.DentistDay}
	next, entry, changed, err := dentist.Apply(current, patch, time.Now().UTC())
	if err != nil {
		if errors.Is(err, dentist.ErrInvalidDate) {
			jsonutil.BadRequest(w, "Invalid date, want YYYY-MM-DD")
			return
		}
		jsonutil.BadRequest(w, err.Error())
		return
	}

	if changed || entry != nil {
		if err := h.users.ApplyDentistUpdate(r.Context(), user.ID, next, entry); err != nil {
			h.logger.Error("failed to persist dentist update",
				zap.String("user_id", sessionUser.ID),
				zap.Error(err))
			jsonutil.InternalError(w, "Failed to update dentist reminder")
			return
		}
		h.auditLogger.DentistUpdated(r.Context(), r, user.ID, entry != nil)
	}

	jsonutil.OK(w, map[string]any{
		"dentist_name": next.Name,
		"dentist_day":  next.Day,
		"changed":      changed,
	})
}

// PasswordHandler handles PATCH /api/profile/password.
//
// Request body:
//
//	{"current_password": "...", "new_password": "..."}
//
// The current password must verify against the stored hash before the new
// one is accepted.
func (h *Handler) PasswordHandler(w http.ResponseWriter, r *http.Request) {
	sessionUser, user := h.currentUser(w, r)
	if user == nil {
		return
	}

	var in struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, "Invalid JSON payload")
		return
	}

	if !authutil.CheckPassword(in.CurrentPassword, user.PasswordHash) {
		jsonutil.BadRequest(w, "Current password is incorrect")
		return
	}
	if err := authutil.ValidatePassword(in.NewPassword); err != nil {
		jsonutil.BadRequest(w, err.Error())
		return
	}

	hash, err := authutil.HashPassword(in.NewPassword)
	if err != nil {
		h.logger.Error("failed to hash password",
			zap.String("user_id", sessionUser.ID),
			zap.Error(err))
		jsonutil.InternalError(w, "Failed to change password")
		return
	}
	if err := h.users.UpdatePassword(r.Context(), user.ID, hash); err != nil {
		h.logger.Error("failed to update password",
			zap.String("user_id", sessionUser.ID),
			zap.Error(err))
		jsonutil.InternalError(w, "Failed to change password")
		return
	}

	h.auditLogger.PasswordChanged(r.Context(), r, user.ID)

	jsonutil.OK(w, map[string]string{"status": "password_changed"})
}

// DentistHistoryHandler handles GET /api/profile/dentist/history.
// Entries come back most recent first.
func (h *Handler) DentistHistoryHandler(w http.ResponseWriter, r *http.Request) {
	_, user := h.currentUser(w, r)
	if user == nil {
		return
	}

	// Stored oldest-first by $push; reverse for the response.
	history := make([]models.DentistEntry, 0, len(user.DentistHistory))
	for i := len(user.DentistHistory) - 1; i >= 0; i-- {
		history = append(history, user.DentistHistory[i])
	}

	jsonutil.OK(w, map[string]any{"history": history})
}

// currentUser resolves the signed-in user's full record. On failure it writes
// the error response and returns a nil user.
func (h *Handler) currentUser(w http.ResponseWriter, r *http.Request) (*auth.SessionUser, *models.User) {
	sessionUser, ok := auth.CurrentUser(r)
	if !ok {
		jsonutil.Unauthorized(w, "unauthorized")
		return nil, nil
	}

	user, err := h.users.GetByID(r.Context(), sessionUser.UserID())
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			jsonutil.Unauthorized(w, "unauthorized")
			return nil, nil
		}
		h.logger.Error("failed to load user",
			zap.String("user_id", sessionUser.ID),
			zap.Error(err))
		jsonutil.InternalError(w, "Failed to load profile")
		return nil, nil
	}
	return sessionUser, user
}
