// Package authapi provides the JSON authentication endpoints.
//
// Endpoints (mounted at /api/auth):
//   - POST /api/auth/login   - Verify credentials, issue a session token
//   - POST /api/auth/logout  - Clear the session
//   - GET  /api/auth/session - Describe the current session
//
// All login failures surface as a single 401 invalid_credentials response;
// the underlying cause appears only in logs and audit events.
package authapi

import (
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	loginstore "github.com/dalemusser/smilebloom/internal/app/store/logins"
	"github.com/dalemusser/smilebloom/internal/app/system/auditlog"
	"github.com/dalemusser/smilebloom/internal/app/system/auth"
	"github.com/dalemusser/smilebloom/internal/app/system/jsonutil"
)

// Handler handles authentication API requests.
type Handler struct {
	authenticator *auth.Authenticator
	sessionMgr    *auth.SessionManager
	logins        *loginstore.Store
	auditLogger   *auditlog.Logger
	logger        *zap.Logger
}

// NewHandler creates a new authapi Handler.
func NewHandler(
	db *mongo.Database,
	authenticator *auth.Authenticator,
	sessionMgr *auth.SessionManager,
	auditLogger *auditlog.Logger,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		authenticator: authenticator,
		sessionMgr:    sessionMgr,
		logins:        loginstore.New(db),
		auditLogger:   auditLogger,
		logger:        logger,
	}
}

// userResponse is the user payload returned on login and session lookups.
type userResponse struct {
	ID       string  `json:"id"`
	Username string  `json:"username"`
	Email    *string `json:"email,omitempty"`
	Role     string  `json:"role"`
}

// LoginHandler handles POST /api/auth/login.
//
// Request body:
//
//	{"username": "somchai", "password": "...", "remember": true}
//
// Response (200 OK):
//
//	{"user": {...}, "expires_at": "2026-09-28T..."}
func (h *Handler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Remember bool   `json:"remember"`
	}
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, "Invalid JSON payload")
		return
	}
	if in.Username == "" || in.Password == "" {
		jsonutil.BadRequest(w, "Missing required fields")
		return
	}

	user, token, expiresAt, err := h.authenticator.Authenticate(r.Context(), in.Username, in.Password, in.Remember)
	if err != nil {
		h.auditLogger.LoginFailed(r.Context(), r, in.Username, "invalid credentials")
		jsonutil.Unauthorized(w, "invalid_credentials")
		return
	}

	if err := h.sessionMgr.CreateSession(w, r, token); err != nil {
		h.logger.Error("failed to create session",
			zap.String("user_id", user.ID.Hex()),
			zap.Error(err))
		jsonutil.InternalError(w, "Failed to create session")
		return
	}

	// Best effort; a failed login record must not fail the login.
	if err := h.logins.CreateFrom(r.Context(), r, user.ID, "password", in.Remember); err != nil {
		h.logger.Warn("failed to record login", zap.Error(err))
	}
	h.auditLogger.LoginSuccess(r.Context(), r, user.ID, "password", user.Username)

	h.logger.Debug("user logged in",
		zap.String("user_id", user.ID.Hex()),
		zap.Bool("remember", in.Remember))

	jsonutil.OK(w, map[string]any{
		"user": userResponse{
			ID:       user.ID.Hex(),
			Username: user.Username,
			Email:    user.Email,
			Role:     user.Role,
		},
		"expires_at": expiresAt.UTC().Format(time.RFC3339),
	})
}

// LogoutHandler handles POST /api/auth/logout.
func (h *Handler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	if u, ok := auth.CurrentUser(r); ok {
		h.auditLogger.Logout(r.Context(), r, u.ID)
		h.logger.Debug("user logged out", zap.String("user_id", u.ID))
	}
	h.sessionMgr.DestroySession(w, r)
	jsonutil.OK(w, map[string]string{"status": "logged_out"})
}

// SessionHandler handles GET /api/auth/session.
// Returns the current session payload or 401 when there is no valid session.
func (h *Handler) SessionHandler(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		jsonutil.Unauthorized(w, "unauthorized")
		return
	}

	jsonutil.OK(w, map[string]any{
		"user": userResponse{
			ID:       u.ID,
			Username: u.Username,
			Role:     u.Role,
		},
		"remember":   u.Remember,
		"expires_at": u.ExpiresAt.UTC().Format(time.RFC3339),
	})
}
