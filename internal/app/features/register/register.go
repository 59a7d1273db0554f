// Package register provides the account creation endpoint.
//
// Endpoint (mounted at /api):
//   - POST /api/register - Create a new account
//
// Duplicate usernames (including case-insensitive collisions) return 409.
package register

import (
	"errors"
	"net/http"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	userstore "github.com/dalemusser/smilebloom/internal/app/store/users"
	"github.com/dalemusser/smilebloom/internal/app/system/auditlog"
	"github.com/dalemusser/smilebloom/internal/app/system/authutil"
	"github.com/dalemusser/smilebloom/internal/app/system/inputval"
	"github.com/dalemusser/smilebloom/internal/app/system/jsonutil"
	"github.com/dalemusser/smilebloom/internal/app/system/normalize"
	"github.com/dalemusser/smilebloom/internal/domain/models"
)

// Handler handles registration requests.
type Handler struct {
	users       *userstore.Store
	auditLogger *auditlog.Logger
	logger      *zap.Logger
}

// NewHandler creates a new register Handler.
func NewHandler(db *mongo.Database, auditLogger *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		users:       userstore.New(db),
		auditLogger: auditLogger,
		logger:      logger,
	}
}

// RegisterHandler handles POST /api/register.
//
// Request body:
//
//	{"username": "somchai", "password": "...", "email": "s@example.com"}
//
// Response (201 Created):
//
//	{"id": "...", "username": "somchai", "role": "USER"}
func (h *Handler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Username string  `json:"username"`
		Password string  `json:"password"`
		Email    *string `json:"email"`
	}
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, "Invalid JSON payload")
		return
	}

	username := normalize.Username(in.Username)
	if username == "" {
		jsonutil.BadRequest(w, "Username is required")
		return
	}
	if err := authutil.ValidatePassword(in.Password); err != nil {
		jsonutil.BadRequest(w, err.Error())
		return
	}

	var email *string
	if in.Email != nil && *in.Email != "" {
		e := normalize.Email(*in.Email)
		if !inputval.IsValidEmail(e) {
			jsonutil.BadRequest(w, "Invalid email address")
			return
		}
		email = &e
	}

	hash, err := authutil.HashPassword(in.Password)
	if err != nil {
		h.logger.Error("failed to hash password", zap.Error(err))
		jsonutil.InternalError(w, "Registration failed")
		return
	}

	user, err := h.users.Create(r.Context(), models.User{
		Username:     username,
		PasswordHash: hash,
		Email:        email,
	})
	if err != nil {
		if errors.Is(err, userstore.ErrDuplicateUsername) {
			jsonutil.Conflict(w, "Username is already taken")
			return
		}
		h.logger.Error("failed to create user",
			zap.String("username", username),
			zap.Error(err))
		jsonutil.InternalError(w, "Registration failed")
		return
	}

	h.auditLogger.UserRegistered(r.Context(), r, user.ID, user.Username)
	h.logger.Info("user registered", zap.String("user_id", user.ID.Hex()))

	jsonutil.Created(w, map[string]any{
		"id":       user.ID.Hex(),
		"username": user.Username,
		"role":     user.Role,
	})
}
