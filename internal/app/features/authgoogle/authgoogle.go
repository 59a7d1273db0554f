// Package authgoogle implements the Google OAuth login flow.
//
//   - GET /auth/google          - redirect to Google's consent screen
//   - GET /auth/google/callback - finish the flow and sign the user in
//
// State tokens live in Mongo so the flow works across instances. The
// callback looks the account up by its Google subject ID; first-time
// Google sign-ins get an account created on the spot.
package authgoogle

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	loginstore "github.com/dalemusser/smilebloom/internal/app/store/logins"
	"github.com/dalemusser/smilebloom/internal/app/store/oauthstate"
	userstore "github.com/dalemusser/smilebloom/internal/app/store/users"
	"github.com/dalemusser/smilebloom/internal/app/system/auditlog"
	"github.com/dalemusser/smilebloom/internal/app/system/auth"
	"github.com/dalemusser/smilebloom/internal/app/system/authutil"
	"github.com/dalemusser/smilebloom/internal/app/system/normalize"
	"github.com/dalemusser/smilebloom/internal/domain/models"
)

// Handler provides the Google OAuth handlers.
type Handler struct {
	users       *userstore.Store
	states      *oauthstate.Store
	logins      *loginstore.Store
	sessionMgr  *auth.SessionManager
	auditLogger *auditlog.Logger
	oauthConfig *oauth2.Config
	logger      *zap.Logger
}

// NewHandler creates a new Google OAuth Handler. baseURL is the externally
// visible origin of this service; the redirect URL is derived from it.
func NewHandler(
	db *mongo.Database,
	sessionMgr *auth.SessionManager,
	auditLogger *auditlog.Logger,
	clientID, clientSecret, baseURL string,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		users:       userstore.New(db),
		states:      oauthstate.New(db),
		logins:      loginstore.New(db),
		sessionMgr:  sessionMgr,
		auditLogger: auditLogger,
		oauthConfig: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  strings.TrimRight(baseURL, "/") + "/auth/google/callback",
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		logger: logger,
	}
}

// Routes returns a chi.Router with the Google OAuth routes mounted.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.StartHandler)
	r.Get("/callback", h.CallbackHandler)
	return r
}

// StartHandler initiates the Google OAuth flow.
func (h *Handler) StartHandler(w http.ResponseWriter, r *http.Request) {
	state, err := generateState()
	if err != nil {
		h.logger.Error("failed to generate oauth state", zap.Error(err))
		redirectError(w, r, "oauth_error")
		return
	}
	if err := h.states.Create(r.Context(), state); err != nil {
		h.logger.Error("failed to store oauth state", zap.Error(err))
		redirectError(w, r, "oauth_error")
		return
	}
	http.Redirect(w, r, h.oauthConfig.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

// CallbackHandler finishes the Google OAuth flow: verifies the state,
// exchanges the code, resolves the account, and issues the session token.
func (h *Handler) CallbackHandler(w http.ResponseWriter, r *http.Request) {
	if !h.states.Verify(r.Context(), r.URL.Query().Get("state")) {
		h.logger.Warn("invalid oauth state")
		redirectError(w, r, "invalid_state")
		return
	}
	if errMsg := r.URL.Query().Get("error"); errMsg != "" {
		h.logger.Warn("oauth error from google", zap.String("error", errMsg))
		redirectError(w, r, "oauth_denied")
		return
	}

	token, err := h.oauthConfig.Exchange(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		h.logger.Error("oauth code exchange failed", zap.Error(err))
		redirectError(w, r, "token_exchange_failed")
		return
	}

	info, err := h.getUserInfo(r.Context(), token)
	if err != nil || info.ID == "" {
		h.logger.Error("failed to fetch google user info", zap.Error(err))
		redirectError(w, r, "userinfo_failed")
		return
	}

	user, err := h.resolveUser(r.Context(), r, info)
	if err != nil {
		h.logger.Error("failed to resolve google user", zap.Error(err))
		redirectError(w, r, "database_error")
		return
	}
	if user.Status != models.StatusActive {
		h.auditLogger.LoginFailed(r.Context(), r, user.Username, "account inactive")
		redirectError(w, r, "account_disabled")
		return
	}

	signed, _, err := h.sessionMgr.Signer().Issue(user.ID.Hex(), user.Username, user.Role, false, time.Now())
	if err != nil {
		h.logger.Error("failed to issue session token", zap.Error(err))
		redirectError(w, r, "session_error")
		return
	}
	if err := h.sessionMgr.CreateSession(w, r, signed); err != nil {
		h.logger.Error("failed to create session", zap.Error(err))
		redirectError(w, r, "session_error")
		return
	}

	// Best effort, login proceeds even if the record fails.
	if err := h.logins.CreateFrom(r.Context(), r, user.ID, "google", false); err != nil {
		h.logger.Warn("failed to record login", zap.Error(err))
	}
	h.auditLogger.LoginSuccess(r.Context(), r, user.ID, "google", user.Username)

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// resolveUser finds the account linked to the Google subject ID, creating
// one on first sign-in.
func (h *Handler) resolveUser(ctx context.Context, r *http.Request, info *googleUserInfo) (*models.User, error) {
	user, err := h.users.GetByGoogleID(ctx, info.ID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}
	return h.createLinkedUser(ctx, r, info)
}

func (h *Handler) createLinkedUser(ctx context.Context, r *http.Request, info *googleUserInfo) (*models.User, error) {
	// Google accounts have no password; store an unguessable hash so the
	// password login path always fails for them.
	random, err := randomSecret()
	if err != nil {
		return nil, err
	}
	hash, err := authutil.HashPassword(random)
	if err != nil {
		return nil, err
	}

	googleID := info.ID
	var email *string
	if info.Email != "" {
		e := normalize.Email(info.Email)
		email = &e
	}

	// Retry with a suffixed username when the preferred one is taken.
	base := usernameFor(info)
	username := base
	for attempt := 0; attempt < 3; attempt++ {
		created, err := h.users.Create(ctx, models.User{
			Username:     username,
			PasswordHash: hash,
			Email:        email,
			Role:         models.RoleUser,
			GoogleUserID: &googleID,
		})
		if err == nil {
			h.auditLogger.UserRegistered(ctx, r, created.ID, created.Username)
			h.auditLogger.GoogleLinked(ctx, r, created.ID)
			return &created, nil
		}
		if !errors.Is(err, userstore.ErrDuplicateUsername) {
			return nil, err
		}
		suffix, err := randomSuffix()
		if err != nil {
			return nil, err
		}
		username = base + "-" + suffix
	}
	return nil, userstore.ErrDuplicateUsername
}

// usernameFor derives a username from the Google profile: the email local
// part when present, otherwise a name built from the subject ID.
func usernameFor(info *googleUserInfo) string {
	if info.Email != "" {
		local, _, found := strings.Cut(info.Email, "@")
		if found && normalize.Username(local) != "" {
			return normalize.Username(local)
		}
	}
	id := info.ID
	if len(id) > 8 {
		id = id[:8]
	}
	return "google-" + id
}

type googleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

func (h *Handler) getUserInfo(ctx context.Context, token *oauth2.Token) (*googleUserInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client := h.oauthConfig.Client(ctx, token)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		"https://www.googleapis.com/oauth2/v2/userinfo", nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, err
	}
	return &info, nil
}

func generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func randomSuffix() (string, error) {
	b := make([]byte, 3)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func redirectError(w http.ResponseWriter, r *http.Request, code string) {
	http.Redirect(w, r, "/login?error="+code, http.StatusSeeOther)
}
