package authapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	userstore "github.com/dalemusser/smilebloom/internal/app/store/users"
	"github.com/dalemusser/smilebloom/internal/app/system/auth"
	"github.com/dalemusser/smilebloom/internal/app/system/authutil"
	"github.com/dalemusser/smilebloom/internal/domain/models"
	"github.com/dalemusser/smilebloom/internal/testutil"
)

const testSessionKey = "0123456789abcdef0123456789abcdef-not-weak"

func newTestHandler(t *testing.T) (*Handler, *userstore.Store) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()

	signer, err := auth.NewTokenSigner(testSessionKey, false)
	if err != nil {
		t.Fatalf("NewTokenSigner: %v", err)
	}
	sessionMgr, err := auth.NewSessionManager(testSessionKey, "", "", 31*24*time.Hour, false, signer, logger)
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}

	users := userstore.New(db)
	authenticator := auth.NewAuthenticator(users, signer, logger)

	h := NewHandler(db, authenticator, sessionMgr, nil, logger)
	return h, users
}

func createUser(t *testing.T, users *userstore.Store, username, password, status string) models.User {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	hash, err := authutil.HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	u, err := users.Create(ctx, models.User{
		Username:     username,
		PasswordHash: hash,
		Status:       status,
	})
	if err != nil {
		t.Fatalf("Create user: %v", err)
	}
	return u
}

func doLogin(t *testing.T, h *Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.LoginHandler(rec, req)
	return rec
}

func TestLoginHandler_Success(t *testing.T) {
	h, users := newTestHandler(t)
	createUser(t, users, "somchai", "correct-horse", "ACTIVE")

	rec := doLogin(t, h, `{"username":"somchai","password":"correct-horse"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var resp struct {
		User struct {
			Username string `json:"username"`
			Role     string `json:"role"`
		} `json:"user"`
		ExpiresAt time.Time `json:"expires_at"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.User.Username != "somchai" {
		t.Errorf("username = %q, want somchai", resp.User.Username)
	}
	if resp.User.Role != models.RoleUser {
		t.Errorf("role = %q, want %q", resp.User.Role, models.RoleUser)
	}

	// Default expiry is one day out.
	want := time.Now().Add(auth.DefaultTokenTTL)
	if d := resp.ExpiresAt.Sub(want); d < -time.Minute || d > time.Minute {
		t.Errorf("expires_at = %v, want ~%v", resp.ExpiresAt, want)
	}

	// A session cookie must be set.
	cookies := rec.Result().Cookies()
	found := false
	for _, c := range cookies {
		if c.Name == h.sessionMgr.SessionName() && c.Value != "" {
			found = true
		}
	}
	if !found {
		t.Error("no session cookie set on login")
	}
}

func TestLoginHandler_RememberExtendsExpiry(t *testing.T) {
	h, users := newTestHandler(t)
	createUser(t, users, "somchai", "correct-horse", "ACTIVE")

	rec := doLogin(t, h, `{"username":"somchai","password":"correct-horse","remember":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp struct {
		ExpiresAt time.Time `json:"expires_at"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	want := time.Now().Add(auth.RememberTokenTTL)
	if d := resp.ExpiresAt.Sub(want); d < -time.Minute || d > time.Minute {
		t.Errorf("expires_at = %v, want ~%v (30 days)", resp.ExpiresAt, want)
	}
}

func TestLoginHandler_InvalidCredentialsAreOpaque(t *testing.T) {
	h, users := newTestHandler(t)
	createUser(t, users, "somchai", "correct-horse", "ACTIVE")
	createUser(t, users, "inactive", "correct-horse", "INACTIVE")

	cases := []struct {
		name string
		body string
	}{
		{"wrong password", `{"username":"somchai","password":"wrong"}`},
		{"unknown username", `{"username":"nobody","password":"correct-horse"}`},
		{"case-mismatched username", `{"username":"Somchai","password":"correct-horse"}`},
		{"inactive account", `{"username":"inactive","password":"correct-horse"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doLogin(t, h, tc.body)
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", rec.Code)
			}
			// Every failure mode must yield the same body.
			if !strings.Contains(rec.Body.String(), "invalid_credentials") {
				t.Errorf("body = %s, want invalid_credentials", rec.Body.String())
			}
		})
	}
}

func TestLoginHandler_BadRequest(t *testing.T) {
	h, _ := newTestHandler(t)

	for name, body := range map[string]string{
		"invalid json":     `{not json`,
		"missing password": `{"username":"somchai"}`,
		"missing username": `{"password":"pw"}`,
	} {
		t.Run(name, func(t *testing.T) {
			rec := doLogin(t, h, body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestSessionHandler(t *testing.T) {
	h, _ := newTestHandler(t)

	req := testutil.NewAuthenticatedRequest(http.MethodGet, "/api/auth/session", nil, testutil.RegularUser())
	rec := httptest.NewRecorder()
	h.SessionHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp struct {
		User struct {
			Username string `json:"username"`
		} `json:"user"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.User.Username != "Somchai" {
		t.Errorf("username = %q, want Somchai", resp.User.Username)
	}
}

func TestSessionHandler_Anonymous(t *testing.T) {
	h, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/session", nil)
	rec := httptest.NewRecorder()
	h.SessionHandler(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestLogoutHandler(t *testing.T) {
	h, _ := newTestHandler(t)

	req := testutil.NewAuthenticatedRequest(http.MethodPost, "/api/auth/logout", nil, testutil.RegularUser())
	rec := httptest.NewRecorder()
	h.LogoutHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "logged_out") {
		t.Errorf("body = %s, want logged_out", rec.Body.String())
	}
}
