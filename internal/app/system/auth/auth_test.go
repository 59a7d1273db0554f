package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/smilebloom/internal/app/system/authutil"
	"github.com/dalemusser/smilebloom/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newTestManager(t *testing.T) *SessionManager {
	t.Helper()
	sm, err := NewSessionManager("this-is-a-32-character-long-key!", "test-session", "",
		31*24*time.Hour, false, newTestSigner(t), zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	return sm
}

func TestNewSessionManager(t *testing.T) {
	logger := zap.NewNop()
	signer, err := NewTokenSigner(testSecret, false)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name       string
		sessionKey string
		maxAge     time.Duration
		secure     bool
		wantErr    bool
	}{
		{"valid key dev mode", "this-is-a-32-character-long-key!", 31 * 24 * time.Hour, false, false},
		{"valid key prod mode", "this-is-a-32-character-long-key!", 31 * 24 * time.Hour, true, false},
		{"empty key", "", 31 * 24 * time.Hour, false, true},
		{"weak key dev mode", "short", 31 * 24 * time.Hour, false, false}, // warning but allowed in dev
		{"weak key prod mode", "short", 31 * 24 * time.Hour, true, true},
		{"default key prod mode", "dev-only-session-key-not-for-production", 31 * 24 * time.Hour, true, true},
		{"ceiling below remembered TTL", "this-is-a-32-character-long-key!", 24 * time.Hour, false, true},
		{"ceiling exactly remembered TTL", "this-is-a-32-character-long-key!", 30 * 24 * time.Hour, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sm, err := NewSessionManager(tt.sessionKey, "test-session", "", tt.maxAge, tt.secure, signer, logger)
			if tt.wantErr {
				if err == nil {
					t.Error("NewSessionManager() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Errorf("NewSessionManager() error = %v", err)
			}
			if sm == nil {
				t.Error("NewSessionManager() returned nil")
			}
		})
	}

	if _, err := NewSessionManager("this-is-a-32-character-long-key!", "s", "", 31*24*time.Hour, false, nil, logger); err == nil {
		t.Error("nil signer must be rejected")
	}
}

func TestSessionManager_SessionName(t *testing.T) {
	sm := newTestManager(t)
	if got := sm.SessionName(); got != "test-session" {
		t.Errorf("SessionName() = %q, want %q", got, "test-session")
	}
}

// loginAndCookies issues a token, creates a session via CreateSession, and
// returns the Set-Cookie values for replay.
func loginAndCookies(t *testing.T, sm *SessionManager, remember bool) []*http.Cookie {
	t.Helper()
	token, _, err := sm.Signer().Issue(primitive.NewObjectID().Hex(), "somchai", "USER", remember, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	if err := sm.CreateSession(w, r, token); err != nil {
		t.Fatal(err)
	}
	return w.Result().Cookies()
}

func TestSessionRoundTrip(t *testing.T) {
	sm := newTestManager(t)
	cookies := loginAndCookies(t, sm, true)
	if len(cookies) == 0 {
		t.Fatal("no session cookie set")
	}

	var got *SessionUser
	h := sm.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = CurrentUser(r)
	}))

	r := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	for _, c := range cookies {
		r.AddCookie(c)
	}
	h.ServeHTTP(httptest.NewRecorder(), r)

	if got == nil {
		t.Fatal("no user in context after valid session")
	}
	if got.Username != "somchai" || got.Role != "USER" || !got.Remember {
		t.Errorf("user = %+v", got)
	}
	if got.Token == "" || got.ExpiresAt.IsZero() {
		t.Error("token and expiry must be carried")
	}
}

func TestLoadSessionUserAnonymous(t *testing.T) {
	sm := newTestManager(t)
	called := false
	h := sm.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		if _, ok := CurrentUser(r); ok {
			t.Error("anonymous request must have no user")
		}
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if !called {
		t.Error("handler not reached")
	}
}

func TestLoadSessionUserExpiredToken(t *testing.T) {
	sm := newTestManager(t)
	token, _, err := sm.Signer().Issue("u1", "somchai", "USER", false, time.Now().Add(-48*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	w := httptest.NewRecorder()
	if err := sm.CreateSession(w, httptest.NewRequest(http.MethodPost, "/", nil), token); err != nil {
		t.Fatal(err)
	}

	r := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	for _, c := range w.Result().Cookies() {
		r.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h := sm.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); ok {
			t.Error("expired token must not authenticate")
		}
	}))
	h.ServeHTTP(rec, r)

	// The stale cookie should be cleared.
	for _, c := range rec.Result().Cookies() {
		if c.Name == sm.SessionName() && c.MaxAge >= 0 {
			t.Error("stale session cookie not cleared")
		}
	}
}

type fetcherFunc func(ctx context.Context, userID string) *SessionUser

func (f fetcherFunc) FetchUser(ctx context.Context, userID string) *SessionUser {
	return f(ctx, userID)
}

func TestLoadSessionUserFetcherRefresh(t *testing.T) {
	sm := newTestManager(t)
	sm.SetUserFetcher(fetcherFunc(func(ctx context.Context, userID string) *SessionUser {
		return &SessionUser{ID: userID, Username: "renamed", Role: "ADMIN"}
	}))

	cookies := loginAndCookies(t, sm, false)
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range cookies {
		r.AddCookie(c)
	}
	h := sm.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := CurrentUser(r)
		if !ok {
			t.Fatal("no user in context")
		}
		if u.Username != "renamed" || u.Role != "ADMIN" {
			t.Errorf("fresh data not applied: %+v", u)
		}
	}))
	h.ServeHTTP(httptest.NewRecorder(), r)
}

func TestLoadSessionUserFetcherInvalidates(t *testing.T) {
	sm := newTestManager(t)
	sm.SetUserFetcher(fetcherFunc(func(ctx context.Context, userID string) *SessionUser {
		return nil // user deleted or deactivated
	}))

	cookies := loginAndCookies(t, sm, false)
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range cookies {
		r.AddCookie(c)
	}
	h := sm.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); ok {
			t.Error("invalidated user must not authenticate")
		}
	}))
	h.ServeHTTP(httptest.NewRecorder(), r)
}

func TestRequireSignedIn(t *testing.T) {
	sm := newTestManager(t)
	h := sm.RequireSignedIn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/profile", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous: code = %d, want 401", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want JSON", ct)
	}

	rec = httptest.NewRecorder()
	r := WithTestUser(httptest.NewRequest(http.MethodGet, "/api/profile", nil),
		&SessionUser{ID: "u1", Username: "somchai", Role: "USER"})
	h.ServeHTTP(rec, r)
	if rec.Code != http.StatusOK {
		t.Errorf("signed in: code = %d, want 200", rec.Code)
	}
}

func TestRequireRole(t *testing.T) {
	sm := newTestManager(t)
	h := sm.RequireRole(models.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous: code = %d, want 401", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, WithTestUser(httptest.NewRequest(http.MethodGet, "/", nil),
		&SessionUser{ID: "u1", Role: models.RoleUser}))
	if rec.Code != http.StatusForbidden {
		t.Errorf("wrong role: code = %d, want 403", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, WithTestUser(httptest.NewRequest(http.MethodGet, "/", nil),
		&SessionUser{ID: "u1", Role: models.RoleAdmin}))
	if rec.Code != http.StatusOK {
		t.Errorf("admin: code = %d, want 200", rec.Code)
	}
}

func TestDestroySession(t *testing.T) {
	sm := newTestManager(t)
	cookies := loginAndCookies(t, sm, false)

	r := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	for _, c := range cookies {
		r.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	sm.DestroySession(rec, r)

	cleared := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == sm.SessionName() && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("DestroySession did not clear the cookie")
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Authenticator                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

type fakeCredentialStore struct {
	users map[string]*models.User
	err   error
}

func (f *fakeCredentialStore) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[username]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return u, nil
}

func newFakeStore(t *testing.T) *fakeCredentialStore {
	t.Helper()
	hash, err := authutil.HashPassword("correct horse")
	if err != nil {
		t.Fatal(err)
	}
	return &fakeCredentialStore{users: map[string]*models.User{
		"Somchai": {
			ID:           primitive.NewObjectID(),
			Username:     "Somchai",
			PasswordHash: hash,
			Role:         models.RoleUser,
			Status:       models.StatusActive,
		},
		"dormant": {
			ID:           primitive.NewObjectID(),
			Username:     "dormant",
			PasswordHash: hash,
			Role:         models.RoleUser,
			Status:       models.StatusInactive,
		},
	}}
}

func TestAuthenticateSuccess(t *testing.T) {
	a := NewAuthenticator(newFakeStore(t), newTestSigner(t), zap.NewNop())

	user, token, expiresAt, err := a.Authenticate(context.Background(), "Somchai", "correct horse", true)
	if err != nil {
		t.Fatal(err)
	}
	if user.Username != "Somchai" {
		t.Errorf("user = %+v", user)
	}
	if token == "" {
		t.Error("no token issued")
	}
	if until := time.Until(expiresAt); until < 29*24*time.Hour || until > 30*24*time.Hour {
		t.Errorf("remembered expiry %v out of range", until)
	}
}

func TestAuthenticateFailuresCollapse(t *testing.T) {
	store := newFakeStore(t)
	a := NewAuthenticator(store, newTestSigner(t), zap.NewNop())
	ctx := context.Background()

	cases := []struct {
		name               string
		username, password string
	}{
		{"unknown username", "nobody", "correct horse"},
		{"wrong password", "Somchai", "wrong"},
		{"case mismatch is unknown", "somchai", "correct horse"},
		{"inactive account", "dormant", "correct horse"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, _, _, err := a.Authenticate(ctx, c.username, c.password, false)
			if !errors.Is(err, ErrInvalidCredentials) {
				t.Errorf("err = %v, want ErrInvalidCredentials", err)
			}
		})
	}

	// A store failure collapses too.
	store.err = errors.New("connection reset")
	if _, _, _, err := a.Authenticate(ctx, "Somchai", "correct horse", false); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("store failure: err = %v, want ErrInvalidCredentials", err)
	}
}
