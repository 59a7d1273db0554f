package auth

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/smilebloom/internal/app/system/authutil"
	"github.com/dalemusser/smilebloom/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// ErrInvalidCredentials is the single error surfaced to callers for any
// failed login: unknown username, wrong password, inactive account, or a
// store failure. The cases are distinguished only in logs so responses give
// no account-enumeration signal.
var ErrInvalidCredentials = errors.New("auth: invalid credentials")

// CredentialStore looks up users for password authentication.
type CredentialStore interface {
	// GetByUsername performs an exact, case-sensitive lookup.
	// Returns mongo.ErrNoDocuments when no user matches.
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// Authenticator verifies username/password credentials and issues session
// tokens. Use NewAuthenticator to create an instance.
type Authenticator struct {
	users  CredentialStore
	signer *TokenSigner
	logger *zap.Logger
}

// NewAuthenticator creates an Authenticator.
func NewAuthenticator(users CredentialStore, signer *TokenSigner, logger *zap.Logger) *Authenticator {
	return &Authenticator{users: users, signer: signer, logger: logger}
}

// dummyHash is compared against when the user does not exist, so unknown
// usernames cost the same as wrong passwords.
var dummyHash, _ = authutil.HashPassword("smilebloom-timing-pad")

// Authenticate checks the credentials and, on success, returns the user with
// a freshly signed token and its expiry. Every failure path returns
// ErrInvalidCredentials.
func (a *Authenticator) Authenticate(ctx context.Context, username, password string, remember bool) (*models.User, string, time.Time, error) {
	user, err := a.users.GetByUsername(ctx, username)
	switch {
	case err == nil:
		// fall through
	case errors.Is(err, mongo.ErrNoDocuments):
		authutil.CheckPassword(password, dummyHash)
		a.logger.Info("login failed: unknown username",
			zap.String("username", username))
		return nil, "", time.Time{}, ErrInvalidCredentials
	default:
		a.logger.Error("login failed: user lookup error",
			zap.String("username", username),
			zap.Error(err))
		return nil, "", time.Time{}, ErrInvalidCredentials
	}

	if !authutil.CheckPassword(password, user.PasswordHash) {
		a.logger.Info("login failed: password mismatch",
			zap.String("user_id", user.ID.Hex()))
		return nil, "", time.Time{}, ErrInvalidCredentials
	}

	if user.Status != models.StatusActive {
		a.logger.Info("login failed: account inactive",
			zap.String("user_id", user.ID.Hex()),
			zap.String("status", user.Status))
		return nil, "", time.Time{}, ErrInvalidCredentials
	}

	token, expiresAt, err := a.signer.Issue(user.ID.Hex(), user.Username, user.Role, remember, time.Now())
	if err != nil {
		a.logger.Error("login failed: token signing error",
			zap.String("user_id", user.ID.Hex()),
			zap.Error(err))
		return nil, "", time.Time{}, ErrInvalidCredentials
	}

	return user, token, expiresAt, nil
}
