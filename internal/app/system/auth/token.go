package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token lifetimes. A remembered login lasts 30 days; otherwise one day.
// The cookie carrying the token has its own (longer) lifetime; expiry is
// enforced by the token itself, independent of the transport.
const (
	RememberTokenTTL = 30 * 24 * time.Hour
	DefaultTokenTTL  = 24 * time.Hour
)

// TokenTTL returns the token lifetime for a login attempt.
func TokenTTL(remember bool) time.Duration {
	if remember {
		return RememberTokenTTL
	}
	return DefaultTokenTTL
}

// Token errors
var (
	ErrTokenExpired = errors.New("auth: token expired")
	ErrTokenInvalid = errors.New("auth: token invalid")
)

// Claims is the signed token payload.
type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	Remember bool   `json:"remember"`
	jwt.RegisteredClaims
}

// TokenSigner issues and verifies the HS256 session tokens.
// Use NewTokenSigner to create an instance.
type TokenSigner struct {
	secret []byte
}

// NewTokenSigner creates a TokenSigner. The secret must be non-empty; weak
// or placeholder secrets are rejected when strict is set (production mode).
func NewTokenSigner(secret string, strict bool) (*TokenSigner, error) {
	if secret == "" {
		return nil, &SessionConfigError{Message: "token secret is empty; provide ≥32 random chars"}
	}
	if strict && (len(secret) < 32 || isDefaultKey(secret)) {
		return nil, &SessionConfigError{
			Message: "token secret is too weak for production; provide ≥32 random chars (not the default dev key)",
		}
	}
	return &TokenSigner{secret: []byte(secret)}, nil
}

// Issue signs a token for the user. The expiry is now+TokenTTL(remember),
// on the UTC clock.
func (ts *TokenSigner) Issue(userID, username, role string, remember bool, now time.Time) (string, time.Time, error) {
	now = now.UTC()
	expiresAt := now.Add(TokenTTL(remember))
	claims := Claims{
		Username: username,
		Role:     role,
		Remember: remember,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(ts.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Parse verifies a token string and returns its claims. Expired tokens
// return ErrTokenExpired; anything else that fails verification returns
// ErrTokenInvalid.
func (ts *TokenSigner) Parse(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		return ts.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if claims.Subject == "" {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
