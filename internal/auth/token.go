package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/civicreport/civicreport/internal/model"
)

// DefaultTokenTTL is the session lifetime when none is configured.
const DefaultTokenTTL = 30 * 24 * time.Hour

var (
	// ErrInvalidToken covers every verification failure: bad signature,
	// expiry, wrong algorithm or malformed input. Callers must not
	// distinguish between them.
	ErrInvalidToken = errors.New("invalid token")
	// ErrEmptySecret is returned when a TokenManager is built without a key.
	ErrEmptySecret = errors.New("token signing secret is empty")
)

// Claims is the JWT payload carried by session tokens.
type Claims struct {
	jwt.RegisteredClaims
	Role model.Role `json:"role"`
}

// TokenManager issues and verifies HS256 session tokens.
// It is immutable after construction and safe for concurrent use.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// TokenOption customizes a TokenManager.
type TokenOption func(*TokenManager)

// WithClock overrides the time source (tests).
func WithClock(now func() time.Time) TokenOption {
	return func(m *TokenManager) {
		m.now = now
	}
}

// NewTokenManager creates a TokenManager signing with secret.
// A non-positive ttl falls back to DefaultTokenTTL.
func NewTokenManager(secret string, ttl time.Duration, opts ...TokenOption) (*TokenManager, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	m := &TokenManager{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// TTL returns the configured token lifetime.
func (m *TokenManager) TTL() time.Duration {
	return m.ttl
}

// Issue signs a token binding the user's ID and role.
func (m *TokenManager) Issue(user *model.User) (string, error) {
	now := m.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
		Role: user.Role,
	})

	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature and expiry and returns the embedded identity.
func (m *TokenManager) Verify(tokenString string) (*model.Identity, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.Subject == "" || !claims.Role.IsValid() {
		return nil, ErrInvalidToken
	}

	return &model.Identity{
		UserID: claims.Subject,
		Role:   claims.Role,
	}, nil
}
