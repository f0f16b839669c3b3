// Package session issues and verifies signed session tokens for the API.
// When no secret is configured the server runs in anonymous mode and every
// request maps to a single shared identity.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// CookieName is the session cookie set by the server.
	CookieName = "fintrack_session"

	// AnonymousUser is the identity used when sessions are disabled.
	AnonymousUser = "anonymous"

	tokenTTL = 24 * time.Hour
)

var (
	ErrNoToken      = errors.New("no session token")
	ErrInvalidToken = errors.New("invalid session token")
)

// Identity describes the authenticated caller.
type Identity struct {
	UserID string
}

// Manager signs and verifies session tokens.
type Manager struct {
	secret []byte
}

// NewManager creates a manager. An empty secret disables sessions:
// Enabled() reports false and Middleware passes everyone through as
// the anonymous identity.
func NewManager(secret string) *Manager {
	if secret == "" {
		return &Manager{}
	}
	return &Manager{secret: []byte(secret)}
}

// Enabled reports whether session verification is active.
func (m *Manager) Enabled() bool {
	return len(m.secret) > 0
}

// Issue generates a signed token for the given user.
func (m *Manager) Issue(userID string) (string, error) {
	if !m.Enabled() {
		return "", errors.New("sessions are disabled")
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenTTL)),
	})
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token, returning the caller identity.
func (m *Manager) Verify(tokenString string) (Identity, error) {
	if !m.Enabled() {
		return Identity{UserID: AnonymousUser}, nil
	}

	var claims jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return Identity{}, ErrInvalidToken
	}
	if claims.Subject == "" {
		return Identity{}, ErrInvalidToken
	}
	return Identity{UserID: claims.Subject}, nil
}

type contextKey struct{}

// FromContext returns the identity stored by Middleware, if any.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(Identity)
	return id, ok
}

// tokenFromRequest looks in the session cookie first, then the
// Authorization header.
func tokenFromRequest(r *http.Request) (string, error) {
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		return c.Value, nil
	}
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer "), nil
	}
	return "", ErrNoToken
}

// Middleware authenticates requests. With sessions disabled it tags every
// request as anonymous; otherwise missing or invalid tokens get 401.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.Enabled() {
			ctx := context.WithValue(r.Context(), contextKey{}, Identity{UserID: AnonymousUser})
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		tokenString, err := tokenFromRequest(r)
		if err != nil {
			http.Error(w, "authentication required", http.StatusUnauthorized)
			return
		}
		identity, err := m.Verify(tokenString)
		if err != nil {
			http.Error(w, "invalid session", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), contextKey{}, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
