// Package auth resolves the user a request acts for.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"finledger/internal/core"

	"github.com/golang-jwt/jwt/v5"
)

// UserHeader names the caller when no signing secret is configured.
const UserHeader = "X-User-Email"

type contextKey struct{}

var (
	ErrMissingToken  = errors.New("missing authentication token")
	ErrInvalidToken  = errors.New("invalid token")
	ErrExpiredToken  = errors.New("token has expired")
	ErrMissingEmail  = errors.New("token carries no email claim")
	ErrMissingHeader = errors.New("missing " + UserHeader + " header")
)

// Claims are the JWT claims the API reads.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Authenticator verifies HS256 bearer tokens. Without a secret it trusts
// the X-User-Email header, which is only acceptable in development.
type Authenticator struct {
	secret []byte
}

func NewAuthenticator(secret string) *Authenticator {
	return &Authenticator{secret: []byte(secret)}
}

// Enabled reports whether tokens are verified.
func (a *Authenticator) Enabled() bool {
	return len(a.secret) > 0
}

// Authenticate returns the email the request is made by.
func (a *Authenticator) Authenticate(r *http.Request) (string, error) {
	if !a.Enabled() {
		email := strings.TrimSpace(r.Header.Get(UserHeader))
		if email == "" {
			return "", ErrMissingHeader
		}
		return email, nil
	}

	raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	raw = strings.TrimSpace(raw)
	if !ok || raw == "" {
		return "", ErrMissingToken
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrExpiredToken
		}
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if strings.TrimSpace(claims.Email) == "" {
		return "", ErrMissingEmail
	}
	return claims.Email, nil
}

// Middleware rejects unauthenticated requests with 401 and stores the
// user's storage key in the context of the others.
func (a *Authenticator) Middleware(onError func(http.ResponseWriter, *http.Request, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			email, err := a.Authenticate(r)
			if err != nil {
				slog.WarnContext(r.Context(), "Authentication failed", "path", r.URL.Path, "error", err)
				if onError != nil {
					onError(w, r, err)
				} else {
					http.Error(w, "unauthorized", http.StatusUnauthorized)
				}
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), core.UserKey(email))))
		})
	}
}

// WithUser returns a context carrying the user key.
func WithUser(ctx context.Context, user string) context.Context {
	return context.WithValue(ctx, contextKey{}, user)
}

// UserFrom returns the user key stored by Middleware.
func UserFrom(ctx context.Context) (string, bool) {
	user, ok := ctx.Value(contextKey{}).(string)
	return user, ok && user != ""
}

// IssueToken signs a token for email; used by tooling and tests.
func IssueToken(secret, email string, ttl time.Duration, now time.Time) (string, error) {
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
