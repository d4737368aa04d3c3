package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Ayu-zh/placement-connector/internal/api/apierr"
	"github.com/Ayu-zh/placement-connector/internal/middleware"
	"github.com/Ayu-zh/placement-connector/internal/model"
	"github.com/Ayu-zh/placement-connector/internal/services/access"
)

type contextKey string

const (
	identityContextKey contextKey = "identity"
	tokenContextKey    contextKey = "token"
)

// Authenticator resolves a bearer token to the acting identity
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*model.Identity, *model.AuthSession, error)
}

// Auth creates authentication middleware
func Auth(authenticator Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ExtractToken(r)
			if token == "" {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}

			identity, session, err := authenticator.Authenticate(r.Context(), token)
			if err != nil {
				apierr.WriteError(w, err)
				return
			}
			middleware.AddLogAttrs(r.Context(),
				slog.String("identity_id", string(identity.ID)),
				slog.String("session_id", string(session.ID)))

			ctx := r.Context()
			ctx = context.WithValue(ctx, identityContextKey, identity)
					ctx = context.WithValue(ctx, tokenContextKey, token)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects requests whose identity is not an administrator.
// It must run after Auth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := access.RequireAdmin(GetIdentity(r.Context())); err != nil {
			apierr.WriteError(w, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ExtractToken extracts the session token from the request
func ExtractToken(r *http.Request) string {
	// Check Authorization header first
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}

	// Fall back to cookie
	cookie, err := r.Cookie("session")
	if err == nil {
		return cookie.Value
	}

	return ""
}

// GetIdentity returns the authenticated identity from the request context
func GetIdentity(ctx context.Context) *model.Identity {
	identity, _ := ctx.Value(identityContextKey).(*model.Identity)
	return identity
}

// GetToken returns the token the request was authenticated with
func GetToken(ctx context.Context) string {
	token, _ := ctx.Value(tokenContextKey).(string)
	return token
}
