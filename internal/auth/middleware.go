package auth

import (
	"context"
	"net/http"
	"strings"
)

// contextKey is unexported so no other package can read or shadow our values.
type contextKey string

const identityKey contextKey = "identity"

// CookieName is the HttpOnly cookie carrying the session token.
const CookieName = "token"

// RequireAuth rejects requests without a valid session token with 401 and
// stores the caller's Identity in the request context otherwise.
//
// The token is read from the "token" cookie first, then from an
// "Authorization: Bearer" header for non-browser clients.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := extractIdentity(r, tokens)
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":"unauthorized","message":"valid authentication required"}`))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// WithIdentity returns a copy of ctx carrying id. Handlers tests use it to
// fake an authenticated request.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext returns the authenticated caller, if any.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok && id.UserID != ""
}

// UserIDFromContext returns ("", false) for anonymous requests.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := IdentityFromContext(ctx)
	return id.UserID, ok
}

// extractIdentity prefers the cookie but falls back to the Bearer header,
// so an invalid cookie does not mask a valid header.
func extractIdentity(r *http.Request, tokens *TokenService) (Identity, error) {
	var cookieErr error
	if cookie, err := r.Cookie(CookieName); err == nil && cookie.Value != "" {
		id, err := tokens.Validate(cookie.Value)
		if err == nil {
			return id, nil
		}
		cookieErr = err
	}
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return tokens.Validate(strings.TrimPrefix(h, "Bearer "))
	}
	if cookieErr != nil {
		return Identity{}, cookieErr
	}
	return Identity{}, http.ErrNoCookie
}
