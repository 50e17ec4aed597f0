package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

var errNoBearerToken = errors.New("auth: no bearer token")

// contextKey is an unexported type for context keys in this package, so no
// other package can read or shadow the values it stores.
type contextKey string

const userIDKey contextKey = "userID"

const (
	detailUnauthorized = `{"detail":"Authentication credentials were not provided."}`
	detailForbidden    = `{"detail":"You do not have permission to perform this action."}`
)

// RequireAuth enforces authentication on protected routes.
//
// It reads the bearer access token from the Authorization header, validates
// it, and stores the userID in the request context. Missing or invalid
// tokens end the request with 401 and no handler runs.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := extractUserID(r, tokens)
			if err != nil {
				writeDetail(w, http.StatusUnauthorized, detailUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAnonymous is the other half of the session gate: register, login,
// and guest creation are only open to callers who are NOT authenticated. A
// valid bearer token ends the request with 403 before any processing.
// Only a valid token counts as a session: requests carrying a missing,
// malformed, or expired token proceed as anonymous rather than drawing
// a 401 from endpoints that never required credentials.
func RequireAnonymous(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if userID, err := extractUserID(r, tokens); err == nil && userID != "" {
				writeDetail(w, http.StatusForbidden, detailForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// UserIDFromContext retrieves the authenticated user's ID set by
// RequireAuth. Returns ("", false) for anonymous requests.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// extractUserID pulls the bearer token from the Authorization header and
// validates it as an access token.
func extractUserID(r *http.Request, tokens *TokenService) (string, error) {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", errNoBearerToken
	}
	return tokens.ValidateAccess(strings.TrimSpace(header[len(prefix):]))
}

func writeDetail(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(body))
}
