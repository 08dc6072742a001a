package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/teller/pkg/jwtx"
	"github.com/aussiebroadwan/teller/pkg/slogx"
)

// SessionCookieName is the HTTP-only cookie carrying the session token.
const SessionCookieName = "token"

// Authenticator verifies a raw session token, including revocation.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (jwtx.Claims, error)
}

// AuthnMiddleware accepts the session token from the session cookie or an
// Authorization: Bearer header. A missing token is 401; a token that fails
// verification is 403.
func AuthnMiddleware(a Authenticator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			raw := SessionToken(r)
			if raw == "" {
				w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
				WriteError(w, http.StatusUnauthorized, "unauthorized", "no session token")
				return
			}

			claims, err := a.Authenticate(ctx, raw)
			if err != nil {
				slogx.FromContext(ctx).Warn("session verify failed", "err", err)
				WriteError(w, http.StatusForbidden, "invalid_token", "session is invalid or expired")
				return
			}

			next.ServeHTTP(w, r.WithContext(contextWithAuth(ctx, claims, raw)))
		})
	}
}

// SessionToken extracts the raw token, preferring the cookie.
func SessionToken(r *http.Request) string {
	if c, err := r.Cookie(SessionCookieName); err == nil && c.Value != "" {
		return c.Value
	}

	authz := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(authz, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}
