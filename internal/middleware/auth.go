package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/ayush/devcamper/backend/internal/apperr"
	"github.com/ayush/devcamper/backend/internal/policy"
	"github.com/ayush/devcamper/backend/internal/web"
)

// TokenCookie is the cookie mirroring the bearer token.
const TokenCookie = "token"

type contextKey string

const principalKey contextKey = "principal"

// Authenticator resolves a bearer token to the caller it was issued to.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (policy.Principal, error)
}

// TokenFromRequest returns the bearer token, falling back to the cookie.
func TokenFromRequest(r *http.Request) string {
	if token, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); found && token != "" {
		return token
	}
	if c, err := r.Cookie(TokenCookie); err == nil {
		return c.Value
	}
	return ""
}

// Authenticate rejects requests without a valid token and injects the
// caller into the request context.
func Authenticate(a Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := TokenFromRequest(r)
			if token == "" {
				web.Error(w, r, apperr.Unauthenticated("Not authorized to access this route"))
				return
			}

			p, err := a.Authenticate(r.Context(), token)
			if err != nil {
				web.Error(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}

// Authorize admits only callers holding one of roles. It must run after
// Authenticate.
func Authorize(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFromContext(r.Context())
			if !ok {
				web.Error(w, r, apperr.Unauthenticated("Not authorized to access this route"))
				return
			}
			if !policy.Allows(p.Role, roles...) {
				web.Error(w, r, apperr.Forbidden("User role %s is not authorized to access this route", p.Role))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithPrincipal stores p in ctx.
func WithPrincipal(ctx context.Context, p policy.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext extracts the authenticated caller from the request context.
func PrincipalFromContext(ctx context.Context) (policy.Principal, bool) {
	p, ok := ctx.Value(principalKey).(policy.Principal)
	return p, ok
}

// Caller returns the authenticated caller of r, or a 401 when the route
// was not behind Authenticate.
func Caller(r *http.Request) (policy.Principal, error) {
	p, ok := PrincipalFromContext(r.Context())
	if !ok {
		return policy.Principal{}, apperr.Unauthenticated("Not authorized to access this route")
	}
	return p, nil
}
