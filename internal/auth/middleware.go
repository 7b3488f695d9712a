package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/devine-water/devine-water/internal/platform/httpx"
	"github.com/devine-water/devine-water/internal/shared"
)

// Middleware authenticates bearer tokens and gates capabilities.
type Middleware struct {
	tokens *Tokens
}

// NewMiddleware constructs auth middleware around a token verifier.
func NewMiddleware(tokens *Tokens) Middleware {
	return Middleware{tokens: tokens}
}

// RequireAuth validates the Authorization header and attaches the identity to
// the request context.
func (m Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := bearerToken(r)
		if raw == "" {
			httpx.RespondError(w, httpx.ErrUnauthorized)
			return
		}
		identity, err := m.tokens.Verify(raw)
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(shared.ContextWithIdentity(r.Context(), identity)))
	})
}

// RequireCapability denies the request unless the authenticated role grants the
// capability. The denial names both sides so a client can see what was missing.
func (m Middleware) RequireCapability(capability string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := shared.IdentityFromContext(r.Context())
			if identity == nil {
				httpx.RespondError(w, httpx.ErrUnauthorized)
				return
			}
			if !shared.Allowed(identity.Role, capability) {
				httpx.Problem(w, http.StatusForbidden, "Forbidden",
					fmt.Sprintf("requires %s, role is %s", capability, identity.Role))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}
