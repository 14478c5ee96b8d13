package auth

import "github.com/goliatone/go-router"

// Requirement is an access control requirement evaluated against the
// claims of the current request
type Requirement int

const (
	// RequireAuthenticated passes for any valid session
	RequireAuthenticated Requirement = iota
	// RequireAdmin passes only for the exact ADMIN role
	RequireAdmin
)

// Authorize evaluates a requirement against claims. A nil claims value
// means the request never went through the authentication gate.
func Authorize(claims AuthClaims, req Requirement) error {
	if claims == nil {
		return ErrUnauthenticated
	}

	if req == RequireAdmin && !claims.HasRole(RoleAdmin) {
		return ErrForbidden
	}

	return nil
}

// RequireRole builds route middleware that enforces an exact role on top
// of the authentication gate. Missing claims yield 401, a role mismatch 403.
func RequireRole(contextKey string, role UserRole) router.MiddlewareFunc {
	return func(hf router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			claims, ok := GetRouterClaims(ctx, contextKey)
			if !ok {
				return respondError(ctx, ErrUnauthenticated)
			}

			if !claims.HasRole(role) {
				return respondError(ctx, ErrForbidden)
			}

			return ctx.Next()
		}
	}
}
