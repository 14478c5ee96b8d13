package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	auth "github.com/opencan/user-service"
)

func errorCode(code string) any {
	return mock.MatchedBy(func(v any) bool {
		body, ok := v.(map[string]any)
		return ok && body["code"] == code
	})
}

func TestAuthGateMiddleware(t *testing.T) {
	validator := newTestTokenService(24)
	gate := auth.NewAuthGate(newTestConfig(), validator)

	next := func(ctx router.Context) error { return ctx.Next() }

	t.Run("public prefixes bypass the gate", func(t *testing.T) {
		for _, path := range []string{"/auth/login", "/auth/register", "/healthz"} {
			ctx := &MockContext{}
			ctx.On("Path").Return(path)

			handler := gate.Middleware()(next)
			require.NoError(t, handler(ctx))
			assert.True(t, ctx.NextCalled, "expected %s to bypass the gate", path)
		}
	})

	t.Run("a public prefix does not leak onto sibling paths", func(t *testing.T) {
		// "/healthz" is exact, "/healthzz" is not public
		ctx := &MockContext{}
		ctx.On("Path").Return("/healthzz")
		ctx.On("GetString", router.HeaderAuthorization, "").Return("")
		ctx.On("JSON", router.StatusUnauthorized, mock.Anything).Return(nil)

		handler := gate.Middleware()(next)
		require.NoError(t, handler(ctx))
		assert.False(t, ctx.NextCalled)
	})

	t.Run("protected route without a token answers 401", func(t *testing.T) {
		ctx := &MockContext{}
		ctx.On("Path").Return("/users/profile")
		ctx.On("GetString", router.HeaderAuthorization, "").Return("")
		ctx.On("JSON", router.StatusUnauthorized, errorCode("UNAUTHENTICATED")).Return(nil)

		handler := gate.Middleware()(next)
		require.NoError(t, handler(ctx))
		assert.False(t, ctx.NextCalled)
		ctx.AssertCalled(t, "JSON", router.StatusUnauthorized, errorCode("UNAUTHENTICATED"))
	})

	t.Run("valid token reaches the handler with claims in locals", func(t *testing.T) {
		token, err := validator.Generate(proposerIdentity())
		require.NoError(t, err)

		ctx := &MockContext{}
		ctx.On("Path").Return("/users/profile")
		ctx.On("GetString", router.HeaderAuthorization, "").Return("Bearer " + token)
		ctx.On("Locals", "user", mock.Anything).Return(nil)
		ctx.On("Context").Return(context.Background())
		ctx.On("SetContext", mock.Anything)

		handler := gate.Middleware()(next)
		require.NoError(t, handler(ctx))
		assert.True(t, ctx.NextCalled)
		ctx.AssertCalled(t, "Locals", "user", mock.Anything)
		ctx.AssertCalled(t, "SetContext", mock.Anything)
	})

	t.Run("expired token answers 401 with the expiry code", func(t *testing.T) {
		past := jwt.NewNumericDate(time.Now().Add(-time.Hour))
		claims := &auth.JWTClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    "test-issuer",
				Subject:   "ada@example.com",
				Audience:  jwt.ClaimStrings{"test-audience"},
				ExpiresAt: past,
			},
			UserRole: auth.RoleProposer,
		}

		token, err := validator.SignClaims(claims)
		require.NoError(t, err)

		ctx := &MockContext{}
		ctx.On("Path").Return("/users/profile")
		ctx.On("GetString", router.HeaderAuthorization, "").Return("Bearer " + token)
		ctx.On("JSON", router.StatusUnauthorized, errorCode("TOKEN_EXPIRED")).Return(nil)

		handler := gate.Middleware()(next)
		require.NoError(t, handler(ctx))
		assert.False(t, ctx.NextCalled)
		ctx.AssertCalled(t, "JSON", router.StatusUnauthorized, errorCode("TOKEN_EXPIRED"))
	})

	t.Run("garbage token answers 401", func(t *testing.T) {
		ctx := &MockContext{}
		ctx.On("Path").Return("/users")
		ctx.On("GetString", router.HeaderAuthorization, "").Return("Bearer not.a.token")
		ctx.On("JSON", router.StatusUnauthorized, mock.Anything).Return(nil)

		handler := gate.Middleware()(next)
		require.NoError(t, handler(ctx))
		assert.False(t, ctx.NextCalled)
	})
}
