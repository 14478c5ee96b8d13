package auth_test

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"

	auth "github.com/opencan/user-service"
)

func TestClaimsContextRoundTrip(t *testing.T) {
	claims := &auth.JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "ada@example.com"},
		UserRole:         auth.RoleVisitor,
	}

	ctx := auth.WithClaimsContext(context.Background(), claims)

	got, ok := auth.GetClaims(ctx)
	assert.True(t, ok)
	assert.Equal(t, "ada@example.com", got.Subject())

	_, ok = auth.GetClaims(context.Background())
	assert.False(t, ok)
}

func TestUserContextRoundTrip(t *testing.T) {
	user := &auth.User{Email: "ada@example.com"}

	ctx := auth.WithContext(context.Background(), user)

	got, ok := auth.FromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "ada@example.com", got.Email)

	_, ok = auth.FromContext(context.Background())
	assert.False(t, ok)
}

func TestGetRouterClaims(t *testing.T) {
	claims := &auth.JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "ada@example.com"},
		UserRole:         auth.RoleAdmin,
	}

	t.Run("claims present", func(t *testing.T) {
		ctx := &MockContext{}
		ctx.On("Locals", "user").Return(claims)

		got, ok := auth.GetRouterClaims(ctx, "")
		assert.True(t, ok)
		assert.Equal(t, auth.RoleAdmin, got.Role())
	})

	t.Run("claims missing", func(t *testing.T) {
		ctx := &MockContext{}
		ctx.On("Locals", "user").Return(nil)

		_, ok := auth.GetRouterClaims(ctx, "user")
		assert.False(t, ok)
	})
}
