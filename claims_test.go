package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"

	auth "github.com/opencan/user-service"
)

func TestJWTClaims(t *testing.T) {
	now := time.Now()
	claims := &auth.JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "ada@example.com",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
		UserRole: auth.RoleAdmin,
	}

	t.Run("subject is the account email", func(t *testing.T) {
		assert.Equal(t, "ada@example.com", claims.Subject())
		assert.Equal(t, "ada@example.com", claims.UserID())
	})

	t.Run("roles are exact, no hierarchy", func(t *testing.T) {
		assert.Equal(t, auth.RoleAdmin, claims.Role())
		assert.True(t, claims.HasRole(auth.RoleAdmin))
		assert.False(t, claims.HasRole(auth.RoleProposer))
		assert.False(t, claims.HasRole(auth.RoleVisitor))
	})

	t.Run("timestamps", func(t *testing.T) {
		assert.WithinDuration(t, now, claims.IssuedAt(), time.Second)
		assert.WithinDuration(t, now.Add(time.Hour), claims.Expires(), time.Second)
	})

	t.Run("zero values without registered dates", func(t *testing.T) {
		empty := &auth.JWTClaims{}
		assert.True(t, empty.Expires().IsZero())
		assert.True(t, empty.IssuedAt().IsZero())
	})
}
