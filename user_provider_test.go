package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	auth "github.com/opencan/user-service"
)

func storedUser(t *testing.T, password string, enabled bool) *auth.User {
	t.Helper()

	hash, err := auth.HashPassword(password)
	require.NoError(t, err)

	return &auth.User{
		ID:           uuid.New(),
		Username:     "ada",
		Email:        "ada@example.com",
		PasswordHash: hash,
		Role:         auth.RoleProposer,
		Enabled:      enabled,
	}
}

func TestVerifyIdentity(t *testing.T) {
	ctx := context.Background()

	t.Run("valid credentials on enabled account", func(t *testing.T) {
		user := storedUser(t, "pa55word!", true)

		store := &MockUserTracker{}
		store.On("GetByIdentifier", ctx, "ada@example.com").Return(user, nil)
		store.On("TrackSucccessfulLogin", ctx, user).Return(nil)

		provider := auth.NewUserProvider(store)

		identity, err := provider.VerifyIdentity(ctx, "ada@example.com", "pa55word!")
		require.NoError(t, err)

		assert.Equal(t, "ada@example.com", identity.Email())
		assert.Equal(t, auth.RoleProposer, identity.Role())
		assert.Equal(t, user.ID.String(), identity.ID())
		store.AssertExpectations(t)
	})

	t.Run("unknown identifier reports invalid credentials", func(t *testing.T) {
		store := &MockUserTracker{}
		store.On("GetByIdentifier", ctx, "nobody@example.com").Return(nil, auth.ErrIdentityNotFound)

		provider := auth.NewUserProvider(store)

		_, err := provider.VerifyIdentity(ctx, "nobody@example.com", "whatever")
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("wrong password reports invalid credentials and tracks the attempt", func(t *testing.T) {
		user := storedUser(t, "pa55word!", true)

		store := &MockUserTracker{}
		store.On("GetByIdentifier", ctx, "ada@example.com").Return(user, nil)
		store.On("TrackAttemptedLogin", ctx, user).Return(nil)

		provider := auth.NewUserProvider(store)

		_, err := provider.VerifyIdentity(ctx, "ada@example.com", "wrong")
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
		store.AssertExpectations(t)
	})

	t.Run("disabled account never authenticates, even with the right password", func(t *testing.T) {
		user := storedUser(t, "pa55word!", false)

		store := &MockUserTracker{}
		store.On("GetByIdentifier", ctx, "ada@example.com").Return(user, nil)

		provider := auth.NewUserProvider(store)

		_, err := provider.VerifyIdentity(ctx, "ada@example.com", "pa55word!")
		assert.ErrorIs(t, err, auth.ErrAccountDisabled)
		store.AssertNotCalled(t, "TrackSucccessfulLogin", mock.Anything, mock.Anything)
	})

	t.Run("too many attempts inside the cool down window", func(t *testing.T) {
		user := storedUser(t, "pa55word!", true)
		attemptAt := time.Now().Add(-time.Hour)
		user.LoginAttempts = auth.MaxLoginAttempts + 1
		user.LoginAttemptAt = &attemptAt

		store := &MockUserTracker{}
		store.On("GetByIdentifier", ctx, "ada@example.com").Return(user, nil)

		provider := auth.NewUserProvider(store)

		_, err := provider.VerifyIdentity(ctx, "ada@example.com", "pa55word!")
		assert.ErrorIs(t, err, auth.ErrTooManyLoginAttempts)
	})

	t.Run("attempt counter resets outside the cool down window", func(t *testing.T) {
		user := storedUser(t, "pa55word!", true)
		attemptAt := time.Now().Add(-auth.CoolDownPeriod - time.Hour)
		user.LoginAttempts = auth.MaxLoginAttempts + 1
		user.LoginAttemptAt = &attemptAt

		store := &MockUserTracker{}
		store.On("GetByIdentifier", ctx, "ada@example.com").Return(user, nil)
		store.On("TrackSucccessfulLogin", ctx, user).Return(nil)

		provider := auth.NewUserProvider(store)

		_, err := provider.VerifyIdentity(ctx, "ada@example.com", "pa55word!")
		assert.NoError(t, err)
	})
}

func TestFindIdentityByIdentifier(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		user := storedUser(t, "pa55word!", true)

		store := &MockUserTracker{}
		store.On("GetByIdentifier", ctx, "ada").Return(user, nil)

		provider := auth.NewUserProvider(store)

		identity, err := provider.FindIdentityByIdentifier(ctx, "ada")
		require.NoError(t, err)
		assert.Equal(t, "ada", identity.Username())
	})

	t.Run("not found", func(t *testing.T) {
		store := &MockUserTracker{}
		store.On("GetByIdentifier", ctx, "ghost").Return(nil, auth.ErrIdentityNotFound)

		provider := auth.NewUserProvider(store)

		_, err := provider.FindIdentityByIdentifier(ctx, "ghost")
		assert.ErrorIs(t, err, auth.ErrIdentityNotFound)
	})
}
