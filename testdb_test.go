package auth_test

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	auth "github.com/opencan/user-service"
)

// newTestDB opens a private in memory database with the schema applied
func newTestDB(t *testing.T) *bun.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	require.NoError(t, err)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { db.Close() })

	require.NoError(t, auth.CreateSchema(context.Background(), db))

	return db
}

// seedUser registers an account directly through the repository
func seedUser(t *testing.T, repo auth.RepositoryManager, email string, role auth.UserRole, enabled bool) *auth.User {
	t.Helper()

	hash, err := auth.HashPassword("pa55word!")
	require.NoError(t, err)

	user, err := repo.Users().Register(context.Background(), &auth.User{
		Username:     email[:len(email)-len("@example.com")],
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Enabled:      enabled,
	})
	require.NoError(t, err)

	return user
}
