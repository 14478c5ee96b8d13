package auth

import (
	"context"

	"github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// CreateSchema creates the users and verification_tokens tables. Intended
// for service bootstrap and tests; production rollouts would run the same
// DDL through their migration pipeline.
func CreateSchema(ctx context.Context, db *bun.DB) error {
	if _, err := db.NewCreateTable().
		Model((*User)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to create users table")
	}

	if _, err := db.NewCreateTable().
		Model((*VerificationToken)(nil)).
		IfNotExists().
		ForeignKey(`("user_id") REFERENCES "users" ("id") ON DELETE CASCADE`).
		Exec(ctx); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to create verification_tokens table")
	}

	return nil
}
