package auth

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type VerificationTokens interface {
	repository.Repository[*VerificationToken]

	GetByToken(ctx context.Context, token string) (*VerificationToken, error)
	GetByTokenTx(ctx context.Context, tx bun.IDB, token string) (*VerificationToken, error)
	DeleteByUserTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) error
	DeleteByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error
}

type verificationTokens struct {
	repository.Repository[*VerificationToken]
	db *bun.DB
}

var (
	_ VerificationTokens                        = (*verificationTokens)(nil)
	_ repository.Repository[*VerificationToken] = (*verificationTokens)(nil)
)

func NewVerificationTokensRepository(db *bun.DB) VerificationTokens {
	repo := repository.NewRepository[*VerificationToken](db, repository.ModelHandlers[*VerificationToken]{
		NewRecord: func() *VerificationToken { return &VerificationToken{} },
		GetID: func(t *VerificationToken) uuid.UUID {
			if t == nil {
				return uuid.Nil
			}
			return t.ID
		},
		SetID: func(t *VerificationToken, id uuid.UUID) {
			if t != nil {
				t.ID = id
			}
		},
		GetIdentifier: func() string {
			return "token"
		},
	})

	return &verificationTokens{
		Repository: repo,
		db:         db,
	}
}

func (r *verificationTokens) GetByToken(ctx context.Context, token string) (*VerificationToken, error) {
	return r.GetByTokenTx(ctx, r.db, token)
}

func (r *verificationTokens) GetByTokenTx(ctx context.Context, tx bun.IDB, token string) (*VerificationToken, error) {
	record := &VerificationToken{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.token = ?", token).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{"token": token})
		}
		return nil, err
	}
	return record, nil
}

// DeleteByUserTx removes any live token for the user, keeping the at most
// one unconsumed token invariant when a new one is issued.
func (r *verificationTokens) DeleteByUserTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) error {
	_, err := tx.NewDelete().
		Model((*VerificationToken)(nil)).
		Where("user_id = ?", userID).
		Exec(ctx)
	return err
}

func (r *verificationTokens) DeleteByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error {
	_, err := tx.NewDelete().
		Model((*VerificationToken)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	return err
}
