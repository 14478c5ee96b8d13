package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// DefaultVerificationWindow is how long a verification token stays usable
var DefaultVerificationWindow = 24 * time.Hour

// verificationTokenBytes gives 256 bits of entropy per token
const verificationTokenBytes = 32

// GenerateVerificationToken returns an opaque single use secret
func GenerateVerificationToken() (string, error) {
	buf := make([]byte, verificationTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to generate verification token")
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// VerificationTokenManager drives the verification token lifecycle: issue
// on registration, consume exactly once to enable the account.
type VerificationTokenManager struct {
	repo   RepositoryManager
	window time.Duration
	now    func() time.Time
	logger Logger
}

type VerificationOption func(*VerificationTokenManager)

func WithVerificationWindow(window time.Duration) VerificationOption {
	return func(m *VerificationTokenManager) {
		if window > 0 {
			m.window = window
		}
	}
}

func WithVerificationClock(now func() time.Time) VerificationOption {
	return func(m *VerificationTokenManager) {
		if now != nil {
			m.now = now
		}
	}
}

func WithVerificationLogger(logger Logger) VerificationOption {
	return func(m *VerificationTokenManager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

func NewVerificationTokenManager(repo RepositoryManager, opts ...VerificationOption) *VerificationTokenManager {
	m := &VerificationTokenManager{
		repo:   repo,
		window: DefaultVerificationWindow,
		now:    time.Now,
		logger: defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}

	return m
}

// Create issues a fresh token for the user. Any prior live token for the
// same account is invalidated first.
func (m *VerificationTokenManager) Create(ctx context.Context, user *User) (*VerificationToken, error) {
	var record *VerificationToken

	err := m.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var err error
		record, err = m.CreateTx(ctx, tx, user)
		return err
	})
	if err != nil {
		return nil, err
	}

	return record, nil
}

func (m *VerificationTokenManager) CreateTx(ctx context.Context, tx bun.IDB, user *User) (*VerificationToken, error) {
	secret, err := GenerateVerificationToken()
	if err != nil {
		return nil, err
	}

	if err := m.repo.VerificationTokens().DeleteByUserTx(ctx, tx, user.ID); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to invalidate previous verification token")
	}

	record := &VerificationToken{
		Token:     secret,
		UserID:    user.ID,
		ExpiresAt: m.now().Add(m.window),
	}

	record, err = m.repo.VerificationTokens().CreateTx(ctx, tx, record)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to store verification token")
	}

	return record, nil
}

// Consume looks up the token, enforces the expiry boundary, enables the
// account, and deletes the row, all in one transaction. A second consume of
// the same token observes ErrVerificationTokenNotFound. This is the only
// path that activates accounts.
func (m *VerificationTokenManager) Consume(ctx context.Context, token string) (*User, error) {
	var user *User

	err := m.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		record, err := m.repo.VerificationTokens().GetByTokenTx(ctx, tx, token)
		if err != nil {
			if errors.IsNotFound(err) {
				return ErrVerificationTokenNotFound
			}
			return errors.Wrap(err, errors.CategoryInternal, "failed to look up verification token")
		}

		if record.ExpiredAt(m.now()) {
			m.logger.Debug("verification token expired", "user_id", record.UserID.String())
			return ErrTokenExpired
		}

		user, err = m.repo.Users().EnableTx(ctx, tx, record.UserID)
		if err != nil {
			if errors.IsNotFound(err) {
				return ErrIdentityNotFound
			}
			return errors.Wrap(err, errors.CategoryInternal, "failed to enable account")
		}

		if err := m.repo.VerificationTokens().DeleteByIDTx(ctx, tx, record.ID); err != nil {
			return errors.Wrap(err, errors.CategoryInternal, "failed to consume verification token")
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}
