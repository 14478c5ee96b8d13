package auth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

type VerifyAccountMessage struct {
	Token string `json:"token"`

	// OnResponse receives the verification outcome
	OnResponse func(*VerifyAccountResponse)
}

func (e VerifyAccountMessage) Type() string { return "user.verify_account" }

type VerifyAccountResponse struct {
	User     *User
	Verified bool
	Expired  bool
	Found    bool
}

// VerifyAccountHandler consumes a verification token and enables the
// account. Unknown and expired tokens are reported through the response,
// they are expected outcomes rather than handler failures.
type VerifyAccountHandler struct {
	tokens *VerificationTokenManager
	logger Logger
}

func NewVerifyAccountHandler(tokens *VerificationTokenManager) *VerifyAccountHandler {
	return &VerifyAccountHandler{
		tokens: tokens,
		logger: defLogger{},
	}
}

func (h *VerifyAccountHandler) WithLogger(logger Logger) *VerifyAccountHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *VerifyAccountHandler) Execute(ctx context.Context, event VerifyAccountMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during account verification",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *VerifyAccountHandler) execute(ctx context.Context, event VerifyAccountMessage) error {
	response := &VerifyAccountResponse{}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	user, err := h.tokens.Consume(ctx, event.Token)
	switch {
	case err == nil:
		response.User = user
		response.Found = true
		response.Verified = true
	case goerrors.Is(err, ErrVerificationTokenNotFound):
		h.logger.Debug("account verification with unknown token")
	case goerrors.Is(err, ErrTokenExpired):
		response.Found = true
		response.Expired = true
	default:
		return goerrors.Wrap(err, goerrors.CategoryInternal, "account verification failed")
	}

	if event.OnResponse != nil {
		event.OnResponse(response)
	}

	return nil
}
