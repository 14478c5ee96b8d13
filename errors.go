package auth

import (
	"strings"

	"github.com/goliatone/go-errors"
)

// ErrIdentityNotFound is the error we return for non found identities
var ErrIdentityNotFound = errors.New("identity not found", errors.CategoryNotFound).
	WithTextCode("IDENTITY_NOT_FOUND").
	WithCode(errors.CodeNotFound)

// ErrDuplicateIdentity is returned when a registration collides with an
// existing username or email
var ErrDuplicateIdentity = errors.New("username or email already registered", errors.CategoryConflict).
	WithTextCode("DUPLICATE_IDENTITY").
	WithCode(errors.CodeConflict)

// ErrInvalidRole is returned for role values outside the known set
var ErrInvalidRole = errors.New("unknown or invalid role", errors.CategoryValidation).
	WithTextCode("INVALID_ROLE").
	WithCode(errors.CodeBadRequest)

// ErrInvalidCredentials covers both unknown identifiers and password
// mismatches so callers cannot enumerate registered accounts
var ErrInvalidCredentials = errors.New("invalid credentials", errors.CategoryAuth).
	WithTextCode("INVALID_CREDENTIALS").
	WithCode(errors.CodeUnauthorized)

// ErrAccountDisabled is returned when the account has not completed email
// verification
var ErrAccountDisabled = errors.New("account pending email verification", errors.CategoryAuth).
	WithTextCode("ACCOUNT_DISABLED").
	WithCode(errors.CodeUnauthorized)

// ErrTooManyLoginAttempts is returned when an account is in cool down
var ErrTooManyLoginAttempts = errors.New("too many login attempts", errors.CategoryRateLimit).
	WithTextCode("TOO_MANY_ATTEMPTS")

// ErrTokenExpired is returned for session tokens past their expiry
var ErrTokenExpired = errors.New("token is expired", errors.CategoryAuth).
	WithTextCode("TOKEN_EXPIRED").
	WithCode(errors.CodeUnauthorized)

// ErrTokenMalformed is returned for tokens we cannot parse
var ErrTokenMalformed = errors.New("token is malformed", errors.CategoryAuth).
	WithTextCode("TOKEN_MALFORMED").
	WithCode(errors.CodeUnauthorized)

// ErrTokenSignatureInvalid is returned when the signature does not verify
// or the token was signed with an unexpected method
var ErrTokenSignatureInvalid = errors.New("token signature is invalid", errors.CategoryAuth).
	WithTextCode("TOKEN_SIGNATURE_INVALID").
	WithCode(errors.CodeUnauthorized)

// ErrVerificationTokenNotFound is returned when a verification token does
// not exist, which includes tokens that were already consumed
var ErrVerificationTokenNotFound = errors.New("verification token not found", errors.CategoryNotFound).
	WithTextCode("VERIFICATION_TOKEN_NOT_FOUND").
	WithCode(errors.CodeNotFound)

// ErrUnauthenticated is returned when a protected operation runs without
// claims in context
var ErrUnauthenticated = errors.New("authentication required", errors.CategoryAuth).
	WithTextCode("UNAUTHENTICATED").
	WithCode(errors.CodeUnauthorized)

// ErrForbidden is returned when the authenticated role does not satisfy the
// access requirement
var ErrForbidden = errors.New("insufficient role", errors.CategoryAuthz).
	WithTextCode("FORBIDDEN").
	WithCode(errors.CodeForbidden)

// ErrNoEmptyString rejects empty passwords before hashing
var ErrNoEmptyString = errors.New("password must not be empty", errors.CategoryValidation).
	WithTextCode("EMPTY_PASSWORD").
	WithCode(errors.CodeBadRequest)

// ErrMismatchedHashAndPassword is the internal bcrypt mismatch error, mapped
// to ErrInvalidCredentials before it leaves the package
var ErrMismatchedHashAndPassword = errors.New("password does not match", errors.CategoryAuth).
	WithTextCode("PASSWORD_MISMATCH").
	WithCode(errors.CodeUnauthorized)

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}

// IsUniqueConstraintError sniffs driver level unique violations so the
// registration path can map them to ErrDuplicateIdentity
func IsUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "constraint failed: users.")
}
