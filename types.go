package auth

import (
	"context"
	"fmt"
	"strings"
)

// Logger takes a message plus slog style key value pairs
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Identity holds the attributes of an identity
type Identity interface {
	ID() string
	Username() string
	Email() string
	Role() string
}

// Authenticator holds methods to deal with authentication
type Authenticator interface {
	Login(ctx context.Context, identifier, password string) (string, error)
	ValidateToken(token string) (AuthClaims, error)
}

type LoginPayload interface {
	GetIdentifier() string
	GetPassword() string
}

// Config holds auth options
type Config interface {
	GetSigningKey() string
	GetSigningMethod() string
	GetContextKey() string
	GetTokenExpiration() int
	GetVerificationWindow() int
	GetTokenLookup() string
	GetAuthScheme() string
	GetIssuer() string
	GetAudience() []string
	GetPublicRoutes() []string
}

// IdentityProvider ensure we have a store to retrieve auth identity
type IdentityProvider interface {
	VerifyIdentity(ctx context.Context, identifier, password string) (Identity, error)
	FindIdentityByIdentifier(ctx context.Context, identifier string) (Identity, error)
}

// TokenService issues and validates session tokens
type TokenService interface {
	Generate(identity Identity) (string, error)
	SignClaims(claims *JWTClaims) (string, error)
	Validate(tokenString string) (AuthClaims, error)
}

// TokenValidator validates a raw token string into structured claims
type TokenValidator interface {
	Validate(tokenString string) (AuthClaims, error)
}

// PasswordAuthenticator authenticates passwords
type PasswordAuthenticator interface {
	HashPassword(password string) (string, error)
	ComparePasswordAndHash(password, hash string) error
}

// Mailer delivers account notification email
type Mailer interface {
	SendVerificationEmail(ctx context.Context, to, token string) error
}

type defLogger struct{}

func (d defLogger) Error(msg string, args ...any) {
	fmt.Println(logLine("ERR", msg, args...))
}

func (d defLogger) Warn(msg string, args ...any) {
	fmt.Println(logLine("WRN", msg, args...))
}

func (d defLogger) Info(msg string, args ...any) {
	fmt.Println(logLine("INF", msg, args...))
}

func (d defLogger) Debug(msg string, args ...any) {
	fmt.Println(logLine("DBG", msg, args...))
}

// logLine renders the message followed by its key value pairs. A dangling
// key is printed as is rather than dropped.
func logLine(level, msg string, args ...any) string {
	var b strings.Builder
	b.WriteString("[")
	b.WriteString(level)
	b.WriteString("] AUTH ")
	b.WriteString(msg)

	for i := 0; i < len(args); i += 2 {
		if i+1 >= len(args) {
			fmt.Fprintf(&b, " %v", args[i])
			break
		}
		fmt.Fprintf(&b, " %v=%v", args[i], args[i+1])
	}

	return b.String()
}
