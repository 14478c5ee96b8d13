package auth

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// UserRole is the user's role
type UserRole = string

const (
	// RoleVisitor can browse published content
	RoleVisitor UserRole = "VISITOR"
	// RoleProposer can submit proposals
	RoleProposer UserRole = "PROPOSER"
	// RoleAdmin manages accounts and content
	RoleAdmin UserRole = "ADMIN"
)

// User is the user model
type User struct {
	bun.BaseModel  `bun:"table:users,alias:usr"`
	ID             uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Role           UserRole   `bun:"user_role,notnull" json:"role,omitempty"`
	Username       string     `bun:"username,notnull,unique" json:"username,omitempty"`
	Email          string     `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash   string     `bun:"password_hash,notnull" json:"-"`
	Enabled        bool       `bun:"enabled" json:"enabled"`
	FullName       string     `bun:"full_name" json:"full_name,omitempty"`
	Phone          string     `bun:"phone_number" json:"phone_number,omitempty"`
	City           string     `bun:"city" json:"city,omitempty"`
	ProfilePicture string     `bun:"profile_picture_url" json:"profile_picture_url,omitempty"`
	LoginAttempts  int        `bun:"login_attempts" json:"-"`
	LoginAttemptAt *time.Time `bun:"login_attempt_at" json:"-"`
	LoggedInAt     *time.Time `bun:"loggedin_at" json:"loggedin_at,omitempty"`
	CreatedAt      *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt      *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// VerificationToken is the single use email verification token model.
// The unique user_id column keeps at most one live token per account.
type VerificationToken struct {
	bun.BaseModel `bun:"table:verification_tokens,alias:vtk"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Token         string     `bun:"token,notnull,unique" json:"token,omitempty"`
	UserID        uuid.UUID  `bun:"user_id,notnull,unique,type:uuid" json:"user_id,omitempty"`
	ExpiresAt     time.Time  `bun:"expires_at,notnull" json:"expires_at,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// ExpiredAt reports whether the token is no longer valid at the given
// instant. The boundary is exclusive: a token is expired at exactly
// expires_at.
func (t *VerificationToken) ExpiredAt(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// UserProfile is the outward facing projection of a User. Password hashes
// and login bookkeeping never leave the package.
type UserProfile struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	Email          string `json:"email"`
	Role           string `json:"role"`
	Enabled        bool   `json:"enabled"`
	FullName       string `json:"full_name,omitempty"`
	Phone          string `json:"phone_number,omitempty"`
	City           string `json:"city,omitempty"`
	ProfilePicture string `json:"profile_picture_url,omitempty"`
}

// NewUserProfile maps a stored user into its outward projection
func NewUserProfile(u *User) UserProfile {
	return UserProfile{
		ID:             u.ID.String(),
		Username:       u.Username,
		Email:          u.Email,
		Role:           string(u.Role),
		Enabled:        u.Enabled,
		FullName:       u.FullName,
		Phone:          u.Phone,
		City:           u.City,
		ProfilePicture: u.ProfilePicture,
	}
}

// NewUserProfiles maps a result set
func NewUserProfiles(users []*User) []UserProfile {
	out := make([]UserProfile, 0, len(users))
	for _, u := range users {
		out = append(out, NewUserProfile(u))
	}
	return out
}
