package auth

import (
	"context"
	"errors"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"
	"github.com/nyaruka/phonenumbers"
	"github.com/uptrace/bun"
)

// UserController serves the authenticated user endpoints: self service
// profile plus the admin account management surface. Self service targets
// come from the session claims, never from the client.
type UserController struct {
	Debug      bool
	Logger     Logger
	Repo       RepositoryManager
	ContextKey string
}

type UserControllerOption func(*UserController) *UserController

func NewUserController(opts ...UserControllerOption) *UserController {
	c := &UserController{
		Logger:     defLogger{},
		ContextKey: "user",
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in user controller...")
	}

	return c
}

func WithUserLogger(logger Logger) UserControllerOption {
	return func(c *UserController) *UserController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

func WithUserRepo(repo RepositoryManager) UserControllerOption {
	return func(c *UserController) *UserController {
		c.Repo = repo
		return c
	}
}

func WithUserContextKey(key string) UserControllerOption {
	return func(c *UserController) *UserController {
		if key != "" {
			c.ContextKey = key
		}
		return c
	}
}

func WithUserDebug(debug bool) UserControllerOption {
	return func(c *UserController) *UserController {
		c.Debug = debug
		return c
	}
}

func (u *UserController) claims(ctx router.Context) (AuthClaims, error) {
	claims, ok := GetRouterClaims(ctx, u.ContextKey)
	if !ok {
		return nil, ErrUnauthenticated
	}
	return claims, nil
}

func (u *UserController) currentUser(ctx router.Context) (*User, error) {
	claims, err := u.claims(ctx)
	if err != nil {
		return nil, err
	}

	user, err := u.Repo.Users().GetByEmail(ctx.Context(), claims.Subject())
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrIdentityNotFound
		}
		return nil, err
	}

	return user, nil
}

// ProfileShow returns the profile of the session's own account
func (u *UserController) ProfileShow(ctx router.Context) error {
	user, err := u.currentUser(ctx)
	if err != nil {
		return respondError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, NewUserProfile(user))
}

// UpdateProfileRequest carries a partial profile update, absent fields
// stay untouched
type UpdateProfileRequest struct {
	FullName       *string `form:"full_name" json:"full_name"`
	Phone          *string `form:"phone_number" json:"phone_number"`
	City           *string `form:"city" json:"city"`
	ProfilePicture *string `form:"profile_picture_url" json:"profile_picture_url"`
}

// Validate will run validation rules
func (r UpdateProfileRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FullName, validation.Length(0, 120)),
		validation.Field(&r.Phone, validation.By(validatePhoneNumber)),
		validation.Field(&r.City, validation.Length(0, 80)),
		validation.Field(&r.ProfilePicture, is.URL),
	)
}

func validatePhoneNumber(value any) error {
	phone, _ := value.(*string)
	if phone == nil || *phone == "" {
		return nil
	}

	num, err := phonenumbers.Parse(*phone, "")
	if err != nil {
		return errors.New("must be a valid international phone number")
	}

	if !phonenumbers.IsValidNumber(num) {
		return errors.New("must be a valid international phone number")
	}

	return nil
}

func (r UpdateProfileRequest) apply(user *User) {
	if r.FullName != nil {
		user.FullName = *r.FullName
	}
	if r.Phone != nil {
		user.Phone = *r.Phone
	}
	if r.City != nil {
		user.City = *r.City
	}
	if r.ProfilePicture != nil {
		user.ProfilePicture = *r.ProfilePicture
	}
}

// ProfileUpdate applies a partial update to the session's own profile
func (u *UserController) ProfileUpdate(ctx router.Context) error {
	payload := new(UpdateProfileRequest)

	if err := ctx.Bind(payload); err != nil {
		u.Logger.Debug("ProfileUpdate bind error", "error", err)
		return badRequest(ctx, "invalid request payload")
	}

	if err := payload.Validate(); err != nil {
		return validationFailed(ctx, err)
	}

	if u.Debug {
		debugPayload(u.Logger, "profile update", payload)
	}

	user, err := u.currentUser(ctx)
	if err != nil {
		return respondError(ctx, err)
	}

	payload.apply(user)

	record, err := u.Repo.Users().UpdateAccount(ctx.Context(), user)
	if err != nil {
		return respondError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, NewUserProfile(record))
}

// Index lists every account. Admin only.
func (u *UserController) Index(ctx router.Context) error {
	users, err := u.Repo.Users().ListAll(ctx.Context())
	if err != nil {
		return respondError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, NewUserProfiles(users))
}

// ByRole lists accounts holding the given role. Admin only.
func (u *UserController) ByRole(ctx router.Context) error {
	role, ok := ParseRole(ctx.Param("role"))
	if !ok {
		return respondError(ctx, ErrInvalidRole)
	}

	users, err := u.Repo.Users().ListByRole(ctx.Context(), role)
	if err != nil {
		return respondError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, NewUserProfiles(users))
}

func (u *UserController) lookupByParam(ctx router.Context) (*User, error) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return nil, ErrIdentityNotFound
	}

	user, err := u.Repo.Users().GetByID(ctx.Context(), id.String())
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrIdentityNotFound
		}
		return nil, err
	}

	return user, nil
}

// Show returns any account by id. Admin only.
func (u *UserController) Show(ctx router.Context) error {
	user, err := u.lookupByParam(ctx)
	if err != nil {
		return respondError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, NewUserProfile(user))
}

// AdminUpdateUserRequest carries a partial admin update, including the
// fields self service cannot touch
type AdminUpdateUserRequest struct {
	Username *string `form:"username" json:"username"`
	Email    *string `form:"email" json:"email"`
	Role     *string `form:"role" json:"role"`
	Enabled  *bool   `form:"enabled" json:"enabled"`
	UpdateProfileRequest
}

// Validate will run validation rules
func (r AdminUpdateUserRequest) Validate() error {
	if err := validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Length(3, 50)),
		validation.Field(&r.Email, is.Email),
	); err != nil {
		return err
	}

	if r.Role != nil {
		if _, ok := ParseRole(*r.Role); !ok {
			return validation.Errors{"role": ErrInvalidRole}
		}
	}

	return r.UpdateProfileRequest.Validate()
}

func (r AdminUpdateUserRequest) apply(user *User) {
	if r.Username != nil {
		user.Username = *r.Username
	}
	if r.Email != nil {
		user.Email = *r.Email
	}
	if r.Role != nil {
		if role, ok := ParseRole(*r.Role); ok {
			user.Role = role
		}
	}
	if r.Enabled != nil {
		user.Enabled = *r.Enabled
	}
	r.UpdateProfileRequest.apply(user)
}

// Update modifies any account, including username, email, role, and the
// enabled flag. Admin only.
func (u *UserController) Update(ctx router.Context) error {
	payload := new(AdminUpdateUserRequest)

	if err := ctx.Bind(payload); err != nil {
		u.Logger.Debug("Update bind error", "error", err)
		return badRequest(ctx, "invalid request payload")
	}

	if err := payload.Validate(); err != nil {
		return validationFailed(ctx, err)
	}

	user, err := u.lookupByParam(ctx)
	if err != nil {
		return respondError(ctx, err)
	}

	payload.apply(user)

	record, err := u.Repo.Users().UpdateAccount(ctx.Context(), user)
	if err != nil {
		if IsUniqueConstraintError(err) {
			return respondError(ctx, ErrDuplicateIdentity)
		}
		return respondError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, NewUserProfile(record))
}

// Destroy removes an account and its verification token. Admin only.
func (u *UserController) Destroy(ctx router.Context) error {
	user, err := u.lookupByParam(ctx)
	if err != nil {
		return respondError(ctx, err)
	}

	err = u.Repo.RunInTx(ctx.Context(), nil, func(c context.Context, tx bun.Tx) error {
		if err := u.Repo.VerificationTokens().DeleteByUserTx(c, tx, user.ID); err != nil {
			return err
		}
		return u.Repo.Users().DeleteByIDTx(c, tx, user.ID)
	})
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return respondError(ctx, ErrIdentityNotFound)
		}
		return respondError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"message": "account deleted",
	})
}
