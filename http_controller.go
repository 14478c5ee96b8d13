package auth

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-router"
	"github.com/opencan/user-service/middleware/jwtware"
)

// AuthController serves the public authentication endpoints: register,
// verify, login, and validate.
type AuthController struct {
	Debug       bool
	Logger      Logger
	Repo        RepositoryManager
	Auther      Authenticator
	Registrar   *RegisterUserHandler
	Verifier    *VerifyAccountHandler
	FrontendURL string
}

type AuthControllerOption func(*AuthController) *AuthController

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger: defLogger{},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in auth controller...")
	}

	if c.Auther == nil {
		panic("Missing Authenticator in auth controller...")
	}

	if c.Registrar == nil {
		panic("Missing RegisterUserHandler in auth controller...")
	}

	if c.Verifier == nil {
		panic("Missing VerifyAccountHandler in auth controller...")
	}

	return c
}

func WithAuthLogger(logger Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

func WithAuthRepo(repo RepositoryManager) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Repo = repo
		return c
	}
}

func WithAuthAuther(auther Authenticator) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Auther = auther
		return c
	}
}

func WithAuthRegistrar(handler *RegisterUserHandler) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Registrar = handler
		return c
	}
}

func WithAuthVerifier(handler *VerifyAccountHandler) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Verifier = handler
		return c
	}
}

func WithAuthFrontendURL(url string) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.FrontendURL = url
		return c
	}
}

func WithAuthDebug(debug bool) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Debug = debug
		return c
	}
}

// RegisterRequest payload
type RegisterRequest struct {
	Username string `form:"username" json:"username"`
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
	Role     string `form:"role" json:"role"`
}

// Validate will run validation rules
func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Username,
			validation.Required,
			validation.Length(3, 50),
		),
		validation.Field(
			&r.Email,
			validation.Required,
			is.Email,
		),
		validation.Field(
			&r.Password,
			validation.Required,
			validation.Length(8, 100),
		),
		validation.Field(
			&r.Role,
			validation.Required,
			validation.By(validateRoleValue),
		),
	)
}

func validateRoleValue(value any) error {
	role, _ := value.(string)
	if _, ok := ParseRole(role); !ok {
		return ErrInvalidRole
	}
	return nil
}

// Register creates a disabled account and issues its verification token.
// The account stays unusable until the emailed token is consumed.
func (a *AuthController) Register(ctx router.Context) error {
	payload := new(RegisterRequest)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Debug("Register bind error", "error", err)
		return badRequest(ctx, "invalid request payload")
	}

	if err := payload.Validate(); err != nil {
		return validationFailed(ctx, err)
	}

	if a.Debug {
		debugPayload(a.Logger, "auth register", payload)
	}

	var response *RegisterUserResponse
	msg := RegisterUserMessage{
		Username:  payload.Username,
		Email:     payload.Email,
		Password:  payload.Password,
		Role:      payload.Role,
		UseHashid: true,
		OnResponse: func(r *RegisterUserResponse) {
			response = r
		},
	}

	if err := a.Registrar.Execute(ctx.Context(), msg); err != nil {
		a.Logger.Debug("Register error", "email", payload.Email, "error", err)
		return respondError(ctx, err)
	}

	return ctx.JSON(router.StatusCreated, map[string]any{
		"id":      response.User.ID.String(),
		"message": "account created, check your email to verify it",
	})
}

// Verify consumes the emailed token and redirects to the frontend result
// page. Without a configured frontend it answers JSON instead.
func (a *AuthController) Verify(ctx router.Context) error {
	token := ctx.Query("token", "")

	verified := false
	if token != "" {
		var response *VerifyAccountResponse
		msg := VerifyAccountMessage{
			Token: token,
			OnResponse: func(r *VerifyAccountResponse) {
				response = r
			},
		}

		if err := a.Verifier.Execute(ctx.Context(), msg); err != nil {
			a.Logger.Error("Verify error", "error", err)
			return respondError(ctx, err)
		}

		verified = response.Verified
	}

	if a.FrontendURL == "" {
		if !verified {
			return ctx.JSON(router.StatusBadRequest, map[string]any{"verified": false})
		}
		return ctx.JSON(router.StatusOK, map[string]any{"verified": true})
	}

	status := "failed"
	if verified {
		status = "success"
	}

	return ctx.Redirect(a.FrontendURL+"/verified?status="+status, router.StatusFound)
}

// LoginRequest payload
type LoginRequest struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// GetIdentifier returns the identifier
func (r LoginRequest) GetIdentifier() string {
	return r.Email
}

// GetPassword will return the password
func (r LoginRequest) GetPassword() string {
	return r.Password
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Email,
			validation.Required,
			is.Email,
		),
		validation.Field(
			&r.Password,
			validation.Required,
		),
	)
}

// Login exchanges credentials for a session token. Unknown email, wrong
// password, and disabled account all collapse into one 401 answer.
func (a *AuthController) Login(ctx router.Context) error {
	payload := new(LoginRequest)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Debug("Login bind error", "error", err)
		return badRequest(ctx, "invalid request payload")
	}

	if err := payload.Validate(); err != nil {
		return validationFailed(ctx, err)
	}

	if a.Debug {
		debugPayload(a.Logger, "auth login", payload)
	}

	token, err := a.Auther.Login(ctx.Context(), payload.GetIdentifier(), payload.GetPassword())
	if err != nil {
		a.Logger.Debug("Login error", "email", payload.Email, "error", err)
		return ctx.JSON(router.StatusUnauthorized, map[string]any{
			"error": "invalid credentials or inactive account",
		})
	}

	claims, err := a.Auther.ValidateToken(token)
	if err != nil {
		return respondError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"token":      token,
		"expires_at": claims.Expires(),
	})
}

// Validate inspects the bearer token on the request and reports its
// claims without touching the store
func (a *AuthController) Validate(ctx router.Context) error {
	raw, err := jwtware.ExtractRawTokenFromContext(ctx, jwtware.GetExtractors(
		"header:"+router.HeaderAuthorization,
		"Bearer",
	))
	if err != nil {
		return ctx.JSON(router.StatusUnauthorized, map[string]any{
			"valid": false,
			"error": "missing or invalid authorization header",
		})
	}

	claims, err := a.Auther.ValidateToken(raw)
	if err != nil {
		a.Logger.Debug("Validate token error", "error", err)
		return ctx.JSON(router.StatusUnauthorized, map[string]any{
			"valid": false,
			"error": "invalid or expired token",
		})
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"valid":      true,
		"email":      claims.Subject(),
		"role":       claims.Role(),
		"expires_at": claims.Expires(),
	})
}

func badRequest(ctx router.Context, msg string) error {
	return ctx.JSON(router.StatusBadRequest, map[string]any{
		"error": msg,
	})
}

func validationFailed(ctx router.Context, err error) error {
	if verrs, ok := err.(validation.Errors); ok {
		return ctx.JSON(router.StatusBadRequest, map[string]any{
			"error":  "validation failed",
			"fields": verrs,
		})
	}
	return badRequest(ctx, err.Error())
}
