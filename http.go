package auth

import (
	"context"
	"strings"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/opencan/user-service/middleware/jwtware"

	"github.com/goliatone/go-router"
)

// DefaultPublicRoutes are the paths that bypass the authentication gate.
// A trailing slash marks a prefix, anything else is an exact match.
var DefaultPublicRoutes = []string{
	"/auth/",
	"/healthz",
	"/metrics",
	"/docs/",
	"/error",
}

// AuthGate is the request authentication gate: every route not on the
// public allow list must carry a valid bearer token.
type AuthGate struct {
	cfg       Config
	validator TokenValidator
	logger    Logger
	public    []string
}

func NewAuthGate(cfg Config, validator TokenValidator) *AuthGate {
	public := cfg.GetPublicRoutes()
	if len(public) == 0 {
		public = DefaultPublicRoutes
	}

	return &AuthGate{
		cfg:       cfg,
		validator: validator,
		logger:    defLogger{},
		public:    public,
	}
}

func (g *AuthGate) WithLogger(logger Logger) *AuthGate {
	if logger != nil {
		g.logger = logger
	}
	return g
}

// ContextKey is the router locals key claims are stored under
func (g *AuthGate) ContextKey() string {
	key := g.cfg.GetContextKey()
	if key == "" {
		key = "user"
	}
	return key
}

// Middleware builds the gate middleware. Claims from valid tokens are
// stored in router locals and the standard context, failures end the
// request with 401 and no identity context.
func (g *AuthGate) Middleware() router.MiddlewareFunc {
	return jwtware.New(jwtware.Config{
		Filter:         g.isPublic,
		TokenValidator: gateValidator{g.validator},
		ContextKey:     g.ContextKey(),
		TokenLookup:    g.cfg.GetTokenLookup(),
		AuthScheme:     g.cfg.GetAuthScheme(),
		ErrorHandler:   g.errorHandler,
		ContextEnricher: func(ctx context.Context, claims jwtware.AuthClaims) context.Context {
			if ac, ok := claims.(AuthClaims); ok {
				return WithClaimsContext(ctx, ac)
			}
			return ctx
		},
	})
}

func (g *AuthGate) isPublic(ctx router.Context) bool {
	path := ctx.Path()
	for _, route := range g.public {
		if strings.HasSuffix(route, "/") {
			if strings.HasPrefix(path, route) {
				return true
			}
			continue
		}
		if path == route {
			return true
		}
	}
	return false
}

func (g *AuthGate) errorHandler(ctx router.Context, err error) error {
	g.logger.Debug("authentication gate rejected request",
		"path", ctx.Path(),
		"error", err,
	)

	var richErr *errors.Error
	if IsTokenExpiredError(err) {
		richErr = ErrTokenExpired
	} else if errors.Is(err, jwtware.ErrJWTMissingOrMalformed) {
		richErr = ErrUnauthenticated
	} else if !errors.As(err, &richErr) {
		richErr = ErrUnauthenticated
	}

	return respondError(ctx, richErr)
}

// gateValidator adapts the package TokenValidator to the middleware's
// import cycle free mirror interface
type gateValidator struct {
	validator TokenValidator
}

func (v gateValidator) Validate(tokenString string) (jwtware.AuthClaims, error) {
	claims, err := v.validator.Validate(tokenString)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// RegisterRoutes mounts the gate and the auth and user endpoints on the
// given router. Self service profile routes go before the admin wildcard
// routes so /users/profile never matches /users/:id.
func RegisterRoutes[T any](app router.Router[T], gate *AuthGate, auth *AuthController, users *UserController) {
	app.Use(gate.Middleware())

	app.Get("/healthz", func(ctx router.Context) error {
		return ctx.JSON(router.StatusOK, map[string]any{"status": "ok"})
	}).SetName("healthz.get")

	app.Post("/auth/register", auth.Register).SetName("auth-register.post")
	app.Get("/auth/verify", auth.Verify).SetName("auth-verify.get")
	app.Post("/auth/login", auth.Login).SetName("auth-login.post")
	app.Get("/auth/validate", auth.Validate).SetName("auth-validate.get")

	admin := RequireRole(gate.ContextKey(), RoleAdmin)

	app.Get("/users/profile", users.ProfileShow).SetName("users-profile.get")
	app.Put("/users/profile", users.ProfileUpdate).SetName("users-profile.put")

	app.Get("/users", users.Index, admin).SetName("users.get")
	app.Get("/users/role/:role", users.ByRole, admin).SetName("users-role.get")
	app.Get("/users/:id", users.Show, admin).SetName("users-id.get")
	app.Put("/users/:id", users.Update, admin).SetName("users-id.put")
	app.Delete("/users/:id", users.Destroy, admin).SetName("users-id.delete")
}

// respondError maps package errors to JSON responses, category by category,
// never leaking store internals
func respondError(ctx router.Context, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryInternal, "An unexpected server error occurred").
			WithCode(errors.CodeInternal)
	}

	status := richErr.Code
	if status == 0 {
		status = statusForCategory(richErr.Category)
	}

	return ctx.JSON(status, map[string]any{
		"error": richErr.Message,
		"code":  richErr.TextCode,
	})
}

func statusForCategory(category errors.Category) int {
	switch category {
	case errors.CategoryAuth:
		return router.StatusUnauthorized
	case errors.CategoryAuthz:
		return router.StatusForbidden
	case errors.CategoryValidation, errors.CategoryBadInput:
		return router.StatusBadRequest
	case errors.CategoryConflict:
		return router.StatusConflict
	case errors.CategoryNotFound:
		return router.StatusNotFound
	case errors.CategoryRateLimit:
		return router.StatusTooManyRequests
	default:
		return router.StatusInternalServerError
	}
}

func debugPayload(logger Logger, label string, payload any) {
	logger.Debug(label, "payload", print.MaybePrettyJSON(payload))
}
