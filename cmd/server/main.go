package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-router"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	auth "github.com/opencan/user-service"
)

func main() {
	cfg := MustLoad()

	logger := newLogger(cfg.Env)
	logger.Info("starting user service", "env", cfg.Env, "address", cfg.Address)

	sqldb, err := sql.Open(sqliteshim.ShimName, cfg.DSN)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	db := bun.NewDB(sqldb, sqlitedialect.New())
	defer db.Close()

	ctx := context.Background()
	if err := auth.CreateSchema(ctx, db); err != nil {
		logger.Error("failed to create schema", "error", err)
		os.Exit(1)
	}

	authLogger := &slogAdapter{logger: logger}

	repo := auth.NewRepositoryManager(db)
	repo.MustValidate()

	provider := auth.NewUserProvider(repo.Users()).WithLogger(authLogger)
	auther := auth.NewAuthenticator(provider, cfg.Auth).WithLogger(authLogger)

	tokens := auth.NewVerificationTokenManager(repo,
		auth.WithVerificationWindow(time.Duration(cfg.Auth.VerificationWindow)*time.Hour),
		auth.WithVerificationLogger(authLogger),
	)

	mailer := auth.NewLogMailer(cfg.BaseURL, authLogger)
	registrar := auth.NewRegisterUserHandler(repo, tokens).
		WithMailer(mailer).
		WithLogger(authLogger)
	verifier := auth.NewVerifyAccountHandler(tokens).WithLogger(authLogger)

	gate := auth.NewAuthGate(cfg.Auth, auther.TokenService()).WithLogger(authLogger)

	authController := auth.NewAuthController(
		auth.WithAuthRepo(repo),
		auth.WithAuthAuther(auther),
		auth.WithAuthRegistrar(registrar),
		auth.WithAuthVerifier(verifier),
		auth.WithAuthFrontendURL(cfg.FrontendURL),
		auth.WithAuthLogger(authLogger),
		auth.WithAuthDebug(cfg.Debug),
	)

	userController := auth.NewUserController(
		auth.WithUserRepo(repo),
		auth.WithUserContextKey(cfg.Auth.ContextKey),
		auth.WithUserLogger(authLogger),
		auth.WithUserDebug(cfg.Debug),
	)

	srv := router.NewFiberAdapter(func(a *fiber.App) *fiber.App {
		return router.DefaultFiberOptions(fiber.New(fiber.Config{
			AppName:       "user-service",
			StrictRouting: false,
		}))
	})

	auth.RegisterRoutes(srv.Router(), gate, authController, userController)

	srv.Serve(cfg.Address)
	logger.Info("user service listening", "address", cfg.Address)

	sig := waitExitSignal()
	logger.Info("shutting down", "signal", sig.String())
}

func waitExitSignal() os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return <-ch
}

func newLogger(env string) *slog.Logger {
	switch env {
	case "local":
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case "dev":
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	default:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
}

// slogAdapter bridges log/slog into the auth.Logger interface. The auth
// package logs message first, key value pairs after, which matches the
// slog call shape.
type slogAdapter struct {
	logger *slog.Logger
}

func (s *slogAdapter) Debug(format string, args ...any) { s.logger.Debug(format, args...) }
func (s *slogAdapter) Info(format string, args ...any)  { s.logger.Info(format, args...) }
func (s *slogAdapter) Warn(format string, args ...any)  { s.logger.Warn(format, args...) }
func (s *slogAdapter) Error(format string, args ...any) { s.logger.Error(format, args...) }
