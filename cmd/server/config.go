package main

import (
	"log"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env         string     `yaml:"env" env:"APP_ENV" env-default:"local"`
	Address     string     `yaml:"address" env:"HTTP_ADDRESS" env-default:":8080"`
	DSN         string     `yaml:"dsn" env:"DATABASE_DSN" env-default:"file:user-service.db?cache=shared"`
	BaseURL     string     `yaml:"base_url" env:"BASE_URL" env-default:"http://localhost:8080"`
	FrontendURL string     `yaml:"frontend_url" env:"FRONTEND_URL" env-default:"http://localhost:3000"`
	Debug       bool       `yaml:"debug" env:"DEBUG" env-default:"false"`
	Auth        AuthConfig `yaml:"auth"`
}

type AuthConfig struct {
	SigningKey         string   `yaml:"signing_key" env:"AUTH_SIGNING_KEY" env-required:"true"`
	SigningMethod      string   `yaml:"signing_method" env:"AUTH_SIGNING_METHOD" env-default:"HS256"`
	ContextKey         string   `yaml:"context_key" env:"AUTH_CONTEXT_KEY" env-default:"user"`
	TokenExpiration    int      `yaml:"token_expiration_hours" env:"AUTH_TOKEN_EXPIRATION_HOURS" env-default:"24"`
	VerificationWindow int      `yaml:"verification_window_hours" env:"AUTH_VERIFICATION_WINDOW_HOURS" env-default:"24"`
	TokenLookup        string   `yaml:"token_lookup" env:"AUTH_TOKEN_LOOKUP" env-default:"header:Authorization"`
	AuthScheme         string   `yaml:"auth_scheme" env:"AUTH_SCHEME" env-default:"Bearer"`
	Issuer             string   `yaml:"issuer" env:"AUTH_ISSUER" env-default:"user-service"`
	Audience           []string `yaml:"audience" env:"AUTH_AUDIENCE"`
	PublicRoutes       []string `yaml:"public_routes" env:"AUTH_PUBLIC_ROUTES"`
}

// AuthConfig satisfies the auth.Config interface

func (c AuthConfig) GetSigningKey() string      { return c.SigningKey }
func (c AuthConfig) GetSigningMethod() string   { return c.SigningMethod }
func (c AuthConfig) GetContextKey() string      { return c.ContextKey }
func (c AuthConfig) GetTokenExpiration() int    { return c.TokenExpiration }
func (c AuthConfig) GetVerificationWindow() int { return c.VerificationWindow }
func (c AuthConfig) GetTokenLookup() string     { return c.TokenLookup }
func (c AuthConfig) GetAuthScheme() string      { return c.AuthScheme }
func (c AuthConfig) GetIssuer() string          { return c.Issuer }
func (c AuthConfig) GetAudience() []string      { return c.Audience }
func (c AuthConfig) GetPublicRoutes() []string  { return c.PublicRoutes }

// MustLoad reads configuration from the file named by CONFIG_PATH when
// set, falling back to environment variables only.
func MustLoad() *Config {
	cfg := &Config{}

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if _, err := os.Stat(path); err != nil {
			log.Fatalf("config file does not exist: %s", path)
		}
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			log.Fatalf("cannot read config: %s", err)
		}
		return cfg
	}

	if err := cleanenv.ReadEnv(cfg); err != nil {
		log.Fatalf("cannot read config from environment: %s", err)
	}

	return cfg
}
