package app

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Env       string `env:"ENV" envDefault:"dev"`       // Environment (dev, staging, prod)
	Port      int    `env:"PORT" envDefault:"8080"`     // HTTP server port
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// DatabaseURL is a Postgres DSN. Row-level security requires Postgres,
	// so there is no other driver to point at.
	DatabaseURL string `env:"DATABASE_URL,required"`

	TokenIssuer string `env:"TOKEN_ISSUER" envDefault:"wayplan"`

	// Exactly one of JWTSecret / JWTSecretFile must be set.
	JWTSecret     string `env:"JWT_SECRET"`
	JWTSecretFile string `env:"JWT_SECRET_FILE"`

	AccessTokenTTL  time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"15m"`
	RefreshTokenTTL time.Duration `env:"REFRESH_TOKEN_TTL" envDefault:"168h"`
	ResetTokenTTL   time.Duration `env:"RESET_TOKEN_TTL" envDefault:"1h"`

	PepperFile string `env:"PEPPER_FILE" envDefault:"pepper"`

	// HashConcurrency caps concurrent argon2 computations. Zero means one
	// per CPU.
	HashConcurrency int `env:"HASH_CONCURRENCY"`

	ShutdownGracePeriod time.Duration `env:"SHUTDOWN_GRACE_PERIOD" envDefault:"10s"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

// JWTSecretBytes resolves the signing secret from the environment or the
// configured secret file.
func (c Config) JWTSecretBytes() ([]byte, error) {
	if c.JWTSecret != "" {
		return []byte(c.JWTSecret), nil
	}
	if c.JWTSecretFile != "" {
		raw, err := os.ReadFile(c.JWTSecretFile)
		if err != nil {
			return nil, fmt.Errorf("read jwt secret file: %w", err)
		}
		secret := strings.TrimSpace(string(raw))
		if secret == "" {
			return nil, errors.New("jwt secret file is empty")
		}
		return []byte(secret), nil
	}
	return nil, errors.New("JWT_SECRET or JWT_SECRET_FILE must be set")
}
