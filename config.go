package auth

import (
	"time"

	"github.com/caarlos0/env/v11"
	goerrors "github.com/goliatone/go-errors"
)

// EnvConfig is the environment-backed Config implementation. The signing
// secret and hash cost are deployment configuration; rotating the secret
// invalidates every outstanding session token.
type EnvConfig struct {
	SigningKey    string        `env:"AUTH_SIGNING_KEY" envDefault:"dev-secret-key-change-in-production"`
	SigningMethod string        `env:"AUTH_SIGNING_METHOD" envDefault:"HS256"`
	TokenTTL      time.Duration `env:"AUTH_TOKEN_TTL" envDefault:"8h"`
	BcryptCost    int           `env:"AUTH_BCRYPT_COST" envDefault:"14"`
}

var _ Config = (*EnvConfig)(nil)

// LoadConfig reads auth configuration from the environment
func LoadConfig() (*EnvConfig, error) {
	cfg := &EnvConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to parse auth configuration")
	}
	return cfg, nil
}

func (c *EnvConfig) GetSigningKey() string {
	return c.SigningKey
}

func (c *EnvConfig) GetSigningMethod() string {
	return c.SigningMethod
}

func (c *EnvConfig) GetTokenTTL() time.Duration {
	return c.TokenTTL
}

func (c *EnvConfig) GetBcryptCost() int {
	return c.BcryptCost
}
