package docauth

import (
	"time"

	"github.com/goliatone/go-errors"
	"golang.org/x/crypto/bcrypt"
)

// MinSigningKeyLength is enforced in production: a shorter HMAC secret
// makes offline brute force of issued tokens feasible.
const MinSigningKeyLength = 32

// SimpleConfig is the default Config implementation.
type SimpleConfig struct {
	SigningKey            string
	Issuer                string
	AccessTokenTTL        time.Duration
	RefreshTokenTTL       time.Duration
	BcryptCost            int
	EnforcePasswordPolicy bool
	// Production gates the signing-key length check: a dev instance may
	// run with a short key, a production one refuses to start.
	Production bool
}

var _ Config = (*SimpleConfig)(nil)

// DefaultConfig returns a config with the stock lifetimes: short-lived
// access tokens (hours), long-lived refresh tokens (days).
func DefaultConfig(signingKey string) *SimpleConfig {
	return &SimpleConfig{
		SigningKey:            signingKey,
		Issuer:                "docauth",
		AccessTokenTTL:        2 * time.Hour,
		RefreshTokenTTL:       7 * 24 * time.Hour,
		BcryptCost:            12,
		EnforcePasswordPolicy: true,
	}
}

func (c *SimpleConfig) GetSigningKey() string { return c.SigningKey }

func (c *SimpleConfig) GetIssuer() string { return c.Issuer }

func (c *SimpleConfig) GetAccessTokenTTL() time.Duration { return c.AccessTokenTTL }

func (c *SimpleConfig) GetRefreshTokenTTL() time.Duration { return c.RefreshTokenTTL }

func (c *SimpleConfig) GetBcryptCost() int { return c.BcryptCost }

func (c *SimpleConfig) GetEnforcePasswordPolicy() bool { return c.EnforcePasswordPolicy }

// Validate checks the configuration is usable. Call it before wiring
// the config into constructors; a production deployment must refuse to
// start on error.
func (c *SimpleConfig) Validate() error {
	if c.SigningKey == "" {
		return errors.New("signing key is required", errors.CategoryValidation)
	}

	if c.Production && len(c.SigningKey) < MinSigningKeyLength {
		return errors.New("signing key must be at least 32 characters in production", errors.CategoryValidation).
			WithMetadata(map[string]any{
				"length": len(c.SigningKey),
			})
	}

	if c.AccessTokenTTL <= 0 {
		return errors.New("access token TTL must be positive", errors.CategoryValidation)
	}

	if c.RefreshTokenTTL <= 0 {
		return errors.New("refresh token TTL must be positive", errors.CategoryValidation)
	}

	if c.RefreshTokenTTL < c.AccessTokenTTL {
		return errors.New("refresh token TTL must not be shorter than the access token TTL", errors.CategoryValidation)
	}

	if c.BcryptCost != 0 && (c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost) {
		return errors.New("bcrypt cost is out of range", errors.CategoryValidation).
			WithMetadata(map[string]any{
				"cost": c.BcryptCost,
				"min":  bcrypt.MinCost,
				"max":  bcrypt.MaxCost,
			})
	}

	return nil
}
