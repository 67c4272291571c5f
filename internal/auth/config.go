package auth

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Config holds token signing settings.
type Config struct {
	Secret     string `toml:"secret"`
	Issuer     string `toml:"issuer"`
	TokenTTL   string `toml:"token_ttl"`
	InviteTTL  string `toml:"invite_ttl"`
	BcryptCost int    `toml:"bcrypt_cost"`
}

// Env maps environment variable names for auth configuration.
type Env struct {
	Secret     string
	Issuer     string
	TokenTTL   string
	InviteTTL  string
	BcryptCost string
}

// TokenTTLDuration returns the parsed token lifetime.
func (c *Config) TokenTTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.TokenTTL)
	return d
}

// InviteTTLDuration returns how long an issued invite stays redeemable.
func (c *Config) InviteTTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.InviteTTL)
	return d
}

// Finalize applies defaults, loads environment overrides, and validates the configuration.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge applies non-zero values from overlay onto the receiver.
func (c *Config) Merge(overlay *Config) {
	if overlay.Secret != "" {
		c.Secret = overlay.Secret
	}
	if overlay.Issuer != "" {
		c.Issuer = overlay.Issuer
	}
	if overlay.TokenTTL != "" {
		c.TokenTTL = overlay.TokenTTL
	}
	if overlay.InviteTTL != "" {
		c.InviteTTL = overlay.InviteTTL
	}
	if overlay.BcryptCost != 0 {
		c.BcryptCost = overlay.BcryptCost
	}
}

func (c *Config) loadDefaults() {
	if c.Issuer == "" {
		c.Issuer = "corretora"
	}
	if c.TokenTTL == "" {
		c.TokenTTL = "24h"
	}
	if c.InviteTTL == "" {
		c.InviteTTL = "168h"
	}
	if c.BcryptCost == 0 {
		c.BcryptCost = bcrypt.DefaultCost
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Secret != "" {
		if v := os.Getenv(env.Secret); v != "" {
			c.Secret = v
		}
	}
	if env.Issuer != "" {
		if v := os.Getenv(env.Issuer); v != "" {
			c.Issuer = v
		}
	}
	if env.TokenTTL != "" {
		if v := os.Getenv(env.TokenTTL); v != "" {
			c.TokenTTL = v
		}
	}
	if env.InviteTTL != "" {
		if v := os.Getenv(env.InviteTTL); v != "" {
			c.InviteTTL = v
		}
	}
	if env.BcryptCost != "" {
		if v := os.Getenv(env.BcryptCost); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.BcryptCost = n
			}
		}
	}
}

func (c *Config) validate() error {
	if len(c.Secret) < 32 {
		return fmt.Errorf("secret must be at least 32 bytes")
	}
	d, err := time.ParseDuration(c.TokenTTL)
	if err != nil {
		return fmt.Errorf("invalid token_ttl: %w", err)
	}
	if d <= 0 {
		return fmt.Errorf("token_ttl must be positive")
	}
	invite, err := time.ParseDuration(c.InviteTTL)
	if err != nil {
		return fmt.Errorf("invalid invite_ttl: %w", err)
	}
	if invite <= 0 {
		return fmt.Errorf("invite_ttl must be positive")
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("bcrypt_cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	return nil
}
