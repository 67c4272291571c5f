package logging

import (
	"os"
	"slices"
	"strings"
)

// defaultRedact lists attribute keys that carry credentials or personal
// documents and never reach the log output.
var defaultRedact = []string{
	"senha",
	"senha_hash",
	"password",
	"token",
	"convite",
	"authorization",
	"cpf",
	"cnpj",
}

// Env maps environment variable names for logging configuration.
// Redact is read as a comma-separated list of keys.
type Env struct {
	Level  string
	Format string
	Redact string
}

// Config holds logging configuration settings. Attributes whose key matches
// an entry in Redact, ignoring case, are logged as "[redacted]".
type Config struct {
	Level  Level    `toml:"level"`
	Format Format   `toml:"format"`
	Redact []string `toml:"redact"`
}

// Finalize applies defaults, loads environment overrides, and validates the configuration.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	c.loadEnv(env)
	return c.validate()
}

// Merge applies non-zero values from the overlay configuration.
func (c *Config) Merge(overlay *Config) {
	if overlay.Level != "" {
		c.Level = overlay.Level
	}
	if overlay.Format != "" {
		c.Format = overlay.Format
	}
	if len(overlay.Redact) > 0 {
		c.Redact = slices.Clone(overlay.Redact)
	}
}

func (c *Config) loadDefaults() {
	if c.Level == "" {
		c.Level = LevelInfo
	}
	if c.Format == "" {
		c.Format = FormatText
	}
	if c.Redact == nil {
		c.Redact = slices.Clone(defaultRedact)
	}
}

func (c *Config) loadEnv(env *Env) {
	if env == nil {
		return
	}
	if env.Level != "" {
		if v := os.Getenv(env.Level); v != "" {
			c.Level = Level(strings.ToLower(v))
		}
	}
	if env.Format != "" {
		if v := os.Getenv(env.Format); v != "" {
			c.Format = Format(strings.ToLower(v))
		}
	}
	if env.Redact != "" {
		if v := os.Getenv(env.Redact); v != "" {
			c.Redact = nil
			for key := range strings.SplitSeq(v, ",") {
				if key = strings.TrimSpace(key); key != "" {
					c.Redact = append(c.Redact, key)
				}
			}
		}
	}
}

func (c *Config) validate() error {
	if err := c.Level.Validate(); err != nil {
		return err
	}
	return c.Format.Validate()
}
