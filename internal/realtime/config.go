package realtime

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config controls subscriber buffering and listener reconnects.
type Config struct {
	BufferSize     int    `toml:"buffer_size"`
	ReconnectDelay string `toml:"reconnect_delay"`
}

// Env maps environment variable names for realtime configuration.
type Env struct {
	BufferSize     string
	ReconnectDelay string
}

// ReconnectDelayDuration returns the parsed reconnect delay.
func (c *Config) ReconnectDelayDuration() time.Duration {
	d, _ := time.ParseDuration(c.ReconnectDelay)
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
	if overlay.BufferSize != 0 {
		c.BufferSize = overlay.BufferSize
	}
	if overlay.ReconnectDelay != "" {
		c.ReconnectDelay = overlay.ReconnectDelay
	}
}

func (c *Config) loadDefaults() {
	if c.BufferSize == 0 {
		c.BufferSize = 64
	}
	if c.ReconnectDelay == "" {
		c.ReconnectDelay = "2s"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.BufferSize != "" {
		if v := os.Getenv(env.BufferSize); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.BufferSize = n
			}
		}
	}
	if env.ReconnectDelay != "" {
		if v := os.Getenv(env.ReconnectDelay); v != "" {
			c.ReconnectDelay = v
		}
	}
}

func (c *Config) validate() error {
	if c.BufferSize < 1 {
		return fmt.Errorf("buffer_size must be positive")
	}
	d, err := time.ParseDuration(c.ReconnectDelay)
	if err != nil {
		return fmt.Errorf("invalid reconnect_delay: %w", err)
	}
	if d <= 0 {
		return fmt.Errorf("reconnect_delay must be positive")
	}
	return nil
}
