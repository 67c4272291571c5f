package storage

import (
	"fmt"
	"mime"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/docker/go-units"
)

// defaultInlineTypes are the attachment types a browser may render in place.
// Everything else is served as a download.
var defaultInlineTypes = []string{
	"application/pdf",
	"image/png",
	"image/jpeg",
	"image/gif",
	"image/webp",
}

// activeTypes can run script when rendered and are never allowed inline.
var activeTypes = []string{
	"text/html",
	"application/xhtml+xml",
	"image/svg+xml",
	"text/xml",
	"application/xml",
	"text/javascript",
	"application/javascript",
}

// Config holds where attachments live and the rules uploads must meet.
// MaxUploadSize bounds one request and accepts sizes such as "25MB".
type Config struct {
	BasePath      string   `toml:"base_path"`
	MaxUploadSize string   `toml:"max_upload_size"`
	MaxFiles      int      `toml:"max_files"`
	InlineTypes   []string `toml:"inline_types"`

	maxUploadSizeVal int64
}

// Env maps environment variable names for storage configuration.
// InlineTypes is read as a comma-separated list.
type Env struct {
	BasePath      string
	MaxUploadSize string
	MaxFiles      string
	InlineTypes   string
}

// Limits are the upload rules enforced by the record handlers.
type Limits struct {
	MaxUploadSize int64
	MaxFiles      int
	InlineTypes   []string
}

// Inline reports whether an attachment stored as contentType may be shown
// in the browser instead of downloaded.
func (l Limits) Inline(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return slices.Contains(l.InlineTypes, mediaType)
}

// Limits returns the upload rules. Valid after Finalize.
func (c *Config) Limits() Limits {
	return Limits{
		MaxUploadSize: c.maxUploadSizeVal,
		MaxFiles:      c.MaxFiles,
		InlineTypes:   slices.Clone(c.InlineTypes),
	}
}

// MaxUploadSizeBytes returns the parsed upload limit. Valid after Finalize.
func (c *Config) MaxUploadSizeBytes() int64 {
	return c.maxUploadSizeVal
}

// Finalize applies defaults, loads environment overrides, and validates the storage configuration.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge applies values from overlay configuration that differ from zero values.
func (c *Config) Merge(overlay *Config) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if size, err := units.FromHumanSize(overlay.MaxUploadSize); err == nil {
		c.MaxUploadSize = overlay.MaxUploadSize
		c.maxUploadSizeVal = size
	}
	if overlay.MaxFiles != 0 {
		c.MaxFiles = overlay.MaxFiles
	}
	if len(overlay.InlineTypes) > 0 {
		c.InlineTypes = slices.Clone(overlay.InlineTypes)
	}
}

func (c *Config) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = ".data/arquivos"
	}
	if c.MaxUploadSize == "" {
		c.MaxUploadSize = "25MB"
	}
	if c.MaxFiles == 0 {
		c.MaxFiles = 20
	}
	if c.InlineTypes == nil {
		c.InlineTypes = slices.Clone(defaultInlineTypes)
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.BasePath != "" {
		if v := os.Getenv(env.BasePath); v != "" {
			c.BasePath = v
		}
	}
	if env.MaxUploadSize != "" {
		if v := os.Getenv(env.MaxUploadSize); v != "" {
			c.MaxUploadSize = v
		}
	}
	if env.MaxFiles != "" {
		if v := os.Getenv(env.MaxFiles); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.MaxFiles = n
			}
		}
	}
	if env.InlineTypes != "" {
		if v := os.Getenv(env.InlineTypes); v != "" {
			c.InlineTypes = nil
			for t := range strings.SplitSeq(v, ",") {
				if t = strings.TrimSpace(t); t != "" {
					c.InlineTypes = append(c.InlineTypes, t)
				}
			}
		}
	}
}

func (c *Config) validate() error {
	if c.BasePath == "" {
		return fmt.Errorf("base_path required")
	}

	size, err := units.FromHumanSize(c.MaxUploadSize)
	if err != nil {
		return fmt.Errorf("invalid max_upload_size: %w", err)
	}
	if size <= 0 {
		return fmt.Errorf("max_upload_size must be positive")
	}
	c.maxUploadSizeVal = size

	if c.MaxFiles < 1 {
		return fmt.Errorf("max_files must be positive")
	}

	for i, t := range c.InlineTypes {
		mediaType, _, err := mime.ParseMediaType(t)
		if err != nil || !strings.Contains(mediaType, "/") {
			return fmt.Errorf("invalid inline type %q", t)
		}
		if slices.Contains(activeTypes, mediaType) {
			return fmt.Errorf("inline type %q can run script", t)
		}
		c.InlineTypes[i] = mediaType
	}

	return nil
}
