package documents

import (
	"fmt"
	"os"

	"github.com/veldt-labs/arbiter/pkg/formatting"
)

// Config holds document intake parameters.
type Config struct {
	Dir             string `toml:"dir"`
	MaxDocumentSize string `toml:"max_document_size"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Dir             string
	MaxDocumentSize string
}

// MaxDocumentSizeBytes returns MaxDocumentSize as a byte count.
func (c *Config) MaxDocumentSizeBytes() int64 {
	n, _ := formatting.ParseBytes(c.MaxDocumentSize)
	return n
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Dir != "" {
		c.Dir = overlay.Dir
	}
	if overlay.MaxDocumentSize != "" {
		c.MaxDocumentSize = overlay.MaxDocumentSize
	}
}

func (c *Config) loadDefaults() {
	if c.Dir == "" {
		c.Dir = "input"
	}
	if c.MaxDocumentSize == "" {
		c.MaxDocumentSize = "50MB"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Dir != "" {
		if v := os.Getenv(env.Dir); v != "" {
			c.Dir = v
		}
	}
	if env.MaxDocumentSize != "" {
		if v := os.Getenv(env.MaxDocumentSize); v != "" {
			c.MaxDocumentSize = v
		}
	}
}

func (c *Config) validate() error {
	if c.Dir == "" {
		return fmt.Errorf("dir required")
	}
	if n, err := formatting.ParseBytes(c.MaxDocumentSize); err != nil || n < 1 {
		return fmt.Errorf("invalid max_document_size: %q", c.MaxDocumentSize)
	}
	return nil
}
