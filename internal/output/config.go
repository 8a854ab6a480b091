package output

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
)

// Supported artifact formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

var formats = []string{FormatText, FormatJSON}

// Config holds artifact output parameters.
type Config struct {
	Dir     string   `toml:"dir"`
	Formats []string `toml:"formats"`
	// IncludeMetadata embeds run metadata (run id, provider, attempts,
	// timings) into artifacts.
	IncludeMetadata bool `toml:"include_metadata"`
}

// Env maps config fields to environment variable names for override
// injection. Formats is a comma-separated list.
type Env struct {
	Dir             string
	Formats         string
	IncludeMetadata string
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
	if len(overlay.Formats) > 0 {
		c.Formats = slices.Clone(overlay.Formats)
	}
	if overlay.IncludeMetadata {
		c.IncludeMetadata = true
	}
}

func (c *Config) loadDefaults() {
	if c.Dir == "" {
		c.Dir = "results"
	}
	if len(c.Formats) == 0 {
		c.Formats = []string{FormatText, FormatJSON}
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Dir != "" {
		if v := os.Getenv(env.Dir); v != "" {
			c.Dir = v
		}
	}
	if env.Formats != "" {
		if v := os.Getenv(env.Formats); v != "" {
			var parsed []string
			for _, f := range strings.Split(v, ",") {
				if f = strings.TrimSpace(f); f != "" {
					parsed = append(parsed, f)
				}
			}
			if len(parsed) > 0 {
				c.Formats = parsed
			}
		}
	}
	if env.IncludeMetadata != "" {
		if v := os.Getenv(env.IncludeMetadata); v != "" {
			if include, err := strconv.ParseBool(v); err == nil {
				c.IncludeMetadata = include
			}
		}
	}
}

func (c *Config) validate() error {
	if c.Dir == "" {
		return fmt.Errorf("dir required")
	}
	for _, f := range c.Formats {
		if !slices.Contains(formats, f) {
			return fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
		}
	}
	return nil
}
