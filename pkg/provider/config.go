package provider

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Kind identifies a provider transport implementation.
type Kind string

// Supported provider kinds.
const (
	KindGateway Kind = "gateway"
	KindOpenAI  Kind = "openai"
)

// Config holds the parameters for one model provider endpoint.
type Config struct {
	Enabled     bool    `toml:"enabled"`
	BaseURL     string  `toml:"base_url"`
	APIKey      string  `toml:"api_key"`
	VirtualKey  string  `toml:"virtual_key"`
	Model       string  `toml:"model"`
	MaxTokens   int     `toml:"max_tokens"`
	Temperature float64 `toml:"temperature"`
	Priority    int     `toml:"priority"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Enabled    string
	BaseURL    string
	APIKey     string
	VirtualKey string
	Model      string
	MaxTokens  string
	Priority   string
}

// Finalize applies kind-specific defaults, environment variable overrides,
// and validation. Disabled providers are not validated.
func (c *Config) Finalize(kind Kind, env *Env) error {
	c.loadDefaults(kind)
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay. An overlay cannot disable a
// provider; use the enabled environment variable for that.
func (c *Config) Merge(overlay *Config) {
	if overlay.Enabled {
		c.Enabled = true
	}
	if overlay.BaseURL != "" {
		c.BaseURL = overlay.BaseURL
	}
	if overlay.APIKey != "" {
		c.APIKey = overlay.APIKey
	}
	if overlay.VirtualKey != "" {
		c.VirtualKey = overlay.VirtualKey
	}
	if overlay.Model != "" {
		c.Model = overlay.Model
	}
	if overlay.MaxTokens != 0 {
		c.MaxTokens = overlay.MaxTokens
	}
	if overlay.Temperature != 0 {
		c.Temperature = overlay.Temperature
	}
	if overlay.Priority != 0 {
		c.Priority = overlay.Priority
	}
}

func (c *Config) loadDefaults(kind Kind) {
	switch kind {
	case KindGateway:
		if c.BaseURL == "" {
			c.BaseURL = "https://api.portkey.ai/v1"
		}
		if c.Priority == 0 {
			c.Priority = 1
		}
	case KindOpenAI:
		if c.BaseURL == "" {
			c.BaseURL = "https://api.openai.com/v1"
		}
		if c.Priority == 0 {
			c.Priority = 2
		}
	}
	if c.Model == "" {
		c.Model = "gpt-4o"
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = 3000
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Enabled != "" {
		if v := os.Getenv(env.Enabled); v != "" {
			if enabled, err := strconv.ParseBool(v); err == nil {
				c.Enabled = enabled
			}
		}
	}
	if env.BaseURL != "" {
		if v := os.Getenv(env.BaseURL); v != "" {
			c.BaseURL = v
		}
	}
	if env.APIKey != "" {
		if v := os.Getenv(env.APIKey); v != "" {
			c.APIKey = v
		}
	}
	if env.VirtualKey != "" {
		if v := os.Getenv(env.VirtualKey); v != "" {
			c.VirtualKey = v
		}
	}
	if env.Model != "" {
		if v := os.Getenv(env.Model); v != "" {
			c.Model = v
		}
	}
	if env.MaxTokens != "" {
		if v := os.Getenv(env.MaxTokens); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.MaxTokens = n
			}
		}
	}
	if env.Priority != "" {
		if v := os.Getenv(env.Priority); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.Priority = n
			}
		}
	}
}

func (c *Config) validate() error {
	if !c.Enabled {
		return nil
	}
	if c.BaseURL == "" {
		return fmt.Errorf("base_url required")
	}
	if c.APIKey == "" {
		return fmt.Errorf("api_key required")
	}
	if c.Model == "" {
		return fmt.Errorf("model required")
	}
	if c.MaxTokens < 1 {
		return fmt.Errorf("invalid max_tokens: %d", c.MaxTokens)
	}
	if c.Priority < 1 {
		return fmt.Errorf("invalid priority: %d", c.Priority)
	}
	return nil
}

// ProvidersConfig holds the configurable provider endpoints.
type ProvidersConfig struct {
	Gateway Config `toml:"gateway"`
	OpenAI  Config `toml:"openai"`
}

// Finalize applies defaults, environment variable overrides, and validation
// to every provider endpoint.
func (c *ProvidersConfig) Finalize(gateway, openai *Env) error {
	if err := c.Gateway.Finalize(KindGateway, gateway); err != nil {
		return fmt.Errorf("gateway: %w", err)
	}
	if err := c.OpenAI.Finalize(KindOpenAI, openai); err != nil {
		return fmt.Errorf("openai: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *ProvidersConfig) Merge(overlay *ProvidersConfig) {
	c.Gateway.Merge(&overlay.Gateway)
	c.OpenAI.Merge(&overlay.OpenAI)
}

// RetryConfig bounds the retry behavior applied to each provider.
type RetryConfig struct {
	MaxRetries     int     `toml:"max_retries"`
	AttemptTimeout string  `toml:"attempt_timeout"`
	InitialBackoff string  `toml:"initial_backoff"`
	MaxBackoff     string  `toml:"max_backoff"`
	BackoffFactor  float64 `toml:"backoff_factor"`
}

// RetryEnv maps retry config fields to environment variable names.
type RetryEnv struct {
	MaxRetries     string
	AttemptTimeout string
	InitialBackoff string
	MaxBackoff     string
	BackoffFactor  string
}

// AttemptTimeoutDuration returns AttemptTimeout as a time.Duration.
func (c *RetryConfig) AttemptTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.AttemptTimeout)
	return d
}

// InitialBackoffDuration returns InitialBackoff as a time.Duration.
func (c *RetryConfig) InitialBackoffDuration() time.Duration {
	d, _ := time.ParseDuration(c.InitialBackoff)
	return d
}

// MaxBackoffDuration returns MaxBackoff as a time.Duration.
func (c *RetryConfig) MaxBackoffDuration() time.Duration {
	d, _ := time.ParseDuration(c.MaxBackoff)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *RetryConfig) Finalize(env *RetryEnv) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *RetryConfig) Merge(overlay *RetryConfig) {
	if overlay.MaxRetries != 0 {
		c.MaxRetries = overlay.MaxRetries
	}
	if overlay.AttemptTimeout != "" {
		c.AttemptTimeout = overlay.AttemptTimeout
	}
	if overlay.InitialBackoff != "" {
		c.InitialBackoff = overlay.InitialBackoff
	}
	if overlay.MaxBackoff != "" {
		c.MaxBackoff = overlay.MaxBackoff
	}
	if overlay.BackoffFactor != 0 {
		c.BackoffFactor = overlay.BackoffFactor
	}
}

func (c *RetryConfig) loadDefaults() {
	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}
	if c.AttemptTimeout == "" {
		c.AttemptTimeout = "60s"
	}
	if c.InitialBackoff == "" {
		c.InitialBackoff = "1s"
	}
	if c.MaxBackoff == "" {
		c.MaxBackoff = "30s"
	}
	if c.BackoffFactor == 0 {
		c.BackoffFactor = 2.0
	}
}

func (c *RetryConfig) loadEnv(env *RetryEnv) {
	if env.MaxRetries != "" {
		if v := os.Getenv(env.MaxRetries); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.MaxRetries = n
			}
		}
	}
	if env.AttemptTimeout != "" {
		if v := os.Getenv(env.AttemptTimeout); v != "" {
			c.AttemptTimeout = v
		}
	}
	if env.InitialBackoff != "" {
		if v := os.Getenv(env.InitialBackoff); v != "" {
			c.InitialBackoff = v
		}
	}
	if env.MaxBackoff != "" {
		if v := os.Getenv(env.MaxBackoff); v != "" {
			c.MaxBackoff = v
		}
	}
	if env.BackoffFactor != "" {
		if v := os.Getenv(env.BackoffFactor); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				c.BackoffFactor = f
			}
		}
	}
}

func (c *RetryConfig) validate() error {
	if c.MaxRetries < 1 {
		return fmt.Errorf("invalid max_retries: %d", c.MaxRetries)
	}
	if d, err := time.ParseDuration(c.AttemptTimeout); err != nil || d <= 0 {
		return fmt.Errorf("invalid attempt_timeout: %q", c.AttemptTimeout)
	}
	if d, err := time.ParseDuration(c.InitialBackoff); err != nil || d <= 0 {
		return fmt.Errorf("invalid initial_backoff: %q", c.InitialBackoff)
	}
	if d, err := time.ParseDuration(c.MaxBackoff); err != nil || d <= 0 {
		return fmt.Errorf("invalid max_backoff: %q", c.MaxBackoff)
	}
	if c.BackoffFactor < 1 {
		return fmt.Errorf("invalid backoff_factor: %v", c.BackoffFactor)
	}
	return nil
}
