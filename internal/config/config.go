package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/veldt-labs/arbiter/internal/documents"
	"github.com/veldt-labs/arbiter/internal/output"
	"github.com/veldt-labs/arbiter/internal/prompts"
	"github.com/veldt-labs/arbiter/internal/workflow"
	"github.com/veldt-labs/arbiter/pkg/database"
	"github.com/veldt-labs/arbiter/pkg/provider"
	"github.com/veldt-labs/arbiter/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvArbiterEnv             = "ARBITER_ENV"
	EnvArbiterShutdownTimeout = "ARBITER_SHUTDOWN_TIMEOUT"
	EnvArbiterVersion         = "ARBITER_VERSION"
)

var gatewayEnv = &provider.Env{
	Enabled:    "ARBITER_GATEWAY_ENABLED",
	BaseURL:    "ARBITER_GATEWAY_BASE_URL",
	APIKey:     "ARBITER_GATEWAY_API_KEY",
	VirtualKey: "ARBITER_GATEWAY_VIRTUAL_KEY",
	Model:      "ARBITER_GATEWAY_MODEL",
	MaxTokens:  "ARBITER_GATEWAY_MAX_TOKENS",
	Priority:   "ARBITER_GATEWAY_PRIORITY",
}

var openaiEnv = &provider.Env{
	Enabled:   "ARBITER_OPENAI_ENABLED",
	BaseURL:   "ARBITER_OPENAI_BASE_URL",
	APIKey:    "ARBITER_OPENAI_API_KEY",
	Model:     "ARBITER_OPENAI_MODEL",
	MaxTokens: "ARBITER_OPENAI_MAX_TOKENS",
	Priority:  "ARBITER_OPENAI_PRIORITY",
}

var retryEnv = &provider.RetryEnv{
	MaxRetries:     "ARBITER_RETRY_MAX_RETRIES",
	AttemptTimeout: "ARBITER_RETRY_ATTEMPT_TIMEOUT",
	InitialBackoff: "ARBITER_RETRY_INITIAL_BACKOFF",
	MaxBackoff:     "ARBITER_RETRY_MAX_BACKOFF",
	BackoffFactor:  "ARBITER_RETRY_BACKOFF_FACTOR",
}

var inputEnv = &documents.Env{
	Dir:             "ARBITER_INPUT_DIR",
	MaxDocumentSize: "ARBITER_INPUT_MAX_DOCUMENT_SIZE",
}

var outputEnv = &output.Env{
	Dir:             "ARBITER_OUTPUT_DIR",
	Formats:         "ARBITER_OUTPUT_FORMATS",
	IncludeMetadata: "ARBITER_OUTPUT_INCLUDE_METADATA",
}

var databaseEnv = &database.Env{
	Enabled:         "ARBITER_DB_ENABLED",
	Host:            "ARBITER_DB_HOST",
	Port:            "ARBITER_DB_PORT",
	Name:            "ARBITER_DB_NAME",
	User:            "ARBITER_DB_USER",
	Password:        "ARBITER_DB_PASSWORD",
	SSLMode:         "ARBITER_DB_SSL_MODE",
	MaxOpenConns:    "ARBITER_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "ARBITER_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "ARBITER_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "ARBITER_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	Enabled:          "ARBITER_STORAGE_ENABLED",
	ContainerName:    "ARBITER_STORAGE_CONTAINER_NAME",
	ConnectionString: "ARBITER_STORAGE_CONNECTION_STRING",
}

// Config is the root configuration for the Arbiter pipeline.
type Config struct {
	Providers       provider.ProvidersConfig `toml:"providers"`
	Retry           provider.RetryConfig     `toml:"retry"`
	Workflow        workflow.Config          `toml:"workflow"`
	Prompts         prompts.Config           `toml:"prompts"`
	Input           documents.Config         `toml:"input"`
	Output          output.Config            `toml:"output"`
	Logging         LoggingConfig            `toml:"logging"`
	Database        database.Config          `toml:"database"`
	Storage         storage.Config           `toml:"storage"`
	ShutdownTimeout string                   `toml:"shutdown_timeout"`
	Version         string                   `toml:"version"`
}

// Env returns the ARBITER_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvArbiterEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. If no config.toml exists, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Providers.Merge(&overlay.Providers)
	c.Retry.Merge(&overlay.Retry)
	c.Workflow.Merge(&overlay.Workflow)
	c.Prompts.Merge(&overlay.Prompts)
	c.Input.Merge(&overlay.Input)
	c.Output.Merge(&overlay.Output)
	c.Logging.Merge(&overlay.Logging)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Providers.Finalize(gatewayEnv, openaiEnv); err != nil {
		return fmt.Errorf("providers: %w", err)
	}
	if err := c.Retry.Finalize(retryEnv); err != nil {
		return fmt.Errorf("retry: %w", err)
	}
	if err := c.Workflow.Finalize(); err != nil {
		return fmt.Errorf("workflow: %w", err)
	}
	if err := c.Input.Finalize(inputEnv); err != nil {
		return fmt.Errorf("input: %w", err)
	}
	if err := c.Output.Finalize(outputEnv); err != nil {
		return fmt.Errorf("output: %w", err)
	}
	if err := c.Logging.Finalize(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvArbiterShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvArbiterVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvArbiterEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
