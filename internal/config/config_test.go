package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/veldt-labs/arbiter/internal/config"
)

const baseConfig = `
version = "1.2.3"
shutdown_timeout = "10s"

[providers.gateway]
enabled = true
api_key = "pk-base"
virtual_key = "vk-base"

[providers.openai]
enabled = true
api_key = "sk-base"

[retry]
max_retries = 2

[workflow]
timeout = "2m"
workers = 2

[input]
dir = "reports"

[logging]
level = "debug"
`

const overlayConfig = `
[providers.gateway]
model = "gpt-4o-mini"

[workflow]
parallel_execution = true

[logging]
format = "json"
`

func write(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestLoadBaseConfig(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "config.toml", baseConfig)
	t.Chdir(dir)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.Version != "1.2.3" {
		t.Errorf("Version = %q, want 1.2.3", cfg.Version)
	}
	if cfg.ShutdownTimeoutDuration() != 10*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 10s", cfg.ShutdownTimeoutDuration())
	}
	if !cfg.Providers.Gateway.Enabled || cfg.Providers.Gateway.APIKey != "pk-base" {
		t.Error("gateway provider should load from the base file")
	}
	if cfg.Providers.Gateway.BaseURL == "" {
		t.Error("gateway base_url should default when unset")
	}
	if cfg.Retry.MaxRetries != 2 {
		t.Errorf("Retry.MaxRetries = %d, want 2", cfg.Retry.MaxRetries)
	}
	if cfg.Retry.AttemptTimeoutDuration() != 60*time.Second {
		t.Errorf("AttemptTimeout = %v, want default 60s", cfg.Retry.AttemptTimeoutDuration())
	}
	if cfg.Workflow.TimeoutDuration() != 2*time.Minute {
		t.Errorf("Workflow.Timeout = %v, want 2m", cfg.Workflow.TimeoutDuration())
	}
	if cfg.Input.Dir != "reports" {
		t.Errorf("Input.Dir = %q, want reports", cfg.Input.Dir)
	}
	if cfg.Output.Dir != "results" {
		t.Errorf("Output.Dir = %q, want default results", cfg.Output.Dir)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "text" {
		t.Errorf("Logging = %+v, want debug/text", cfg.Logging)
	}
	if cfg.Database.Enabled || cfg.Storage.Enabled {
		t.Error("persistence systems should default to disabled")
	}
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.Version != "0.1.0" {
		t.Errorf("Version = %q, want 0.1.0", cfg.Version)
	}
	if cfg.Providers.Gateway.Enabled || cfg.Providers.OpenAI.Enabled {
		t.Error("providers should default to disabled")
	}
	if cfg.Workflow.Workers != 4 {
		t.Errorf("Workers = %d, want 4", cfg.Workflow.Workers)
	}
}

func TestLoadOverlay(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "config.toml", baseConfig)
	write(t, dir, "config.staging.toml", overlayConfig)
	t.Chdir(dir)
	t.Setenv("ARBITER_ENV", "staging")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.Env() != "staging" {
		t.Errorf("Env = %q, want staging", cfg.Env())
	}
	if cfg.Providers.Gateway.Model != "gpt-4o-mini" {
		t.Errorf("gateway model = %q, want overlay value", cfg.Providers.Gateway.Model)
	}
	if cfg.Providers.Gateway.APIKey != "pk-base" {
		t.Errorf("gateway api_key = %q, want base value retained", cfg.Providers.Gateway.APIKey)
	}
	if !cfg.Workflow.ParallelExecution {
		t.Error("parallel_execution should come from the overlay")
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("logging format = %q, want overlay value", cfg.Logging.Format)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("logging level = %q, want base value retained", cfg.Logging.Level)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "config.toml", baseConfig)
	t.Chdir(dir)
	t.Setenv("ARBITER_GATEWAY_API_KEY", "pk-env")
	t.Setenv("ARBITER_WORKFLOW_TIMEOUT", "90s")
	t.Setenv("ARBITER_LOG_LEVEL", "warn")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.Providers.Gateway.APIKey != "pk-env" {
		t.Errorf("gateway api_key = %q, want environment value", cfg.Providers.Gateway.APIKey)
	}
	if cfg.Workflow.TimeoutDuration() != 90*time.Second {
		t.Errorf("workflow timeout = %v, want 90s", cfg.Workflow.TimeoutDuration())
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("logging level = %q, want warn", cfg.Logging.Level)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"enabled provider without credential", "[providers.openai]\nenabled = true\n"},
		{"bad workflow timeout", "[workflow]\ntimeout = \"soon\"\n"},
		{"bad logging level", "[logging]\nlevel = \"verbose\"\n"},
		{"bad retry backoff", "[retry]\ninitial_backoff = \"-1s\"\n"},
		{"bad output format", "[output]\nformats = [\"xml\"]\n"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			write(t, dir, "config.toml", tc.content)
			t.Chdir(dir)

			if _, err := config.Load(); err == nil {
				t.Error("Load should reject invalid configuration")
			}
		})
	}
}
