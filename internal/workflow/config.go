package workflow

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	EnvMaxRetries = "ARBITER_WORKFLOW_MAX_RETRIES"
	EnvTimeout    = "ARBITER_WORKFLOW_TIMEOUT"
	EnvParallel   = "ARBITER_WORKFLOW_PARALLEL"
	EnvWorkers    = "ARBITER_WORKFLOW_WORKERS"
)

// Config bounds run execution: the node re-run budget, the wall-clock limit
// per run, level parallelism, and document fan-out.
type Config struct {
	// MaxRetries is the number of additional times a failed node is re-run
	// within one workflow execution.
	MaxRetries        int    `toml:"max_retries"`
	Timeout           string `toml:"timeout"`
	ParallelExecution bool   `toml:"parallel_execution"`
	// Workers caps how many documents are assessed concurrently.
	Workers int `toml:"workers"`
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *Config) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.MaxRetries != 0 {
		c.MaxRetries = overlay.MaxRetries
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
	if overlay.ParallelExecution {
		c.ParallelExecution = true
	}
	if overlay.Workers != 0 {
		c.Workers = overlay.Workers
	}
}

func (c *Config) loadDefaults() {
	if c.Timeout == "" {
		c.Timeout = "5m"
	}
	if c.Workers == 0 {
		c.Workers = 4
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvMaxRetries); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxRetries = n
		}
	}
	if v := os.Getenv(EnvTimeout); v != "" {
		c.Timeout = v
	}
	if v := os.Getenv(EnvParallel); v != "" {
		if parallel, err := strconv.ParseBool(v); err == nil {
			c.ParallelExecution = parallel
		}
	}
	if v := os.Getenv(EnvWorkers); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Workers = n
		}
	}
}

func (c *Config) validate() error {
	if c.MaxRetries < 0 {
		return fmt.Errorf("invalid max_retries: %d", c.MaxRetries)
	}
	if d, err := time.ParseDuration(c.Timeout); err != nil || d <= 0 {
		return fmt.Errorf("invalid timeout: %q", c.Timeout)
	}
	if c.Workers < 1 {
		return fmt.Errorf("invalid workers: %d", c.Workers)
	}
	return nil
}
