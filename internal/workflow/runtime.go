package workflow

import (
	"log/slog"

	"github.com/veldt-labs/arbiter/internal/prompts"
	"github.com/veldt-labs/arbiter/pkg/provider"
)

// Runtime bundles the dependencies that workflow nodes require. It is
// constructed by higher-level composition code from Infrastructure systems.
type Runtime struct {
	Provider provider.System
	Prompts  prompts.System
	Workflow Config
	Logger   *slog.Logger
}
