package prompts

import (
	"fmt"
	"log/slog"
	"strings"

	"dario.cat/mergo"

	"github.com/veldt-labs/arbiter/pkg/xjson"
)

// System defines the public contract for prompt composition.
type System interface {
	// Role returns the system message framing for a stage.
	Role(stage Stage) (string, error)
	// Compose builds the user prompt for a stage: the stage goal, the
	// serialized input payload, and the response contract. String payloads
	// pass through verbatim; everything else is serialized as indented JSON.
	Compose(stage Stage, payload any) (string, error)
}

type system struct {
	sets   map[Stage]Override
	logger *slog.Logger
}

// NewSystem builds the prompt system by merging configured overrides over the
// built-in instruction sets.
func NewSystem(cfg *Config, logger *slog.Logger) (System, error) {
	if cfg == nil {
		cfg = &Config{}
	}

	sets := make(map[Stage]Override, len(stages))
	for _, stage := range stages {
		set := cfg.override(stage)
		if err := mergo.Merge(&set, defaults[stage]); err != nil {
			return nil, fmt.Errorf("merge %s overrides: %w", stage, err)
		}
		sets[stage] = set
	}

	return &system{
		sets:   sets,
		logger: logger.With("system", "prompts"),
	}, nil
}

func (s *system) Role(stage Stage) (string, error) {
	set, ok := s.sets[stage]
	if !ok {
		return "", ErrInvalidStage
	}

	var sb strings.Builder
	sb.WriteString("You are a ")
	sb.WriteString(set.Role)
	sb.WriteString(".")
	if set.Backstory != "" {
		sb.WriteString(" ")
		sb.WriteString(set.Backstory)
	}
	return sb.String(), nil
}

func (s *system) Compose(stage Stage, payload any) (string, error) {
	set, ok := s.sets[stage]
	if !ok {
		return "", ErrInvalidStage
	}

	spec, err := Spec(stage)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(set.Goal)
	sb.WriteString("\n\n")
	sb.WriteString(payloadLabels[stage])
	sb.WriteString(":\n\n")

	switch v := payload.(type) {
	case string:
		sb.WriteString(v)
	default:
		data, err := xjson.MarshalIndent(payload, "", "  ")
		if err != nil {
			return "", fmt.Errorf("marshal %s payload: %w", stage, err)
		}
		sb.Write(data)
	}

	sb.WriteString("\n\n")
	sb.WriteString(spec)

	s.logger.Debug("prompt composed", "stage", stage, "chars", sb.Len())
	return sb.String(), nil
}
