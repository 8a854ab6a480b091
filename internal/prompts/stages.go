package prompts

import "slices"

// Stage represents a workflow stage that a prompt targets.
type Stage string

// Valid workflow stages.
const (
	StageRisk     Stage = "risk"
	StageDecision Stage = "decision"
)

var stages = []Stage{
	StageRisk,
	StageDecision,
}

// Stages returns the list of valid workflow stages.
func Stages() []Stage {
	return stages
}

// ParseStage validates a string as a known workflow stage.
// Returns ErrInvalidStage if the value is not recognized.
func ParseStage(s string) (Stage, error) {
	v := Stage(s)
	if !slices.Contains(stages, v) {
		return "", ErrInvalidStage
	}
	return v, nil
}
