package workflow

import (
	"context"
	"fmt"

	"github.com/veldt-labs/arbiter/internal/prompts"
	"github.com/veldt-labs/arbiter/pkg/formatting"
	"github.com/veldt-labs/arbiter/pkg/graph"
	"github.com/veldt-labs/arbiter/pkg/provider"
)

// RiskNode returns the graph node that analyzes extracted credit report text
// into a structured risk assessment.
func RiskNode(rt *Runtime) graph.Node {
	return graph.Node{
		Name:   NodeRisk,
		Reads:  []string{FieldDocumentText},
		Writes: []string{FieldRiskAnalysis},
		Run: func(ctx context.Context, view graph.View) (map[string]any, error) {
			text, ok := view.GetString(FieldDocumentText)
			if !ok {
				return nil, fmt.Errorf("risk: %s is not a string", FieldDocumentText)
			}

			role, err := rt.Prompts.Role(prompts.StageRisk)
			if err != nil {
				return nil, fmt.Errorf("risk: %w", err)
			}

			input, err := rt.Prompts.Compose(prompts.StageRisk, text)
			if err != nil {
				return nil, fmt.Errorf("risk: %w", err)
			}

			res, err := rt.Provider.Invoke(ctx, provider.Request{
				Role:     role,
				Input:    input,
				Validate: validateRisk,
			})
			if err != nil {
				return nil, fmt.Errorf("risk: %w", err)
			}

			analysis, err := formatting.Parse[RiskAnalysis](res.Text)
			if err != nil {
				return nil, fmt.Errorf("risk: %w", err)
			}

			rt.Logger.InfoContext(ctx, "risk analysis complete",
				"provider", res.Provider,
				"attempts", res.Attempts,
				"applicants", len(analysis.Applicants),
			)

			return map[string]any{
				FieldRiskAnalysis: RiskResult{
					Analysis:   analysis,
					Invocation: invocation(res),
				},
			}, nil
		},
	}
}

// validateRisk rejects responses that do not parse into a usable risk
// analysis, so the model client retries them like transport failures.
func validateRisk(text string) error {
	analysis, err := formatting.Parse[RiskAnalysis](text)
	if err != nil {
		return err
	}
	if len(analysis.Applicants) == 0 {
		return ErrNoApplicants
	}
	return nil
}
