package workflow

import (
	"context"
	"fmt"

	"github.com/veldt-labs/arbiter/internal/prompts"
	"github.com/veldt-labs/arbiter/pkg/formatting"
	"github.com/veldt-labs/arbiter/pkg/graph"
	"github.com/veldt-labs/arbiter/pkg/provider"
)

// decisionPayload is the serialized input for the decision prompt: the risk
// analysis plus the source document text it was derived from.
type decisionPayload struct {
	RiskAnalysis RiskAnalysis `json:"risk_analysis"`
	DocumentText string       `json:"document_text"`
}

// DecisionNode returns the graph node that turns a risk analysis into a loan
// decision for every applicant.
func DecisionNode(rt *Runtime) graph.Node {
	return graph.Node{
		Name:   NodeDecision,
		Reads:  []string{FieldDocumentText, FieldRiskAnalysis},
		Writes: []string{FieldLoanDecision},
		Run: func(ctx context.Context, view graph.View) (map[string]any, error) {
			text, ok := view.GetString(FieldDocumentText)
			if !ok {
				return nil, fmt.Errorf("decision: %s is not a string", FieldDocumentText)
			}

			riskVal, ok := view.Get(FieldRiskAnalysis)
			if !ok {
				return nil, fmt.Errorf("decision: %s absent from state", FieldRiskAnalysis)
			}
			risk, ok := riskVal.(RiskResult)
			if !ok {
				return nil, fmt.Errorf("decision: %s is not RiskResult", FieldRiskAnalysis)
			}

			role, err := rt.Prompts.Role(prompts.StageDecision)
			if err != nil {
				return nil, fmt.Errorf("decision: %w", err)
			}

			input, err := rt.Prompts.Compose(prompts.StageDecision, decisionPayload{
				RiskAnalysis: risk.Analysis,
				DocumentText: text,
			})
			if err != nil {
				return nil, fmt.Errorf("decision: %w", err)
			}

			res, err := rt.Provider.Invoke(ctx, provider.Request{
				Role:     role,
				Input:    input,
				Validate: validateDecision,
			})
			if err != nil {
				return nil, fmt.Errorf("decision: %w", err)
			}

			decision, err := formatting.Parse[LoanDecision](res.Text)
			if err != nil {
				return nil, fmt.Errorf("decision: %w", err)
			}

			rt.Logger.InfoContext(ctx, "loan decision complete",
				"provider", res.Provider,
				"attempts", res.Attempts,
				"decisions", len(decision.Decisions),
			)

			return map[string]any{
				FieldLoanDecision: DecisionResult{
					Decision:   decision,
					Invocation: invocation(res),
				},
			}, nil
		},
	}
}

// validateDecision rejects responses that do not parse into a usable loan
// decision, so the model client retries them like transport failures.
func validateDecision(text string) error {
	decision, err := formatting.Parse[LoanDecision](text)
	if err != nil {
		return err
	}
	if len(decision.Decisions) == 0 {
		return ErrNoDecisions
	}
	return nil
}
