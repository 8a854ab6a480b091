// Package workflow implements the credit assessment pipeline: a risk
// analysis node feeding a loan decision node over shared graph state.
package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/veldt-labs/arbiter/internal/documents"
	"github.com/veldt-labs/arbiter/pkg/graph"
)

// Execute runs the assessment workflow for a single document's extracted
// text. It builds the node graph, seeds the state, executes it under the
// configured retry and timeout budget, and extracts the Assessment from the
// final state.
func Execute(ctx context.Context, rt *Runtime, doc documents.Document, text string) (*Assessment, error) {
	g, err := buildGraph(rt)
	if err != nil {
		return nil, fmt.Errorf("build graph: %w", err)
	}

	started := time.Now()

	seed := map[string]any{FieldDocumentText: text}
	final, err := g.Execute(ctx, seed, graph.Options{
		MaxRetries: rt.Workflow.MaxRetries,
		Timeout:    rt.Workflow.TimeoutDuration(),
		Parallel:   rt.Workflow.ParallelExecution,
		Logger:     rt.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("execute graph: %w", err)
	}

	return extractResult(final, doc, started)
}

func buildGraph(rt *Runtime) (*graph.Graph, error) {
	return graph.New("credit-assessment",
		RiskNode(rt),
		DecisionNode(rt),
	)
}

func extractResult(s *graph.State, doc documents.Document, started time.Time) (*Assessment, error) {
	riskVal, ok := s.Get(FieldRiskAnalysis)
	if !ok {
		return nil, fmt.Errorf("missing %s in final state", FieldRiskAnalysis)
	}

	risk, ok := riskVal.(RiskResult)
	if !ok {
		return nil, fmt.Errorf("%s is not RiskResult", FieldRiskAnalysis)
	}

	decisionVal, ok := s.Get(FieldLoanDecision)
	if !ok {
		return nil, fmt.Errorf("missing %s in final state", FieldLoanDecision)
	}

	decision, ok := decisionVal.(DecisionResult)
	if !ok {
		return nil, fmt.Errorf("%s is not DecisionResult", FieldLoanDecision)
	}

	return &Assessment{
		RunID:              uuid.New(),
		Document:           doc,
		Risk:               risk.Analysis,
		Decision:           decision.Decision,
		RiskInvocation:     risk.Invocation,
		DecisionInvocation: decision.Invocation,
		StartedAt:          started,
		CompletedAt:        time.Now(),
	}, nil
}
