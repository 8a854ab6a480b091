package graph_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/veldt-labs/arbiter/pkg/graph"
)

func testOptions() graph.Options {
	return graph.Options{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestExecuteSequentialPipeline(t *testing.T) {
	g, err := graph.New("assess",
		graph.Node{
			Name:   "risk",
			Reads:  []string{"document_text"},
			Writes: []string{"risk_analysis"},
			Run: func(_ context.Context, view graph.View) (map[string]any, error) {
				text, _ := view.GetString("document_text")
				return map[string]any{"risk_analysis": "risk of " + text}, nil
			},
		},
		graph.Node{
			Name:   "decision",
			Reads:  []string{"document_text", "risk_analysis"},
			Writes: []string{"loan_decision"},
			Run: func(_ context.Context, view graph.View) (map[string]any, error) {
				risk, _ := view.GetString("risk_analysis")
				return map[string]any{"loan_decision": "decision from " + risk}, nil
			},
		},
	)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	seed := map[string]any{"document_text": "Applicant income $50,000, 2 late payments"}
	exec := g.Start(seed, testOptions())

	if exec.Status() != graph.StatusPending {
		t.Errorf("Status = %v, want pending", exec.Status())
	}

	final, err := exec.Run(context.Background())
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	if exec.Status() != graph.StatusCompleted {
		t.Errorf("Status = %v, want completed", exec.Status())
	}

	risk, ok := final.GetString("risk_analysis")
	if !ok || risk == "" {
		t.Error("risk_analysis should be populated")
	}
	decision, ok := final.GetString("loan_decision")
	if !ok || decision != "decision from risk of Applicant income $50,000, 2 late payments" {
		t.Errorf("loan_decision = %q", decision)
	}
}

func TestExecuteMissingInputSkipsHandler(t *testing.T) {
	calls := 0
	g, err := graph.New("assess",
		graph.Node{
			Name:   "decision",
			Reads:  []string{"document_text", "risk_analysis"},
			Writes: []string{"loan_decision"},
			Run: func(context.Context, graph.View) (map[string]any, error) {
				calls++
				return map[string]any{"loan_decision": "never"}, nil
			},
		},
	)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	seed := map[string]any{"document_text": "report"}
	final, err := g.Execute(context.Background(), seed, testOptions())

	if !errors.Is(err, graph.ErrMissingInput) {
		t.Fatalf("error = %v, want ErrMissingInput", err)
	}

	var nodeErr *graph.NodeError
	if !errors.As(err, &nodeErr) || nodeErr.Node != "decision" {
		t.Errorf("error should name the decision node, got %v", err)
	}
	if calls != 0 {
		t.Errorf("handler calls = %d, want 0", calls)
	}
	if _, ok := final.Get("loan_decision"); ok {
		t.Error("no output field should be written")
	}
}

func TestExecuteRetriesOnlyFailedNode(t *testing.T) {
	firstRuns := 0
	secondRuns := 0

	g, err := graph.New("assess",
		graph.Node{
			Name:   "first",
			Writes: []string{"a"},
			Run: func(context.Context, graph.View) (map[string]any, error) {
				firstRuns++
				return map[string]any{"a": "done"}, nil
			},
		},
		graph.Node{
			Name:   "second",
			Reads:  []string{"a"},
			Writes: []string{"b"},
			Run: func(context.Context, graph.View) (map[string]any, error) {
				secondRuns++
				if secondRuns < 3 {
					return nil, errors.New("transient failure")
				}
				return map[string]any{"b": "done"}, nil
			},
		},
	)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	opts := testOptions()
	opts.MaxRetries = 2

	final, err := g.Execute(context.Background(), nil, opts)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if firstRuns != 1 {
		t.Errorf("first node runs = %d, want 1", firstRuns)
	}
	if secondRuns != 3 {
		t.Errorf("second node runs = %d, want 3", secondRuns)
	}
	if _, ok := final.Get("b"); !ok {
		t.Error("b should be populated after retry")
	}
}

func TestExecuteRetryBudgetExhausted(t *testing.T) {
	runs := 0
	g, err := graph.New("assess",
		graph.Node{
			Name:   "flaky",
			Writes: []string{"out"},
			Run: func(context.Context, graph.View) (map[string]any, error) {
				runs++
				return nil, errors.New("permanent failure")
			},
		},
	)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	opts := testOptions()
	opts.MaxRetries = 2

	exec := g.Start(nil, opts)
	_, err = exec.Run(context.Background())

	if !errors.Is(err, graph.ErrNodeExecutionFailed) {
		t.Fatalf("error = %v, want ErrNodeExecutionFailed", err)
	}
	if runs != 3 {
		t.Errorf("runs = %d, want 3 (initial + 2 retries)", runs)
	}
	if exec.Status() != graph.StatusNodeFailed {
		t.Errorf("Status = %v, want node_failed", exec.Status())
	}

	failed, failure := exec.Failure()
	if failed != "flaky" || failure == nil {
		t.Errorf("Failure() = (%q, %v), want (flaky, error)", failed, failure)
	}
}

func TestExecuteTimeout(t *testing.T) {
	g, err := graph.New("assess",
		graph.Node{
			Name:   "slow",
			Writes: []string{"out"},
			Run: func(ctx context.Context, _ graph.View) (map[string]any, error) {
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(10 * time.Second):
					return map[string]any{"out": "too late"}, nil
				}
			},
		},
	)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	opts := testOptions()
	opts.Timeout = 20 * time.Millisecond

	exec := g.Start(nil, opts)
	final, err := exec.Run(context.Background())

	if !errors.Is(err, graph.ErrWorkflowTimeout) {
		t.Fatalf("error = %v, want ErrWorkflowTimeout", err)
	}
	if _, ok := final.Get("out"); ok {
		t.Error("timed out node should not write its output field")
	}
	if exec.Status() != graph.StatusNodeFailed {
		t.Errorf("Status = %v, want node_failed", exec.Status())
	}
}

func TestExecuteParallelLevel(t *testing.T) {
	var concurrent, peak atomic.Int32

	branch := func(field string) graph.Node {
		return graph.Node{
			Name:   field,
			Reads:  []string{"seed"},
			Writes: []string{field},
			Run: func(context.Context, graph.View) (map[string]any, error) {
				now := concurrent.Add(1)
				if now > peak.Load() {
					peak.Store(now)
				}
				time.Sleep(20 * time.Millisecond)
				concurrent.Add(-1)
				return map[string]any{field: "done"}, nil
			},
		}
	}

	g, err := graph.New("fanout",
		branch("left"),
		branch("right"),
		graph.Node{
			Name:   "join",
			Reads:  []string{"left", "right"},
			Writes: []string{"merged"},
			Run: func(_ context.Context, view graph.View) (map[string]any, error) {
				l, lok := view.GetString("left")
				r, rok := view.GetString("right")
				if !lok || !rok {
					return nil, errors.New("join started before branches settled")
				}
				return map[string]any{"merged": l + "+" + r}, nil
			},
		},
	)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	opts := testOptions()
	opts.Parallel = true

	final, err := g.Execute(context.Background(), map[string]any{"seed": "x"}, opts)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if peak.Load() != 2 {
		t.Errorf("peak concurrency = %d, want 2", peak.Load())
	}
	if merged, _ := final.GetString("merged"); merged != "done+done" {
		t.Errorf("merged = %q, want done+done", merged)
	}
}

func TestExecuteRejectsUndeclaredWrite(t *testing.T) {
	g, err := graph.New("assess",
		graph.Node{
			Name:   "sneaky",
			Writes: []string{"declared"},
			Run: func(context.Context, graph.View) (map[string]any, error) {
				return map[string]any{"declared": "ok", "undeclared": "bad"}, nil
			},
		},
	)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	_, err = g.Execute(context.Background(), nil, testOptions())
	if !errors.Is(err, graph.ErrUndeclaredWrite) {
		t.Errorf("error = %v, want ErrUndeclaredWrite", err)
	}
}

func TestExecuteRejectsMissingOutput(t *testing.T) {
	g, err := graph.New("assess",
		graph.Node{
			Name:   "partial",
			Writes: []string{"a", "b"},
			Run: func(context.Context, graph.View) (map[string]any, error) {
				return map[string]any{"a": "only"}, nil
			},
		},
	)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	_, err = g.Execute(context.Background(), nil, testOptions())
	if !errors.Is(err, graph.ErrMissingOutput) {
		t.Errorf("error = %v, want ErrMissingOutput", err)
	}
}

func TestStateSeedFieldProtectedFromOverwrite(t *testing.T) {
	g, err := graph.New("assess",
		graph.Node{
			Name:   "clobber",
			Writes: []string{"document_text"},
			Run: func(context.Context, graph.View) (map[string]any, error) {
				return map[string]any{"document_text": "replaced"}, nil
			},
		},
	)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	seed := map[string]any{"document_text": "original"}
	final, err := g.Execute(context.Background(), seed, testOptions())

	if !errors.Is(err, graph.ErrFieldOverwrite) {
		t.Fatalf("error = %v, want ErrFieldOverwrite", err)
	}
	if text, _ := final.GetString("document_text"); text != "original" {
		t.Errorf("document_text = %q, want original preserved", text)
	}
}

func TestStateSnapshotIsIndependent(t *testing.T) {
	s := graph.NewState(map[string]any{"a": "1"})

	snap := s.Snapshot()
	snap["a"] = "mutated"
	snap["b"] = "added"

	if v, _ := s.GetString("a"); v != "1" {
		t.Errorf("a = %q, want 1", v)
	}
	if _, ok := s.Get("b"); ok {
		t.Error("snapshot mutation should not reach state")
	}
	if fields := s.Fields(); len(fields) != 1 || fields[0] != "a" {
		t.Errorf("Fields() = %v, want [a]", fields)
	}
}
