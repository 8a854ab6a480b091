package workflow

import "errors"

// Domain errors for workflow node responses.
var (
	// ErrNoApplicants indicates the risk response contained no applicants.
	ErrNoApplicants = errors.New("no applicants in risk analysis")
	// ErrNoDecisions indicates the decision response contained no decisions.
	ErrNoDecisions = errors.New("no decisions in loan decision")
)
