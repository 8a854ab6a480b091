package workflow

import (
	"time"

	"github.com/google/uuid"

	"github.com/veldt-labs/arbiter/internal/documents"
	"github.com/veldt-labs/arbiter/pkg/provider"
)

// State fields shared between workflow nodes.
const (
	FieldDocumentText = "document_text"
	FieldRiskAnalysis = "risk_analysis"
	FieldLoanDecision = "loan_decision"
)

// Workflow node names.
const (
	NodeRisk     = "risk"
	NodeDecision = "decision"
)

// PersonalInfo identifies an applicant in the credit report.
type PersonalInfo struct {
	Name    string `json:"name"`
	SSN     string `json:"ssn"`
	Address string `json:"address"`
}

// CreditHistory summarizes the applicant's credit record.
type CreditHistory struct {
	CreditScore       int     `json:"credit_score"`
	PaymentHistory    string  `json:"payment_history"`
	CreditUtilization float64 `json:"credit_utilization"`
}

// DebtIncomeAnalysis captures the applicant's income against obligations.
type DebtIncomeAnalysis struct {
	MonthlyIncome float64 `json:"monthly_income"`
	TotalDebt     float64 `json:"total_debt"`
	DTIRatio      float64 `json:"dti_ratio"`
}

// EmploymentStability describes the applicant's employment situation.
type EmploymentStability struct {
	CurrentEmployer string  `json:"current_employer"`
	YearsEmployed   float64 `json:"years_employed"`
	EmploymentType  string  `json:"employment_type"`
}

// OverallAssessment is the per-applicant risk summary.
type OverallAssessment struct {
	RiskLevel       string   `json:"risk_level"`
	RiskFactors     []string `json:"risk_factors"`
	Recommendations []string `json:"recommendations"`
}

// ApplicantRisk is the structured risk assessment for one applicant.
type ApplicantRisk struct {
	PersonalInfo        PersonalInfo        `json:"personal_info"`
	CreditHistory       CreditHistory       `json:"credit_history"`
	DebtIncomeAnalysis  DebtIncomeAnalysis  `json:"debt_income_analysis"`
	EmploymentStability EmploymentStability `json:"employment_stability"`
	OverallAssessment   OverallAssessment   `json:"overall_assessment"`
}

// RiskAnalysis is the risk node's structured output.
type RiskAnalysis struct {
	Applicants []ApplicantRisk `json:"applicants"`
	Conclusion string          `json:"conclusion"`
	TextFormat string          `json:"text_format"`
}

// Decision statuses.
const (
	StatusApproved    = "APPROVED"
	StatusDenied      = "DENIED"
	StatusConditional = "CONDITIONAL"
)

// LoanTerms are the offered terms for an approved or conditional decision.
type LoanTerms struct {
	Amount       float64 `json:"amount"`
	InterestRate float64 `json:"interest_rate"`
	TermMonths   int     `json:"term_months"`
}

// Decision is the outcome for one applicant.
type Decision struct {
	Status     string     `json:"status"`
	LoanTerms  *LoanTerms `json:"loan_terms,omitempty"`
	Conditions []string   `json:"conditions,omitempty"`
	Rationale  []string   `json:"rationale"`
}

// ApplicantDecision pairs an applicant with their decision.
type ApplicantDecision struct {
	ApplicantName string   `json:"applicant_name"`
	Decision      Decision `json:"decision"`
}

// LoanDecision is the decision node's structured output.
type LoanDecision struct {
	Decisions  []ApplicantDecision `json:"decisions"`
	TextFormat string              `json:"text_format"`
}

// Invocation records which provider produced a node's output and at what cost.
type Invocation struct {
	Provider  string `json:"provider"`
	Model     string `json:"model"`
	Attempts  int    `json:"attempts"`
	ElapsedMS int64  `json:"elapsed_ms"`
}

func invocation(res provider.Result) Invocation {
	return Invocation{
		Provider:  res.Provider,
		Model:     res.Model,
		Attempts:  res.Attempts,
		ElapsedMS: res.Elapsed.Milliseconds(),
	}
}

// RiskResult is the value the risk node writes into workflow state.
type RiskResult struct {
	Analysis   RiskAnalysis
	Invocation Invocation
}

// DecisionResult is the value the decision node writes into workflow state.
type DecisionResult struct {
	Decision   LoanDecision
	Invocation Invocation
}

// Assessment is the final result of one document run.
type Assessment struct {
	RunID              uuid.UUID
	Document           documents.Document
	Risk               RiskAnalysis
	Decision           LoanDecision
	RiskInvocation     Invocation
	DecisionInvocation Invocation
	StartedAt          time.Time
	CompletedAt        time.Time
}
