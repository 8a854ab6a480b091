package output

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/veldt-labs/arbiter/internal/workflow"
)

const sectionSeparator = "=================================================="

// renderText formats a completed assessment into the plain-text report:
// the risk analysis section, a separator, then the loan decision section.
func renderText(a *workflow.Assessment) string {
	var sb strings.Builder

	sb.WriteString("Risk Analysis Results:\n\n")
	renderRiskReport(&sb, &a.Risk)

	sb.WriteString(sectionSeparator)
	sb.WriteString("\n\n")

	sb.WriteString("Loan Decision:\n\n")
	renderDecisionReport(&sb, &a.Decision)

	if len(a.Risk.Applicants) == 0 && len(a.Decision.Decisions) == 0 {
		sb.WriteString("No detailed credit report information available.\n")
	}

	return sb.String()
}

func renderRiskReport(sb *strings.Builder, risk *workflow.RiskAnalysis) {
	if len(risk.Applicants) == 0 {
		return
	}

	sb.WriteString("**Comprehensive Credit Report Analysis**\n\n")

	for i, applicant := range risk.Applicants {
		sb.WriteString("**1. Personal Information:**\n")
		fmt.Fprintf(sb, "   - **Name:** %s\n", applicant.PersonalInfo.Name)
		fmt.Fprintf(sb, "   - **SSN:** %s\n", maskSSN(applicant.PersonalInfo.SSN))
		fmt.Fprintf(sb, "   - **Address:** %s\n\n", applicant.PersonalInfo.Address)

		sb.WriteString("**2. Credit History:**\n")
		fmt.Fprintf(sb, "   - **Credit Score:** %d\n", applicant.CreditHistory.CreditScore)
		fmt.Fprintf(sb, "   - **Payment History:** %s\n", applicant.CreditHistory.PaymentHistory)
		fmt.Fprintf(sb, "   - **Credit Utilization:** %s\n\n", num(applicant.CreditHistory.CreditUtilization))

		sb.WriteString("**3. Debt-Income Analysis:**\n")
		fmt.Fprintf(sb, "   - **Monthly Income:** %s\n", money(applicant.DebtIncomeAnalysis.MonthlyIncome))
		fmt.Fprintf(sb, "   - **Total Debt:** %s\n", money(applicant.DebtIncomeAnalysis.TotalDebt))
		fmt.Fprintf(sb, "   - **DTI Ratio:** %s\n\n", num(applicant.DebtIncomeAnalysis.DTIRatio))

		sb.WriteString("**4. Employment Stability:**\n")
		fmt.Fprintf(sb, "   - **Current Employer:** %s\n", applicant.EmploymentStability.CurrentEmployer)
		fmt.Fprintf(sb, "   - **Years Employed:** %s\n", num(applicant.EmploymentStability.YearsEmployed))
		fmt.Fprintf(sb, "   - **Employment Type:** %s\n\n", applicant.EmploymentStability.EmploymentType)

		sb.WriteString("**5. Overall Risk Assessment:**\n")
		fmt.Fprintf(sb, "   - **Risk Level:** %s\n", applicant.OverallAssessment.RiskLevel)

		if len(applicant.OverallAssessment.RiskFactors) > 0 {
			sb.WriteString("   - **Risk Factors:**\n")
			for _, factor := range applicant.OverallAssessment.RiskFactors {
				fmt.Fprintf(sb, "     - %s\n", factor)
			}
		}
		if len(applicant.OverallAssessment.Recommendations) > 0 {
			sb.WriteString("   - **Recommendations:**\n")
			for _, rec := range applicant.OverallAssessment.Recommendations {
				fmt.Fprintf(sb, "     - %s\n", rec)
			}
		}

		sb.WriteString("\n")
		if i < len(risk.Applicants)-1 {
			sb.WriteString("---\n\n")
		}
	}

	if risk.Conclusion != "" {
		sb.WriteString("**Conclusion:**\n")
		sb.WriteString(risk.Conclusion)
		sb.WriteString("\n\n")
	}
}

func renderDecisionReport(sb *strings.Builder, decision *workflow.LoanDecision) {
	if len(decision.Decisions) == 0 {
		return
	}

	sb.WriteString("**Loan Decision Report**\n\n")

	for _, entry := range decision.Decisions {
		sb.WriteString("**Applicant Information:**\n")
		fmt.Fprintf(sb, "- **Name:** %s\n\n", entry.ApplicantName)

		fmt.Fprintf(sb, "**Decision: %s**\n\n", entry.Decision.Status)

		offered := entry.Decision.Status == workflow.StatusApproved ||
			entry.Decision.Status == workflow.StatusConditional

		if offered && entry.Decision.LoanTerms != nil {
			terms := entry.Decision.LoanTerms
			sb.WriteString("**Loan Terms:**\n")
			fmt.Fprintf(sb, "- **Amount:** %s\n", money(terms.Amount))
			fmt.Fprintf(sb, "- **Interest Rate:** %s%%\n", num(terms.InterestRate))
			fmt.Fprintf(sb, "- **Term:** %d months\n\n", terms.TermMonths)
		}

		if offered && len(entry.Decision.Conditions) > 0 {
			sb.WriteString("**Conditions:**\n")
			for _, condition := range entry.Decision.Conditions {
				fmt.Fprintf(sb, "- %s\n", condition)
			}
			sb.WriteString("\n")
		}

		if len(entry.Decision.Rationale) > 0 {
			sb.WriteString("**Justification:**\n")
			for _, reason := range entry.Decision.Rationale {
				sb.WriteString(reason)
				sb.WriteString("\n\n")
			}
		}
	}
}

// maskSSN hides all but the last four digits of a social security number.
func maskSSN(ssn string) string {
	var digits []byte
	for i := 0; i < len(ssn); i++ {
		if ssn[i] >= '0' && ssn[i] <= '9' {
			digits = append(digits, ssn[i])
		}
	}
	if len(digits) < 4 {
		return "XXX-XX-XXXX"
	}
	return "XXX-XX-" + string(digits[len(digits)-4:])
}

func money(v float64) string {
	return "$" + strconv.FormatFloat(v, 'f', 2, 64)
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
