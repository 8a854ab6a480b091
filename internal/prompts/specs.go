package prompts

const riskSpec = `Format your response so it can be rendered directly into a plain-text
assessment report. The report should be well-structured with headings and
sections, following this format:
1. Start with '**Comprehensive Credit Report Analysis**'
2. Include sections for Personal Information, Credit History, Debt-Income
   Analysis, Employment Stability, and Overall Risk Assessment
3. Conclude with an overall assessment paragraph

Respond with a JSON object matching this exact structure:

{
  "applicants": [
    {
      "personal_info": {"name": "<string>", "ssn": "<string>", "address": "<string>"},
      "credit_history": {"credit_score": <int>, "payment_history": "<string>", "credit_utilization": <float>},
      "debt_income_analysis": {"monthly_income": <float>, "total_debt": <float>, "dti_ratio": <float>},
      "employment_stability": {"current_employer": "<string>", "years_employed": <float>, "employment_type": "<string>"},
      "overall_assessment": {"risk_level": "<string>", "risk_factors": ["<string>"], "recommendations": ["<string>"]}
    }
  ],
  "conclusion": "<string>",
  "text_format": "<string>"
}

Field constraints:
- applicants: One entry per applicant found in the credit report.
- credit_score: The numeric bureau score for the applicant.
- dti_ratio: Monthly debt obligations divided by monthly income.
- risk_level: Overall risk category for the applicant (e.g., low,
  moderate, high).
- risk_factors: Specific findings that elevate risk, one per entry.
- recommendations: Actions that would improve the applicant's position.
- conclusion: The overall assessment paragraph covering all applicants.
- text_format: The full formatted report text described above.

Behavioral constraints:
- Always respond with valid JSON, no markdown fencing
- Base every finding on content present in the credit report
- Never invent account data, balances, or scores that are not in the report`

const decisionSpec = `Format your response so it can be rendered directly into a plain-text
decision report. The decision follows the risk analysis section and should be
well-structured with headings. Include a section titled
'**Loan Decision Report**', followed by applicant information,
creditworthiness assessment, risk factors, and recommendation.

Respond with a JSON object matching this exact structure:

{
  "decisions": [
    {
      "applicant_name": "<string>",
      "decision": {
        "status": "APPROVED|DENIED|CONDITIONAL",
        "loan_terms": {"amount": <float>, "interest_rate": <float>, "term_months": <int>},
        "conditions": ["<string>"],
        "rationale": ["<string>"]
      }
    }
  ],
  "text_format": "<string>"
}

Field constraints:
- decisions: One entry per applicant in the risk analysis.
- status: Exactly one of APPROVED, DENIED, or CONDITIONAL.
- loan_terms: The offered amount, rate, and term. Include only for
  APPROVED or CONDITIONAL decisions.
- conditions: Requirements the applicant must satisfy. Required for
  CONDITIONAL decisions, empty otherwise.
- rationale: The reasoning behind the decision, one point per entry.
- text_format: The full formatted decision report text described above.

Behavioral constraints:
- Always respond with valid JSON, no markdown fencing
- Ground every decision point in the provided risk analysis
- Never approve terms inconsistent with the assessed risk level`

var specs = map[Stage]string{
	StageRisk:     riskSpec,
	StageDecision: decisionSpec,
}

// Spec returns the response contract for a workflow stage. Contracts define
// the expected output format and behavioral constraints.
// Returns ErrInvalidStage if the stage is not recognized.
func Spec(stage Stage) (string, error) {
	text, ok := specs[stage]
	if !ok {
		return "", ErrInvalidStage
	}
	return text, nil
}
