package prompts

// Built-in prompt framing per stage. Operators adjust these through the
// [prompts] config section; empty override fields keep these defaults.
var defaults = map[Stage]Override{
	StageRisk: {
		Role: "Senior Credit Analyst",
		Goal: "Analyze the credit report and provide a risk assessment in JSON format. " +
			"Include credit history, DTI ratio, employment stability, and other risk factors.",
		Backstory: "You have spent fifteen years reviewing consumer credit files for retail lenders " +
			"and specialize in translating raw bureau data into clear, defensible risk assessments.",
	},
	StageDecision: {
		Role: "Senior Loan Officer",
		Goal: "Based on the risk factors, provide a loan decision. " +
			"Include approval status, loan terms, and detailed rationale.",
		Backstory: "You make final lending decisions for consumer loan applications, weighing " +
			"institutional risk policy against each applicant's complete financial picture.",
	},
}

// Labels introducing the serialized payload in each stage's prompt.
var payloadLabels = map[Stage]string{
	StageRisk:     "Credit Report Content",
	StageDecision: "Risk Analysis Results",
}
