// Package tokens estimates language-model token counts for rendered schemas.
package tokens

// DefaultBudget is the token budget of the compressed schema.
const DefaultBudget = 2800

// Estimator counts tokens in text.
type Estimator func(text string) int

// Estimate approximates the token count of text (1 token ≈ 4 chars).
func Estimate(text string) int {
	return len(text) / 4
}

// Usage is an estimated token count measured against a budget.
type Usage struct {
	Tokens int  `json:"tokens"`
	Budget int  `json:"budget"`
	Within bool `json:"within_budget"`
}

// Check estimates text with estimate (Estimate when nil) and compares it
// to budget. A budget of zero or less is unlimited.
func Check(text string, budget int, estimate Estimator) Usage {
	if estimate == nil {
		estimate = Estimate
	}
	n := estimate(text)
	return Usage{
		Tokens: n,
		Budget: budget,
		Within: budget <= 0 || n <= budget,
	}
}
