// Package finance holds the fee-estimation and budgeting helpers exposed
// on the secondary endpoints.
package finance

import "strings"

// Base tuition fee per course. Unknown courses fall back to defaultBaseFee.
var baseFees = map[string]float64{
	"engineering": 500000,
	"medical":     700000,
	"arts":        200000,
	"science":     300000,
}

const defaultBaseFee = 400000

const (
	lowIncomeCutoff      = 300000
	lowIncomeDiscount    = 0.8
	scholarshipDiscount  = 0.7
	budgetBufferMultiple = 1.2
)

// EstimateFee predicts the tuition fee for a course, discounted for
// low-income and scholarship students.
func EstimateFee(course string, income float64, scholarship bool) float64 {
	fee, ok := baseFees[strings.ToLower(course)]
	if !ok {
		fee = defaultBaseFee
	}
	if income < lowIncomeCutoff {
		fee *= lowIncomeDiscount
	}
	if scholarship {
		fee *= scholarshipDiscount
	}
	return fee
}

// ProjectBudget projects next-period budget from current expenses with a
// 20% buffer.
func ProjectBudget(expenses float64) float64 {
	return expenses * budgetBufferMultiple
}

// Insights summarizes spending distribution and per-category advice.
type Insights struct {
	SpendingPatterns map[string]int    `json:"spending_patterns"`
	Insights         map[string]string `json:"insights"`
}

// SpendingInsights returns the current spending-pattern breakdown.
// TODO: replace the static table once expense tracking lands and real
// per-student data is available.
func SpendingInsights() Insights {
	return Insights{
		SpendingPatterns: map[string]int{
			"Rent":          40,
			"Food":          20,
			"Transport":     10,
			"Savings":       15,
			"Entertainment": 10,
			"Others":        5,
		},
		Insights: map[string]string{
			"Savings":   "Your savings ratio is low, try to save at least 20% of your income.",
			"Food":      "Food expenses are high, consider meal planning.",
			"Transport": "Consider using public transport to reduce costs.",
		},
	}
}
