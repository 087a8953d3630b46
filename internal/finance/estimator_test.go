package finance

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimateFee(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		course      string
		income      float64
		scholarship bool
		want        float64
	}{
		{"engineering full fee", "engineering", 500000, false, 500000},
		{"engineering case-insensitive", "Engineering", 500000, false, 500000},
		{"medical low income", "medical", 200000, false, 560000},
		{"arts with scholarship", "arts", 400000, true, 140000},
		{"science low income and scholarship", "science", 100000, true, 168000},
		{"unknown course default", "philosophy", 500000, false, 400000},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tt.want, EstimateFee(tt.course, tt.income, tt.scholarship), 1e-9)
		})
	}
}

func TestProjectBudget(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 12000, ProjectBudget(10000), 1e-9)
	assert.Zero(t, ProjectBudget(0))
}

func TestSpendingInsights(t *testing.T) {
	t.Parallel()

	in := SpendingInsights()

	total := 0
	for _, pct := range in.SpendingPatterns {
		total += pct
	}
	assert.Equal(t, 100, total, "spending pattern percentages must sum to 100")
	assert.NotEmpty(t, in.Insights)
}
