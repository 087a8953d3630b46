package features

import "testing"

func TestAssemble_CanonicalOrder(t *testing.T) {
	t.Parallel()

	rec := StudentRecord{
		Name:              "Asha",
		Semester:          3,
		TotalFees:         100000,
		FeesPaid:          95000,
		DueAmount:         5000,
		DelayDays:         2,
		LatePaymentsCount: 1,
		PaymentGap:        10,
	}

	v := Assemble(rec)
	if len(v) != FeatureCount {
		t.Fatalf("expected %d features, got %d", FeatureCount, len(v))
	}

	want := []float64{3, 100000, 95000, 5000, 2, 1, 10}
	for i, w := range want {
		if v[i] != w {
			t.Errorf("feature %d (%s): expected %v, got %v", i, Order[i], w, v[i])
		}
	}
}

func TestAssemble_ZeroRecord(t *testing.T) {
	t.Parallel()

	v := Assemble(StudentRecord{})
	if len(v) != FeatureCount {
		t.Fatalf("expected %d features, got %d", FeatureCount, len(v))
	}
	for i, x := range v {
		if x != 0 {
			t.Errorf("feature %d: expected 0, got %v", i, x)
		}
	}
}

func TestOrder_MatchesFeatureCount(t *testing.T) {
	t.Parallel()

	if len(Order) != FeatureCount {
		t.Fatalf("Order has %d entries, FeatureCount is %d", len(Order), FeatureCount)
	}
}
