// Package features maps raw student fee records into the fixed-order
// numeric vector the payment classifier was trained on.
package features

// FeatureCount is the number of inputs the classifier expects.
const FeatureCount = 7

// Order is the canonical feature order. The loaded model artifacts are
// fitted against exactly this sequence; changing it without retraining
// is a configuration error, not something a request can recover from.
var Order = [FeatureCount]string{
	"Semester",
	"Total_Fees",
	"Fees_Paid",
	"Due_Amount",
	"Delay_Days",
	"Late_Payments_Count",
	"Payment_Gap",
}

// StudentRecord is one request's fee-payment snapshot. It is built from a
// validated payload, lives for the duration of the request and is never
// persisted.
type StudentRecord struct {
	Name              string
	Semester          int
	TotalFees         float64
	FeesPaid          float64
	DueAmount         float64
	DelayDays         int
	LatePaymentsCount int
	PaymentGap        float64
}

// Assemble builds the feature vector for r in canonical order.
// Input is assumed pre-validated by the request handler.
func Assemble(r StudentRecord) []float64 {
	return []float64{
		float64(r.Semester),
		r.TotalFees,
		r.FeesPaid,
		r.DueAmount,
		float64(r.DelayDays),
		float64(r.LatePaymentsCount),
		r.PaymentGap,
	}
}
