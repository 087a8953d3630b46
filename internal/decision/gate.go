// Package decision holds the rule that gates outbound fee reminders.
package decision

// LabelUnpaid is the classification that always warrants a reminder.
const LabelUnpaid = "Unpaid"

// delayThreshold is the number of overdue days above which a reminder is
// sent regardless of the classification. Exactly delayThreshold days does
// not trigger.
const delayThreshold = 5

// Outcome is the gate's verdict for a single request.
type Outcome struct {
	Notify bool
	Reason string
}

// ShouldNotify decides whether a reminder goes out. Deterministic and
// side-effect free: notify when the label is Unpaid or the delay exceeds
// the threshold.
func ShouldNotify(label string, delayDays int) Outcome {
	switch {
	case label == LabelUnpaid:
		return Outcome{Notify: true, Reason: "payment classified as Unpaid"}
	case delayDays > delayThreshold:
		return Outcome{Notify: true, Reason: "payment overdue beyond threshold"}
	default:
		return Outcome{Notify: false, Reason: "no risk indicators"}
	}
}
