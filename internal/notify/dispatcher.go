package notify

import (
	"context"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

// Result statuses. Provider failures surface as data, never as errors
// past the dispatcher boundary.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Result is the uniform dispatch outcome returned to the caller verbatim.
type Result struct {
	Status     string `json:"status"`
	MessageSID string `json:"message_sid,omitempty"`
	Message    string `json:"message,omitempty"`
}

// Provider is the outbound messaging contract.
type Provider interface {
	Send(ctx context.Context, to, body string) (sid string, err error)
}

// MetricsInterface defines the metrics methods the dispatcher reports to.
type MetricsInterface interface {
	RemindersSentInc()
	DispatchFailuresInc()
	DispatchLatencyObserve(float64)
}

// Dispatcher formats reminders and submits them through the provider.
// It performs exactly one send attempt per call; retry policy, if any,
// belongs to the caller's transport layer.
type Dispatcher struct {
	provider  Provider
	defaultTo string
	timeout   time.Duration
	metrics   MetricsInterface
}

// NewDispatcher wires a provider with an optional default recipient.
// metrics may be nil in tests.
func NewDispatcher(provider Provider, defaultTo string, timeout time.Duration, metrics MetricsInterface) *Dispatcher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Dispatcher{
		provider:  provider,
		defaultTo: defaultTo,
		timeout:   timeout,
		metrics:   metrics,
	}
}

// Dispatch sends one reminder to the resolved recipient. The recipient is
// the request-supplied number when present, the configured default
// otherwise. Timeouts and provider failures come back as error Results.
func (d *Dispatcher) Dispatch(ctx context.Context, to, name string, dueAmount float64, delayDays int) Result {
	recipient := to
	if recipient == "" {
		recipient = d.defaultTo
	}
	if recipient == "" {
		return d.fail("no recipient: request carried no number and no default is configured")
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	start := time.Now()
	sid, err := d.provider.Send(ctx, recipient, FormatReminder(name, dueAmount, delayDays))
	if d.metrics != nil {
		d.metrics.DispatchLatencyObserve(time.Since(start).Seconds())
	}
	if err != nil {
		log.Warn().Err(err).Str("recipient", recipient).Msg("reminder dispatch failed")
		return d.fail(err.Error())
	}

	if d.metrics != nil {
		d.metrics.RemindersSentInc()
	}
	log.Info().
		Str("recipient", recipient).
		Str("message_sid", sid).
		Int("delay_days", delayDays).
		Msg("reminder sent")
	return Result{Status: StatusSuccess, MessageSID: sid}
}

func (d *Dispatcher) fail(msg string) Result {
	if d.metrics != nil {
		d.metrics.DispatchFailuresInc()
	}
	return Result{Status: StatusError, Message: msg}
}

// FormatReminder renders the human-readable reminder body.
func FormatReminder(name string, dueAmount float64, delayDays int) string {
	return "📢 Reminder: Dear " + name +
		", you have an outstanding fee of ₹" + strconv.FormatFloat(dueAmount, 'f', -1, 64) +
		". You are overdue by " + strconv.Itoa(delayDays) +
		" days. Please pay at the earliest to avoid penalties."
}
