// Package handler maps HTTP payloads onto the decision pipeline and its
// supporting services, and is the single place where internal error kinds
// become external response shapes.
package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"feewatch/internal/decision"
	"feewatch/internal/features"
	"feewatch/internal/metrics"
	"feewatch/internal/ml"
	"feewatch/internal/notify"
	"feewatch/internal/storage"
)

// requiredFields is the fixed validation order for the reminder payload.
// Responses name the first missing field in exactly this order.
var requiredFields = []string{
	"Name",
	"Due_Amount",
	"Delay_Days",
	"Semester",
	"Total_Fees",
	"Fees_Paid",
	"Late_Payments_Count",
	"Payment_Gap",
}

// numericFields are the payload keys that must carry JSON numbers.
var numericFields = map[string]bool{
	"Due_Amount":          true,
	"Delay_Days":          true,
	"Semester":            true,
	"Total_Fees":          true,
	"Fees_Paid":           true,
	"Late_Payments_Count": true,
	"Payment_Gap":         true,
}

// Classifier is the inference contract the handler depends on.
type Classifier interface {
	Classify(vector []float64) (string, error)
}

// ReminderHandler runs the validate -> classify -> gate -> dispatch
// pipeline for one request. Stateless apart from injected collaborators.
type ReminderHandler struct {
	engine     Classifier
	dispatcher *notify.Dispatcher
	store      *storage.Store // nil when auditing is disabled
	metrics    *metrics.Metrics
}

func NewReminderHandler(engine Classifier, dispatcher *notify.Dispatcher, store *storage.Store, m *metrics.Metrics) *ReminderHandler {
	return &ReminderHandler{
		engine:     engine,
		dispatcher: dispatcher,
		store:      store,
		metrics:    m,
	}
}

// SendReminder godoc
// POST /send_reminder
func (h *ReminderHandler) SendReminder(c *gin.Context) {
	if h.metrics != nil {
		h.metrics.RequestsTotal.Inc()
	}

	var payload map[string]any
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.validationFail(c, gin.H{"error": "Invalid JSON payload"})
		return
	}

	for _, key := range requiredFields {
		v, ok := payload[key]
		if !ok {
			h.validationFail(c, gin.H{"error": "Missing field: " + key})
			return
		}
		if numericFields[key] {
			if _, isNum := v.(float64); !isNum {
				h.validationFail(c, gin.H{"error": "Invalid field: " + key})
				return
			}
		}
	}

	name, ok := payload["Name"].(string)
	if !ok {
		h.validationFail(c, gin.H{"error": "Invalid field: Name"})
		return
	}

	num := func(key string) float64 { f, _ := payload[key].(float64); return f }
	record := features.StudentRecord{
		Name:              name,
		Semester:          int(num("Semester")),
		TotalFees:         num("Total_Fees"),
		FeesPaid:          num("Fees_Paid"),
		DueAmount:         num("Due_Amount"),
		DelayDays:         int(num("Delay_Days")),
		LatePaymentsCount: int(num("Late_Payments_Count")),
		PaymentGap:        num("Payment_Gap"),
	}

	label, err := h.engine.Classify(features.Assemble(record))
	if err != nil {
		var infErr *ml.InferenceError
		if errors.As(err, &infErr) {
			log.Error().Err(infErr).Msg("classification failed, degrading request")
		} else {
			log.Error().Err(err).Msg("unexpected classification error")
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "payment classification failed",
		})
		return
	}

	outcome := decision.ShouldNotify(label, record.DelayDays)
	if !outcome.Notify {
		if h.metrics != nil {
			h.metrics.GateDeclines.Inc()
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "no_reminder",
			"message": "No reminder needed.",
		})
		return
	}

	// Recipient is request-supplied when present; the dispatcher falls
	// back to the configured default.
	recipient, _ := payload["Whatsapp_Number"].(string)

	result := h.dispatcher.Dispatch(c.Request.Context(), recipient, record.Name, record.DueAmount, record.DelayDays)
	h.audit(label, record.DelayDays, outcome.Reason, result)

	// Dispatch failures are data, not HTTP errors: the decision to
	// notify already succeeded.
	c.JSON(http.StatusOK, result)
}

func (h *ReminderHandler) validationFail(c *gin.Context, body gin.H) {
	if h.metrics != nil {
		h.metrics.ValidationFailures.Inc()
	}
	c.JSON(http.StatusBadRequest, body)
}

func (h *ReminderHandler) audit(label string, delayDays int, reason string, result notify.Result) {
	if h.store == nil {
		return
	}
	rec := storage.DispatchRecord{
		Timestamp:  time.Now(),
		Label:      label,
		DelayDays:  delayDays,
		Reason:     reason,
		Status:     result.Status,
		MessageSID: result.MessageSID,
	}
	if err := h.store.StoreDispatch(rec); err != nil {
		log.Warn().Err(err).Msg("failed to store dispatch record")
	}
}

// History godoc
// GET /reminders/history
func (h *ReminderHandler) History(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusOK, gin.H{"dispatches": []storage.DispatchRecord{}})
		return
	}

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	records, err := h.store.RecentDispatches(limit)
	if err != nil {
		log.Error().Err(err).Msg("failed to read dispatch history")
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "failed to read dispatch history",
		})
		return
	}
	if records == nil {
		records = []storage.DispatchRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"dispatches": records})
}
