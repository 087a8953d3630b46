package notify

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	sid   string
	err   error
	calls int
	to    []string
	body  []string
}

func (s *stubProvider) Send(_ context.Context, to, body string) (string, error) {
	s.calls++
	s.to = append(s.to, to)
	s.body = append(s.body, body)
	if s.err != nil {
		return "", s.err
	}
	return s.sid, nil
}

type dispatchMetrics struct {
	sent, failed, observed int
}

func (m *dispatchMetrics) RemindersSentInc()              { m.sent++ }
func (m *dispatchMetrics) DispatchFailuresInc()           { m.failed++ }
func (m *dispatchMetrics) DispatchLatencyObserve(float64) { m.observed++ }

func TestDispatcher_Success(t *testing.T) {
	t.Parallel()

	p := &stubProvider{sid: "SM123"}
	m := &dispatchMetrics{}
	d := NewDispatcher(p, "", time.Second, m)

	res := d.Dispatch(context.Background(), "whatsapp:+911234567890", "Asha", 5000, 10)

	assert.Equal(t, StatusSuccess, res.Status)
	assert.Equal(t, "SM123", res.MessageSID)
	assert.Empty(t, res.Message)
	assert.Equal(t, 1, p.calls)
	assert.Equal(t, "whatsapp:+911234567890", p.to[0])
	assert.Equal(t, 1, m.sent)
	assert.Equal(t, 0, m.failed)
	assert.Equal(t, 1, m.observed)
}

func TestDispatcher_FallsBackToDefaultRecipient(t *testing.T) {
	t.Parallel()

	p := &stubProvider{sid: "SM1"}
	d := NewDispatcher(p, "whatsapp:+910000000000", time.Second, nil)

	res := d.Dispatch(context.Background(), "", "Asha", 100, 7)
	assert.Equal(t, StatusSuccess, res.Status)
	assert.Equal(t, "whatsapp:+910000000000", p.to[0])
}

func TestDispatcher_NoRecipientAnywhere(t *testing.T) {
	t.Parallel()

	p := &stubProvider{sid: "SM1"}
	m := &dispatchMetrics{}
	d := NewDispatcher(p, "", time.Second, m)

	res := d.Dispatch(context.Background(), "", "Asha", 100, 7)
	assert.Equal(t, StatusError, res.Status)
	assert.Contains(t, res.Message, "no recipient")
	assert.Zero(t, p.calls, "provider must not be contacted without a recipient")
	assert.Equal(t, 1, m.failed)
}

func TestDispatcher_ProviderFailureBecomesErrorResult(t *testing.T) {
	t.Parallel()

	p := &stubProvider{err: errors.New("provider rejected message: 21211 invalid number")}
	m := &dispatchMetrics{}
	d := NewDispatcher(p, "whatsapp:+910000000000", time.Second, m)

	res := d.Dispatch(context.Background(), "", "Asha", 100, 7)
	assert.Equal(t, StatusError, res.Status)
	assert.Contains(t, res.Message, "21211")
	assert.Empty(t, res.MessageSID)
	assert.Equal(t, 1, m.failed)
	assert.Zero(t, m.sent)
}

// Dispatch is deliberately not idempotent: every qualifying call performs
// an independent send attempt. Deduplication belongs to an upstream
// queueing layer, not here.
func TestDispatcher_RepeatedCallsSendIndependently(t *testing.T) {
	t.Parallel()

	p := &stubProvider{sid: "SM9"}
	d := NewDispatcher(p, "whatsapp:+910000000000", time.Second, nil)

	for i := 0; i < 3; i++ {
		res := d.Dispatch(context.Background(), "", "Asha", 100, 7)
		assert.Equal(t, StatusSuccess, res.Status)
	}
	assert.Equal(t, 3, p.calls)
}

func TestFormatReminder(t *testing.T) {
	t.Parallel()

	body := FormatReminder("Asha", 5000, 10)
	assert.Equal(t, "📢 Reminder: Dear Asha, you have an outstanding fee of ₹5000. You are overdue by 10 days. Please pay at the earliest to avoid penalties.", body)

	// Fractional amounts keep their decimals.
	assert.Contains(t, FormatReminder("Ravi", 1234.5, 1), "₹1234.5.")
}

func TestTwilioClient_Send(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.True(t, strings.HasSuffix(r.URL.Path, "/Accounts/AC42/Messages.json"))

		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		require.Equal(t, "AC42", user)
		require.Equal(t, "secret", pass)

		require.NoError(t, r.ParseForm())
		require.Equal(t, "whatsapp:+14155238886", r.PostForm.Get("From"))
		require.Equal(t, "whatsapp:+911234567890", r.PostForm.Get("To"))
		require.NotEmpty(t, r.PostForm.Get("Body"))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"sid":"SM777","status":"queued"}`))
	}))
	defer srv.Close()

	c := NewTwilio("AC42", "secret", "whatsapp:+14155238886", srv.URL, time.Second)
	sid, err := c.Send(context.Background(), "whatsapp:+911234567890", "hello")
	require.NoError(t, err)
	assert.Equal(t, "SM777", sid)
}

func TestTwilioClient_Send_APIError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"code":21211,"message":"The 'To' number is not a valid phone number.","status":400}`))
	}))
	defer srv.Close()

	c := NewTwilio("AC42", "secret", "whatsapp:+14155238886", srv.URL, time.Second)
	_, err := c.Send(context.Background(), "bogus", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "21211")
}

func TestTwilioClient_Send_Timeout(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.Write([]byte(`{"sid":"SM1"}`))
	}))
	defer srv.Close()

	c := NewTwilio("AC42", "secret", "whatsapp:+14155238886", srv.URL, time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.Send(ctx, "whatsapp:+911234567890", "hello")
	assert.Error(t, err, "a timed-out dispatch must surface as an error, not hang")
}

func TestTwilioClient_Send_EmptySid(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewTwilio("AC42", "secret", "whatsapp:+14155238886", srv.URL, time.Second)
	_, err := c.Send(context.Background(), "whatsapp:+911234567890", "hello")
	assert.Error(t, err)
}
