package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feewatch/internal/validator"
)

func newFinanceRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	validator.Setup()

	h := NewFinanceHandler()
	r := gin.New()
	r.POST("/estimate_fee", h.EstimateFee)
	r.POST("/predict_budget", h.PredictBudget)
	r.GET("/financial_insights", h.FinancialInsights)
	return r
}

func postJSON(t *testing.T, r *gin.Engine, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestEstimateFee(t *testing.T) {
	r := newFinanceRouter()

	w := postJSON(t, r, "/estimate_fee", map[string]any{
		"course":      "engineering",
		"income":      500000,
		"scholarship": false,
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]float64
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.InDelta(t, 500000, body["predicted_fee"], 1e-9)
}

func TestEstimateFee_ValidationErrors(t *testing.T) {
	r := newFinanceRouter()

	tests := []struct {
		name    string
		payload map[string]any
		field   string
	}{
		{"missing course", map[string]any{"income": 1000, "scholarship": true}, "course"},
		{"missing income", map[string]any{"course": "arts", "scholarship": true}, "income"},
		{"negative income", map[string]any{"course": "arts", "income": -1, "scholarship": true}, "income"},
		{"missing scholarship", map[string]any{"course": "arts", "income": 1000}, "scholarship"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(t, r, "/estimate_fee", tt.payload)
			assert.Equal(t, http.StatusBadRequest, w.Code)

			var body struct {
				Error  string            `json:"error"`
				Fields map[string]string `json:"fields"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Contains(t, body.Fields, tt.field)
		})
	}
}

func TestPredictBudget(t *testing.T) {
	r := newFinanceRouter()

	w := postJSON(t, r, "/predict_budget", map[string]any{"expenses": 10000})
	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]float64
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.InDelta(t, 12000, body["predicted_budget"], 1e-9)

	w = postJSON(t, r, "/predict_budget", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFinancialInsights(t *testing.T) {
	r := newFinanceRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/financial_insights", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var body struct {
		SpendingPatterns map[string]int    `json:"spending_patterns"`
		Insights         map[string]string `json:"insights"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NotEmpty(t, body.SpendingPatterns)
	assert.NotEmpty(t, body.Insights)
}
