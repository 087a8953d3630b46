package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"feewatch/internal/finance"
	"feewatch/internal/validator"
)

// FinanceHandler serves the fee-estimation and budgeting endpoints.
type FinanceHandler struct{}

func NewFinanceHandler() *FinanceHandler {
	return &FinanceHandler{}
}

type estimateFeeRequest struct {
	Course      string   `json:"course" binding:"required"`
	Income      *float64 `json:"income" binding:"required,gte=0"`
	Scholarship *bool    `json:"scholarship" binding:"required"`
}

// EstimateFee godoc
// POST /estimate_fee
func (h *FinanceHandler) EstimateFee(c *gin.Context) {
	var req estimateFeeRequest
	if fields := validator.Bind(c, &req); fields != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": fields})
		return
	}

	fee := finance.EstimateFee(req.Course, *req.Income, *req.Scholarship)
	c.JSON(http.StatusOK, gin.H{"predicted_fee": fee})
}

type predictBudgetRequest struct {
	Expenses *float64 `json:"expenses" binding:"required,gte=0"`
}

// PredictBudget godoc
// POST /predict_budget
func (h *FinanceHandler) PredictBudget(c *gin.Context) {
	var req predictBudgetRequest
	if fields := validator.Bind(c, &req); fields != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": fields})
		return
	}

	c.JSON(http.StatusOK, gin.H{"predicted_budget": finance.ProjectBudget(*req.Expenses)})
}

// FinancialInsights godoc
// GET /financial_insights
func (h *FinanceHandler) FinancialInsights(c *gin.Context) {
	c.JSON(http.StatusOK, finance.SpendingInsights())
}
