// Package router assembles the Gin engine for the reminder API.
package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"feewatch/internal/cfg"
	"feewatch/internal/handler"
	"feewatch/internal/middleware"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Reminder *handler.ReminderHandler
	Finance  *handler.FinanceHandler
}

// Setup configures routes and middleware. The API carries no caller
// authentication; CORS is restricted only when AllowedOrigins is
// configured.
func Setup(handlers *Handlers, settings cfg.Settings, limiter *middleware.RateLimiter) *gin.Engine {
	gin.SetMode(settings.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if len(settings.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = settings.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.Use(middleware.RequestID())
	router.Use(middleware.AccessLog())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	reminder := router.Group("/")
	if limiter != nil {
		reminder.Use(limiter.Middleware())
	}
	{
		reminder.POST("/send_reminder", handlers.Reminder.SendReminder)
		reminder.GET("/reminders/history", handlers.Reminder.History)

		reminder.POST("/estimate_fee", handlers.Finance.EstimateFee)
		reminder.POST("/predict_budget", handlers.Finance.PredictBudget)
		reminder.GET("/financial_insights", handlers.Finance.FinancialInsights)
	}

	return router
}
