package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"feewatch/internal/cfg"
	"feewatch/internal/handler"
	"feewatch/internal/logger"
	"feewatch/internal/metrics"
	"feewatch/internal/middleware"
	"feewatch/internal/ml"
	"feewatch/internal/notify"
	"feewatch/internal/router"
	"feewatch/internal/storage"
	"feewatch/internal/validator"
)

func main() {
	_ = godotenv.Load() // .env is optional

	settings, err := cfg.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	logger.Setup(settings.LogLevel, settings.LogFormat)
	log.Info().
		Int("port", settings.ServerPort).
		Str("model_path", settings.ModelPath).
		Msg("starting feewatch")

	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := metrics.New()

	// All three model artifacts load together or not at all; a partial
	// bundle must never serve requests.
	bundle, err := ml.LoadBundle(settings.ModelPath)
	if err != nil {
		log.Fatal().Err(err).Msg("model artifacts unavailable")
	}
	engine := ml.NewEngine(bundle, m)

	store := initializeStorage(settings)
	if store != nil {
		defer store.Close()
	}

	provider := notify.NewTwilio(
		settings.TwilioAccountSID,
		settings.TwilioAuthToken,
		settings.WhatsAppFrom,
		settings.ProviderBaseURL,
		settings.DispatchTimeout,
	)
	dispatcher := notify.NewDispatcher(provider, settings.DefaultRecipient, settings.DispatchTimeout, m)

	limiter := middleware.NewRateLimiter(settings.RateLimit, settings.RateLimitWindow)
	defer limiter.Stop()

	handlers := &router.Handlers{
		Reminder: handler.NewReminderHandler(engine, dispatcher, store, m),
		Finance:  handler.NewFinanceHandler(),
	}

	startMetricsServer(ctx, settings)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", settings.ServerPort),
		Handler:           router.Setup(handlers, settings, limiter),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	waitForShutdown(srv, cancel)
}

// initializeStorage opens the dispatch audit log if DATA_PATH is
// configured; the service runs without persistence otherwise.
func initializeStorage(settings cfg.Settings) *storage.Store {
	if settings.DataPath == "" {
		return nil
	}
	store, err := storage.New(settings.DataPath)
	if err != nil {
		log.Warn().Err(err).Msg("audit storage initialization failed, continuing without persistence")
		return nil
	}
	return store
}

// startMetricsServer serves Prometheus metrics and a liveness probe on
// the dedicated metrics port.
func startMetricsServer(ctx context.Context, settings cfg.Settings) {
	go func() {
		mux := http.NewServeMux()
		mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("OK"))
		})
		mux.Handle("/metrics", promhttp.Handler())

		server := &http.Server{
			Addr:              fmt.Sprintf(":%d", settings.MetricsPort),
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			<-ctx.Done()
			if err := server.Shutdown(context.Background()); err != nil {
				log.Error().Err(err).Msg("failed to shutdown metrics server")
			}
		}()

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()
}

func waitForShutdown(srv *http.Server, cancel context.CancelFunc) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("shutting down gracefully...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
	}

	log.Info().Msg("shutdown complete")
}
