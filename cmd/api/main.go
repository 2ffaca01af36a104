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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wolfman30/meeting-assistant/internal/api/router"
	"github.com/wolfman30/meeting-assistant/internal/app/bootstrap"
	appconfig "github.com/wolfman30/meeting-assistant/internal/config"
	"github.com/wolfman30/meeting-assistant/internal/dialogue"
	httpmiddleware "github.com/wolfman30/meeting-assistant/internal/http/middleware"
	"github.com/wolfman30/meeting-assistant/internal/meetings"
	"github.com/wolfman30/meeting-assistant/internal/voicechat"
	"github.com/wolfman30/meeting-assistant/pkg/logging"
)

func main() {
	// Local runs read .env; deployed environments set variables directly.
	_ = godotenv.Load()

	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.NewWithOptions(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
	logger.Info("starting meeting-assistant API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	reg, metricsHandler := setupMetrics()

	rt, err := bootstrap.BuildRuntime(context.Background(), cfg, reg, logger)
	if err != nil {
		logger.Error("failed to build dialogue runtime", "error", err)
		os.Exit(1)
	}
	defer rt.Close()

	limiter := httpmiddleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	defer limiter.Close()

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      buildHandler(cfg, rt, metricsHandler, limiter, logger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

// setupMetrics returns a private registry with process and Go runtime
// collectors plus the handler that exposes it.
func setupMetrics() (*prometheus.Registry, http.Handler) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg, promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

func buildHandler(cfg *appconfig.Config, rt *bootstrap.Runtime, metricsHandler http.Handler, limiter *httpmiddleware.RateLimiter, logger *logging.Logger) http.Handler {
	return router.New(&router.Config{
		Logger:             logger,
		DialogueHandler:    dialogue.NewHandler(rt.Engine, logger),
		MeetingsHandler:    meetings.NewHandler(rt.Archive, logger),
		VoiceHandler:       voicechat.NewHandler(rt.Engine, rt.Metrics, logger),
		MetricsHandler:     metricsHandler,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimiter:        limiter,
	})
}
