package app

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alex-user-go/treks/internal/auth"
	"github.com/alex-user-go/treks/internal/booking"
	"github.com/alex-user-go/treks/internal/catalog"
	"github.com/alex-user-go/treks/internal/config"
	"github.com/alex-user-go/treks/internal/handler"
	"github.com/alex-user-go/treks/internal/middleware"
	"github.com/alex-user-go/treks/internal/obs"
	"github.com/alex-user-go/treks/internal/ratelimit"
	"github.com/alex-user-go/treks/internal/storage/sqlite"
)

// Run initializes and runs the application.
func Run() error {
	// Initialize logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Initialize metrics
	metrics := obs.NewMetrics(logger)

	// Open storage (bookings, and the package catalog unless an upstream
	// catalog URL is configured)
	store, err := sqlite.Open(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer func() {
		_ = store.Close()
	}()

	var source catalog.Source = store
	if cfg.CatalogURL != "" {
		source = catalog.NewHTTPSource("upstream", cfg.CatalogURL, cfg.CatalogTimeout)
		logger.Info("using upstream catalog", "url", cfg.CatalogURL)
	}
	catalogService := catalog.NewService(source, logger)

	// Initialize booking session registry
	sessions := booking.NewRegistry(cfg.SessionTTL)
	defer sessions.Close()

	// Initialize rate limiter for session creation
	limiter := ratelimit.New(cfg.RateLimit, cfg.RateWindow)
	defer limiter.Close()

	// Token auth (disabled when no secret is configured)
	tokens := auth.NewManager(cfg.AuthSecret, cfg.TokenTTL)
	if tokens.Enabled() {
		logger.Info("token authentication enabled")
	}

	// Initialize handler and routes
	h := handler.New(catalogService, sessions, store, tokens, limiter, metrics, logger)

	mux := http.NewServeMux()
	h.Register(mux)
	mux.HandleFunc("GET /healthz", obs.HealthHandler(logger))
	mux.HandleFunc("GET /metrics", metrics.MetricsHandler())

	// Wrap with middleware
	wrappedHandler := middleware.Logging(logger)(mux)

	// Configure server
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      wrappedHandler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("starting server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// Graceful shutdown
	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
		return err
	}

	logger.Info("server stopped")
	return nil
}
