// Command catalog runs a standalone mock upstream catalog server for local
// development of the booking service's HTTP catalog source.
package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/alex-user-go/treks/internal/catalog"
)

var fixtures = []catalog.Package{
	{
		ID:          "ebc-14",
		Title:       "Everest Base Camp Trek",
		Price:       1400,
		Duration:    14,
		Altitude:    5364,
		Difficulty:  catalog.DifficultyTough,
		Description: "Classic route through Namche Bazaar and Kala Patthar to Everest Base Camp.",
	},
	{
		ID:          "abc-10",
		Title:       "Annapurna Base Camp Trek",
		Price:       900,
		Duration:    10,
		Altitude:    4130,
		Difficulty:  catalog.DifficultyMedium,
		Description: "Sanctuary trek through Gurung villages and rhododendron forest.",
	},
	{
		ID:          "act-17",
		Title:       "Annapurna Circuit Trek",
		Price:       1250,
		Duration:    17,
		Altitude:    5416,
		Difficulty:  catalog.DifficultyTough,
		Description: "Full circuit crossing the Thorong La pass.",
	},
	{
		ID:          "ghor-5",
		Title:       "Ghorepani Poon Hill Trek",
		Price:       450,
		Duration:    5,
		Altitude:    3210,
		Difficulty:  catalog.DifficultyEasy,
		Description: "Short lodge trek with sunrise views over the Annapurna range.",
	},
	{
		ID:          "mana-18",
		Title:       "Manaslu Circuit Trek",
		Price:       1600,
		Duration:    18,
		Altitude:    5106,
		Difficulty:  catalog.DifficultyVeryTough,
		Description: "Restricted-area circuit around the eighth highest mountain.",
	},
}

// mockCatalog serves the fixture packages with optional simulated latency
// and failures.
type mockCatalog struct {
	rng      *rand.Rand
	latency  time.Duration
	failRate float64
	logger   *slog.Logger
}

func (m *mockCatalog) simulate(w http.ResponseWriter) bool {
	if m.latency > 0 {
		time.Sleep(m.latency)
	}
	if m.failRate > 0 && m.rng.Float64() < m.failRate {
		http.Error(w, "catalog unavailable", http.StatusServiceUnavailable)
		return false
	}
	return true
}

func (m *mockCatalog) list(w http.ResponseWriter, r *http.Request) {
	if !m.simulate(w) {
		return
	}
	writeJSON(w, m.logger, fixtures)
}

func (m *mockCatalog) get(w http.ResponseWriter, r *http.Request) {
	if !m.simulate(w) {
		return
	}
	id := r.PathValue("id")
	for _, pkg := range fixtures {
		if pkg.ID == id {
			writeJSON(w, m.logger, pkg)
			return
		}
	}
	http.Error(w, "package not found", http.StatusNotFound)
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, body any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}

func main() {
	port := getEnv("PORT", "9001")
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	latencyMs, _ := strconv.Atoi(getEnv("CATALOG_LATENCY_MS", "0"))
	failRate, _ := strconv.ParseFloat(getEnv("CATALOG_FAIL_RATE", "0"), 64)

	mock := &mockCatalog{
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		latency:  time.Duration(latencyMs) * time.Millisecond,
		failRate: failRate,
		logger:   logger,
	}

	// Setup routes
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/packages", mock.list)
	mux.HandleFunc("GET /api/packages/{id}", mock.get)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			logger.Error("failed to write healthz response", "error", err)
		}
	})

	// Configure server
	addr := ":" + port
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("mock catalog listening", "addr", addr, "latency_ms", latencyMs, "fail_rate", failRate)
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
		os.Exit(1)
	}

	logger.Info("server stopped")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
