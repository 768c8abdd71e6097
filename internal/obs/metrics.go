package obs

import (
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
)

// Metrics tracks application metrics using atomic counters.
type Metrics struct {
	sessionsStarted    atomic.Int64
	bookingsConfirmed  atomic.Int64
	validationFailures atomic.Int64
	catalogErrors      atomic.Int64
	logger             *slog.Logger
}

// NewMetrics creates a new Metrics instance.
func NewMetrics(logger *slog.Logger) *Metrics {
	return &Metrics{
		logger: logger,
	}
}

// IncSessionsStarted increments the booking sessions counter.
func (m *Metrics) IncSessionsStarted() {
	m.sessionsStarted.Add(1)
}

// IncBookingsConfirmed increments the confirmed bookings counter.
func (m *Metrics) IncBookingsConfirmed() {
	m.bookingsConfirmed.Add(1)
}

// IncValidationFailures increments the submission validation failures counter.
func (m *Metrics) IncValidationFailures() {
	m.validationFailures.Add(1)
}

// IncCatalogErrors increments the catalog fetch errors counter.
func (m *Metrics) IncCatalogErrors() {
	m.catalogErrors.Add(1)
}

// Snapshot returns current metric values.
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		SessionsStarted:    m.sessionsStarted.Load(),
		BookingsConfirmed:  m.bookingsConfirmed.Load(),
		ValidationFailures: m.validationFailures.Load(),
		CatalogErrors:      m.catalogErrors.Load(),
	}
}

// MetricsSnapshot represents a point-in-time snapshot of metrics.
type MetricsSnapshot struct {
	SessionsStarted    int64
	BookingsConfirmed  int64
	ValidationFailures int64
	CatalogErrors      int64
}

// HealthHandler returns a handler for /healthz requests.
func HealthHandler(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			logger.Error("failed to write health response", "error", err)
		}
	}
}

// MetricsHandler returns a handler for /metrics requests in Prometheus format.
func (m *Metrics) MetricsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snapshot := m.Snapshot()

		counters := []struct {
			name  string
			help  string
			value int64
		}{
			{"booking_sessions_started_total", "Total number of booking sessions started", snapshot.SessionsStarted},
			{"bookings_confirmed_total", "Total number of confirmed bookings", snapshot.BookingsConfirmed},
			{"booking_validation_failures_total", "Total number of submission validation failures", snapshot.ValidationFailures},
			{"catalog_errors_total", "Total number of catalog fetch errors", snapshot.CatalogErrors},
		}

		w.Header().Set("Content-Type", "text/plain; version=0.0.4")
		w.WriteHeader(http.StatusOK)

		for _, c := range counters {
			if _, err := fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s counter\n%s %d\n", c.name, c.help, c.name, c.name, c.value); err != nil {
				m.logger.Error("failed to write metrics", "error", err)
				return
			}
		}
	}
}
