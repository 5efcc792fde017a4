// Package telemetry emits the per-request observability signals: a timer per
// dispatched request, the RDK-friendly terminal record, Prometheus series,
// and trace spans.
package telemetry

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/fireboltd/fireboltd/pkg/logging"
)

var (
	// RequestsTotal counts terminal request outcomes by method and code.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fireboltd_requests_total",
			Help: "Total number of gateway requests by terminal code",
		},
		[]string{"method", "app", "code"},
	)

	// RequestDuration tracks request latency from dispatch to terminal
	// outcome.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fireboltd_request_duration_seconds",
			Help:    "Gateway request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	// ActiveSessions tracks currently registered sessions.
	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fireboltd_active_sessions",
			Help: "Number of registered gateway sessions",
		},
	)
)

// Tracer returns the gateway tracer. Spans are cheap no-ops until the daemon
// installs a provider.
func Tracer() trace.Tracer {
	return otel.Tracer("github.com/fireboltd/fireboltd/pkg/gateway")
}

// Timer measures one request from dispatch to terminal outcome, keyed on
// (method, app).
type Timer struct {
	Method string
	AppID  string
	start  time.Time
}

// Service emits telemetry records. The zero service logs nowhere; the daemon
// wires a logger at boot.
type Service struct {
	logger *slog.Logger
}

// NewService creates a telemetry service.
func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &Service{logger: logger}
}

// StartTimer begins a request timer.
func (s *Service) StartTimer(method, appID string) *Timer {
	return &Timer{Method: method, AppID: appID, start: time.Now()}
}

// StopTimer finishes a timer with the terminal code and records the
// Prometheus series for the request.
func (s *Service) StopTimer(t *Timer, code int) {
	if t == nil {
		return
	}
	elapsed := time.Since(t.start)
	RequestsTotal.WithLabelValues(t.Method, t.AppID, strconv.Itoa(code)).Inc()
	RequestDuration.WithLabelValues(t.Method).Observe(elapsed.Seconds())
	s.logger.Debug("request timer stopped",
		"method", t.Method, "app", t.AppID, "code", code, "elapsed", elapsed)
}

// LogRDKRecord logs a terminal request outcome in the RDKTelemetry 1.0
// friendly shape consumed by the platform log scraper.
func (s *Service) LogRDKRecord(appID, method string, code int, latency time.Duration) {
	s.logger.Info("firebolt_rpc",
		"app_id", appID,
		"method", method,
		"code", code,
		"latency_ms", latency.Milliseconds(),
	)
}
