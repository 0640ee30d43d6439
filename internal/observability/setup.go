package observability

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"

	"github.com/iamwavecut/guardbot/internal/config"
)

var (
	// Global logger instance
	Logger *zap.Logger

	// Metrics
	violationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "violations_total",
			Help: "Total number of content violations detected",
		},
		[]string{"severity"},
	)

	punishmentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "punishments_total",
			Help: "Total number of punishments issued",
		},
		[]string{"kind"},
	)

	reportsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "reports_total",
			Help: "Total number of member reports submitted",
		},
	)

	floodTriggersTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "flood_triggers_total",
			Help: "Total number of flood limit triggers",
		},
	)

	updateProcessingDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "update_processing_duration_seconds",
			Help:    "Time spent processing updates",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"status"},
	)
)

func Init(ctx context.Context) error {
	// Initialize logger
	var err error
	Logger, err = zap.NewProduction()
	if err != nil {
		return err
	}

	// Register metrics
	prometheus.MustRegister(violationsTotal)
	prometheus.MustRegister(punishmentsTotal)
	prometheus.MustRegister(reportsTotal)
	prometheus.MustRegister(floodTriggersTotal)
	prometheus.MustRegister(updateProcessingDuration)

	// Setup OpenTelemetry (simplified setup)
	tp := trace.NewTracerProvider()
	otel.SetTracerProvider(tp)

	// Start Prometheus metrics endpoint
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
		})
		addr := fmt.Sprintf(":%d", config.Get().MetricsPort)
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.WithError(err).Error("metrics server failed")
		}
	}()

	return nil
}

// RecordViolation records a detected content violation
func RecordViolation(severity string) {
	violationsTotal.WithLabelValues(severity).Inc()
}

// RecordPunishment records an issued mute or ban
func RecordPunishment(kind string) {
	punishmentsTotal.WithLabelValues(kind).Inc()
}

// RecordReport records a submitted member report
func RecordReport() {
	reportsTotal.Inc()
}

// RecordFloodTrigger records a crossed flood limit
func RecordFloodTrigger() {
	floodTriggersTotal.Inc()
}

// StartUpdateProcessing returns a function that records the elapsed update
// processing time under the outcome status it is called with.
func StartUpdateProcessing() func(status string) {
	start := time.Now()
	return func(status string) {
		updateProcessingDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())
	}
}
