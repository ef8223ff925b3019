package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CatalogMetrics records catalog mutation outcomes and variant sync failures.
type CatalogMetrics struct {
	duration     *prometheus.HistogramVec
	success      *prometheus.CounterVec
	failure      *prometheus.CounterVec
	syncFailures *prometheus.CounterVec
}

// NewCatalogMetrics registers the catalog metrics on the provided registerer.
func NewCatalogMetrics(reg prometheus.Registerer) *CatalogMetrics {
	if reg == nil {
		return &CatalogMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "catalog_mutation_duration_seconds",
		Help:    "Duration of catalog mutations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_mutation_success",
		Help: "Successful catalog mutations.",
	}, []string{"operation"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_mutation_failure",
		Help: "Failed catalog mutations.",
	}, []string{"operation"})
	syncFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_variant_sync_failure",
		Help: "Variant reconciliation failures by sync step.",
	}, []string{"step"})
	reg.MustRegister(duration, success, failure, syncFailures)
	return &CatalogMetrics{
		duration:     duration,
		success:      success,
		failure:      failure,
		syncFailures: syncFailures,
	}
}

// ObserveDuration records the duration for the named mutation.
func (c *CatalogMetrics) ObserveDuration(operation string, duration time.Duration) {
	if c == nil || c.duration == nil {
		return
	}
	c.duration.WithLabelValues(normalizeLabel(operation)).Observe(duration.Seconds())
}

// IncSuccess increments the success counter for the named mutation.
func (c *CatalogMetrics) IncSuccess(operation string) {
	if c == nil || c.success == nil {
		return
	}
	c.success.WithLabelValues(normalizeLabel(operation)).Inc()
}

// IncFailure increments the failure counter for the named mutation.
func (c *CatalogMetrics) IncFailure(operation string) {
	if c == nil || c.failure == nil {
		return
	}
	c.failure.WithLabelValues(normalizeLabel(operation)).Inc()
}

// IncSyncFailure increments the variant sync failure counter for a step.
func (c *CatalogMetrics) IncSyncFailure(step string) {
	if c == nil || c.syncFailures == nil {
		return
	}
	c.syncFailures.WithLabelValues(normalizeLabel(step)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
