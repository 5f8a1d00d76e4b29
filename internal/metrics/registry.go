package metrics

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Registry holds the validation-domain metrics for the service
type Registry struct {
	meter metric.Meter

	// Validation metrics
	ValidationDuration     metric.Float64Histogram
	ValidationCounter      metric.Int64Counter
	ValidationFailureCount metric.Int64Counter
	CriticalFindingCounter metric.Int64Counter
	CompliancePassRate     metric.Float64ObservableGauge

	// Cache metrics
	CacheHitCounter  metric.Int64Counter
	CacheMissCounter metric.Int64Counter

	// Batch metrics
	BatchItemCounter metric.Int64Counter
	BatchQueueDepth  metric.Int64ObservableGauge

	// State for observable metrics
	mu              sync.RWMutex
	passRate        float64
	batchQueueDepth int64
}

// NewRegistry creates a metrics registry on the named meter
func NewRegistry(meterName string) (*Registry, error) {
	r := &Registry{meter: otel.Meter(meterName)}

	var err error
	if r.ValidationDuration, err = r.meter.Float64Histogram(
		"compliance.validation.duration",
		metric.WithDescription("Duration of compliance validation runs"),
		metric.WithUnit("ms"),
	); err != nil {
		return nil, err
	}

	if r.ValidationCounter, err = r.meter.Int64Counter(
		"compliance.validation.total",
		metric.WithDescription("Completed compliance validation runs"),
	); err != nil {
		return nil, err
	}

	if r.ValidationFailureCount, err = r.meter.Int64Counter(
		"compliance.validation.failures",
		metric.WithDescription("Validation runs that could not be performed"),
	); err != nil {
		return nil, err
	}

	if r.CriticalFindingCounter, err = r.meter.Int64Counter(
		"compliance.findings.critical",
		metric.WithDescription("Critical findings raised by validation runs"),
	); err != nil {
		return nil, err
	}

	if r.CacheHitCounter, err = r.meter.Int64Counter(
		"compliance.cache.hits",
		metric.WithDescription("Validation result cache hits"),
	); err != nil {
		return nil, err
	}

	if r.CacheMissCounter, err = r.meter.Int64Counter(
		"compliance.cache.misses",
		metric.WithDescription("Validation result cache misses"),
	); err != nil {
		return nil, err
	}

	if r.BatchItemCounter, err = r.meter.Int64Counter(
		"compliance.batch.items",
		metric.WithDescription("Batch validation items processed"),
	); err != nil {
		return nil, err
	}

	if r.CompliancePassRate, err = r.meter.Float64ObservableGauge(
		"compliance.pass_rate",
		metric.WithDescription("Share of recent runs with compliant status"),
		metric.WithFloat64Callback(func(_ context.Context, o metric.Float64Observer) error {
			r.mu.RLock()
			defer r.mu.RUnlock()
			o.Observe(r.passRate)
			return nil
		}),
	); err != nil {
		return nil, err
	}

	if r.BatchQueueDepth, err = r.meter.Int64ObservableGauge(
		"compliance.batch.queue_depth",
		metric.WithDescription("Pending items in the batch validation queue"),
		metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
			r.mu.RLock()
			defer r.mu.RUnlock()
			o.Observe(r.batchQueueDepth)
			return nil
		}),
	); err != nil {
		return nil, err
	}

	return r, nil
}

// RecordValidation records one completed run
func (r *Registry) RecordValidation(ctx context.Context, durationMs float64, status string, criticalFindings int) {
	if r == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("status", status))
	r.ValidationDuration.Record(ctx, durationMs, attrs)
	r.ValidationCounter.Add(ctx, 1, attrs)
	if criticalFindings > 0 {
		r.CriticalFindingCounter.Add(ctx, int64(criticalFindings), attrs)
	}
}

// RecordFailure records a run that could not be performed
func (r *Registry) RecordFailure(ctx context.Context, reason string) {
	if r == nil {
		return
	}
	r.ValidationFailureCount.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

// RecordCacheHit records a result cache hit or miss
func (r *Registry) RecordCacheHit(ctx context.Context, hit bool) {
	if r == nil {
		return
	}
	if hit {
		r.CacheHitCounter.Add(ctx, 1)
	} else {
		r.CacheMissCounter.Add(ctx, 1)
	}
}

// RecordBatchItem records one processed batch item
func (r *Registry) RecordBatchItem(ctx context.Context, success bool) {
	if r == nil {
		return
	}
	r.BatchItemCounter.Add(ctx, 1, metric.WithAttributes(attribute.Bool("success", success)))
}

// SetPassRate updates the observed compliance pass rate
func (r *Registry) SetPassRate(rate float64) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.passRate = rate
	r.mu.Unlock()
}

// SetBatchQueueDepth updates the observed batch queue depth
func (r *Registry) SetBatchQueueDepth(depth int64) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.batchQueueDepth = depth
	r.mu.Unlock()
}
