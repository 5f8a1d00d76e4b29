package validation

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	domainErrors "github.com/reyadahealth/doh-compliance-engine/internal/domain/errors"
	"github.com/reyadahealth/doh-compliance-engine/internal/domain/validation"
	"github.com/reyadahealth/doh-compliance-engine/internal/metrics"
)

// DefaultBatchConcurrency bounds in-flight validations per batch.
const DefaultBatchConcurrency = 5

// BatchItem is one form submission within a batch.
type BatchItem struct {
	ItemID  string  `json:"item_id"`
	Request Request `json:"request"`
}

// BatchItemResult is the outcome of one batch item.
type BatchItemResult struct {
	ItemID  string                       `json:"item_id"`
	Success bool                         `json:"success"`
	Result  *validation.ValidationResult `json:"result,omitempty"`
	Error   string                       `json:"error,omitempty"`
}

// BatchResult summarizes a completed batch.
type BatchResult struct {
	BatchID               string            `json:"batch_id"`
	TotalItems            int               `json:"total_items"`
	SuccessfulValidations int               `json:"successful_validations"`
	FailedValidations     int               `json:"failed_validations"`
	Items                 []BatchItemResult `json:"items"`
	StartedAt             time.Time         `json:"started_at"`
	CompletedAt           time.Time         `json:"completed_at"`
}

// BatchValidator runs batches of validations with bounded concurrency.
type BatchValidator struct {
	logger         *zap.Logger
	engine         *Engine
	metrics        *metrics.Registry
	maxConcurrency int
}

// NewBatchValidator creates a batch validator over the engine.
func NewBatchValidator(logger *zap.Logger, engine *Engine, registry *metrics.Registry, maxConcurrency int) *BatchValidator {
	if maxConcurrency < 1 {
		maxConcurrency = DefaultBatchConcurrency
	}
	return &BatchValidator{
		logger:         logger,
		engine:         engine,
		metrics:        registry,
		maxConcurrency: maxConcurrency,
	}
}

// ValidateBatch processes every item, at most maxConcurrency at a time,
// and returns per-item outcomes in input order. Item failures are
// recorded, not propagated; only an empty batch is an error.
func (b *BatchValidator) ValidateBatch(ctx context.Context, items []BatchItem) (*BatchResult, error) {
	if len(items) == 0 {
		return nil, domainErrors.NewValidationError("EMPTY_BATCH", "batch must contain at least one item")
	}

	result := &BatchResult{
		BatchID:    uuid.NewString(),
		TotalItems: len(items),
		Items:      make([]BatchItemResult, len(items)),
		StartedAt:  time.Now(),
	}

	sem := make(chan struct{}, b.maxConcurrency)
	var wg sync.WaitGroup

	for i, item := range items {
		wg.Add(1)
		go func(idx int, it BatchItem) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			res, err := b.engine.Validate(ctx, it.Request)
			out := BatchItemResult{ItemID: it.ItemID}
			if err != nil {
				out.Error = err.Error()
			} else {
				out.Success = true
				out.Result = res
			}
			result.Items[idx] = out
			b.metrics.RecordBatchItem(ctx, out.Success)
		}(i, item)
	}
	wg.Wait()

	for _, item := range result.Items {
		if item.Success {
			result.SuccessfulValidations++
		} else {
			result.FailedValidations++
		}
	}
	result.CompletedAt = time.Now()

	b.logger.Info("batch validation completed",
		zap.String("batch_id", result.BatchID),
		zap.Int("total", result.TotalItems),
		zap.Int("succeeded", result.SuccessfulValidations),
		zap.Int("failed", result.FailedValidations))

	return result, nil
}
