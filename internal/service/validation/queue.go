package validation

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	domainErrors "github.com/reyadahealth/doh-compliance-engine/internal/domain/errors"
	"github.com/reyadahealth/doh-compliance-engine/internal/metrics"
)

// Queue job states.
const (
	QueueStateQueued     = "queued"
	QueueStateProcessing = "processing"
	QueueStateCompleted  = "completed"
	QueueStateFailed     = "failed"
)

// DefaultQueueWait bounds how long Wait polls a queued batch.
const DefaultQueueWait = 5 * time.Minute

// QueueStatus is a point-in-time snapshot of a queued batch.
type QueueStatus struct {
	BatchID    string       `json:"batch_id"`
	State      string       `json:"state"`
	Processed  int          `json:"processed"`
	Succeeded  int          `json:"succeeded"`
	Failed     int          `json:"failed"`
	Total      int          `json:"total"`
	Result     *BatchResult `json:"result,omitempty"`
	EnqueuedAt time.Time    `json:"enqueued_at"`
}

func (s QueueStatus) terminal() bool {
	return s.State == QueueStateCompleted || s.State == QueueStateFailed
}

type queueJob struct {
	status QueueStatus
	items  []BatchItem
}

// BatchQueue runs batches in the background and exposes their status
// for polling. Waiters use a bounded, cancellable poll loop instead of
// a raw recurring timer the caller must remember to clear.
type BatchQueue struct {
	logger       *zap.Logger
	validator    *BatchValidator
	metrics      *metrics.Registry
	pollInterval time.Duration
	maxWait      time.Duration

	mu      sync.RWMutex
	jobs    map[string]*queueJob
	pending int64
}

// NewBatchQueue creates a background batch queue.
func NewBatchQueue(logger *zap.Logger, validator *BatchValidator, registry *metrics.Registry, pollInterval, maxWait time.Duration) *BatchQueue {
	if pollInterval <= 0 {
		pollInterval = time.Second
	}
	if maxWait <= 0 {
		maxWait = DefaultQueueWait
	}
	return &BatchQueue{
		logger:       logger,
		validator:    validator,
		metrics:      registry,
		pollInterval: pollInterval,
		maxWait:      maxWait,
		jobs:         make(map[string]*queueJob),
	}
}

// Enqueue registers a batch for background processing and returns its
// id immediately.
func (q *BatchQueue) Enqueue(ctx context.Context, items []BatchItem) (string, error) {
	if len(items) == 0 {
		return "", domainErrors.NewValidationError("EMPTY_BATCH", "batch must contain at least one item")
	}

	batchID := uuid.NewString()
	job := &queueJob{
		status: QueueStatus{
			BatchID:    batchID,
			State:      QueueStateQueued,
			Total:      len(items),
			EnqueuedAt: time.Now(),
		},
		items: items,
	}

	q.mu.Lock()
	q.jobs[batchID] = job
	q.pending += int64(len(items))
	q.metrics.SetBatchQueueDepth(q.pending)
	q.mu.Unlock()

	go q.process(ctx, batchID)
	return batchID, nil
}

func (q *BatchQueue) process(ctx context.Context, batchID string) {
	q.setState(batchID, QueueStateProcessing)

	q.mu.RLock()
	items := q.jobs[batchID].items
	q.mu.RUnlock()

	result, err := q.validator.ValidateBatch(ctx, items)

	q.mu.Lock()
	defer q.mu.Unlock()
	job, ok := q.jobs[batchID]
	if !ok {
		return
	}
	q.pending -= int64(job.status.Total)
	q.metrics.SetBatchQueueDepth(q.pending)
	if err != nil {
		job.status.State = QueueStateFailed
		q.logger.Error("queued batch failed", zap.String("batch_id", batchID), zap.Error(err))
		return
	}
	job.status.State = QueueStateCompleted
	job.status.Processed = result.TotalItems
	job.status.Succeeded = result.SuccessfulValidations
	job.status.Failed = result.FailedValidations
	job.status.Result = result
}

func (q *BatchQueue) setState(batchID, state string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if job, ok := q.jobs[batchID]; ok {
		job.status.State = state
	}
}

// Status returns the batch snapshot, if known.
func (q *BatchQueue) Status(batchID string) (QueueStatus, bool) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	job, ok := q.jobs[batchID]
	if !ok {
		return QueueStatus{}, false
	}
	return job.status, true
}

// Wait polls the batch until it reaches a terminal state, the context
// is canceled, or the wall-clock bound elapses. The poll ticker always
// stops when Wait returns.
func (q *BatchQueue) Wait(ctx context.Context, batchID string) (QueueStatus, error) {
	status, ok := q.Status(batchID)
	if !ok {
		return QueueStatus{}, domainErrors.NewNotFoundError("batch")
	}
	if status.terminal() {
		return status, nil
	}

	deadline := time.NewTimer(q.maxWait)
	defer deadline.Stop()
	ticker := time.NewTicker(q.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return status, ctx.Err()
		case <-deadline.C:
			return status, domainErrors.NewInternalError("batch did not complete within the wait bound")
		case <-ticker.C:
			status, _ = q.Status(batchID)
			if status.terminal() {
				return status, nil
			}
		}
	}
}
