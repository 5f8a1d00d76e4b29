package validation

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/reyadahealth/doh-compliance-engine/internal/domain/validation"
)

// DefaultDebounce coalesces rapid form edits into one validation run.
const DefaultDebounce = time.Second

// ResultFunc receives completed runs from the scheduler. A nil result
// with a non-nil error means the run could not be performed at all.
type ResultFunc func(result *validation.ValidationResult, err error)

// Scheduler debounces real-time re-validation requests. Each Submit
// replaces any pending run; only the newest snapshot is validated. A
// rate limiter caps sustained validation frequency independent of the
// debounce window.
type Scheduler struct {
	logger   *zap.Logger
	engine   *Engine
	debounce time.Duration
	limiter  *rate.Limiter
	onResult ResultFunc

	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
}

// NewScheduler creates a debounced re-validation scheduler.
func NewScheduler(logger *zap.Logger, engine *Engine, debounce time.Duration, onResult ResultFunc) *Scheduler {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Scheduler{
		logger:   logger,
		engine:   engine,
		debounce: debounce,
		limiter:  rate.NewLimiter(rate.Every(debounce), 1),
		onResult: onResult,
	}
}

// Submit schedules a validation of the given snapshot after the
// debounce window, canceling any previously pending run. The request's
// form data is an immutable snapshot; the scheduler never reads live
// form state.
func (s *Scheduler) Submit(ctx context.Context, req Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	snapshot := req
	snapshot.FormData = req.FormData.Clone()
	s.timer = time.AfterFunc(s.debounce, func() {
		s.run(ctx, snapshot)
	})
}

func (s *Scheduler) run(ctx context.Context, req Request) {
	if err := s.limiter.Wait(ctx); err != nil {
		return
	}
	result, err := s.engine.Validate(ctx, req)
	if err != nil {
		s.logger.Warn("scheduled validation failed", zap.Error(err))
	}
	if s.onResult != nil {
		s.onResult(result, err)
	}
}

// Stop cancels any pending run. Further submissions are ignored.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
