package validation

import (
	"context"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	domainErrors "github.com/reyadahealth/doh-compliance-engine/internal/domain/errors"
	"github.com/reyadahealth/doh-compliance-engine/internal/domain/standards"
	"github.com/reyadahealth/doh-compliance-engine/internal/domain/validation"
	"github.com/reyadahealth/doh-compliance-engine/internal/metrics"
)

// Scoring methods for combining domain scores into the overall score.
const (
	ScoringMethodSum             = "sum"
	ScoringMethodWeightedAverage = "weighted_average"
)

// bestPractices are score-independent standing recommendations.
var bestPractices = []string{
	"Maintain continuous compliance monitoring",
	"Schedule regular DOH standards training for all clinical staff",
	"Participate in Jawda quality improvement initiatives",
}

// EngineConfig holds the aggregation engine configuration.
type EngineConfig struct {
	ScoringMethod      string        `json:"scoring_method"`
	StrictUnknownRules bool          `json:"strict_unknown_rules"`
	CacheEnabled       bool          `json:"cache_enabled"`
	HistorySize        int           `json:"history_size"`
	RemoteTimeout      time.Duration `json:"remote_timeout"`
	RoutineInterval    time.Duration `json:"routine_interval"`
	FollowUpInterval   time.Duration `json:"follow_up_interval"`
}

// DefaultEngineConfig returns the reference configuration.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		ScoringMethod:      ScoringMethodSum,
		StrictUnknownRules: false,
		CacheEnabled:       true,
		HistorySize:        DefaultHistorySize,
		RemoteTimeout:      10 * time.Second,
		RoutineInterval:    30 * 24 * time.Hour,
		FollowUpInterval:   7 * 24 * time.Hour,
	}
}

// Engine is the compliance aggregator. It walks every catalog domain in
// order, rolls domain validations up into a ValidationResult, and
// maintains the bounded run history. Each run is independent; only the
// latest-issued run's result is committed to engine state.
type Engine struct {
	logger  *zap.Logger
	catalog *standards.Catalog
	scorer  *Scorer
	cache   ResultCache
	repo    ResultRepository
	remote  RemoteValidator
	metrics *metrics.Registry
	history *History
	config  EngineConfig
	clock   func() time.Time

	// seq numbers every issued run; commitMu serializes history/cache
	// commits so a stale run can never clobber a newer one.
	seq      atomic.Uint64
	commitMu sync.Mutex
	latest   atomic.Pointer[validation.ValidationResult]
}

// EngineOption customizes engine construction.
type EngineOption func(*Engine)

// WithCache attaches a result cache.
func WithCache(c ResultCache) EngineOption { return func(e *Engine) { e.cache = c } }

// WithRepository attaches result persistence.
func WithRepository(r ResultRepository) EngineOption { return func(e *Engine) { e.repo = r } }

// WithRemoteValidator attaches the external validation API client.
func WithRemoteValidator(r RemoteValidator) EngineOption { return func(e *Engine) { e.remote = r } }

// WithMetrics attaches the metrics registry.
func WithMetrics(m *metrics.Registry) EngineOption { return func(e *Engine) { e.metrics = m } }

// WithClock overrides the clock, for deterministic tests.
func WithClock(clock func() time.Time) EngineOption { return func(e *Engine) { e.clock = clock } }

// NewEngine creates the aggregation engine. The catalog may be nil when
// standards have not loaded yet; runs then fail with a distinct
// precondition error until SetCatalog is called.
func NewEngine(logger *zap.Logger, catalog *standards.Catalog, config EngineConfig, opts ...EngineOption) *Engine {
	if config.ScoringMethod == "" {
		config.ScoringMethod = ScoringMethodSum
	}
	e := &Engine{
		logger:  logger,
		catalog: catalog,
		config:  config,
		history: NewHistory(config.HistorySize),
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	thresholds := standards.DefaultThresholds()
	if catalog != nil {
		thresholds = catalog.Thresholds()
	}
	evaluator := NewEvaluator(logger.Named("evaluator"), config.StrictUnknownRules)
	e.scorer = NewScorer(logger.Named("scorer"), evaluator, thresholds)
	return e
}

// SetCatalog replaces the standards catalog on a version bump. The old
// catalog's cached results become unreachable because fingerprints
// embed the version.
func (e *Engine) SetCatalog(catalog *standards.Catalog) {
	e.commitMu.Lock()
	defer e.commitMu.Unlock()
	e.catalog = catalog
	evaluator := NewEvaluator(e.logger.Named("evaluator"), e.config.StrictUnknownRules)
	e.scorer = NewScorer(e.logger.Named("scorer"), evaluator, catalog.Thresholds())
}

// Catalog returns the active standards catalog, or nil before load.
func (e *Engine) Catalog() *standards.Catalog {
	e.commitMu.Lock()
	defer e.commitMu.Unlock()
	return e.catalog
}

// snapshot returns the catalog and scorer as a consistent pair.
// SetCatalog replaces them together; reading them separately could pair
// a new catalog's domains with the old scorer's thresholds.
func (e *Engine) snapshot() (*standards.Catalog, *Scorer) {
	e.commitMu.Lock()
	defer e.commitMu.Unlock()
	return e.catalog, e.scorer
}

// History exposes the bounded run history.
func (e *Engine) History() *History { return e.history }

// LatestResult returns the most recent authoritative result, or nil.
func (e *Engine) LatestResult() *validation.ValidationResult {
	return e.latest.Load()
}

// Validate runs one compliance validation. The caller always receives
// either a complete result or an explicit error; a low score is never
// reported as an error.
func (e *Engine) Validate(ctx context.Context, req Request) (*validation.ValidationResult, error) {
	if req.FormData == nil {
		return nil, domainErrors.ErrMissingFormData
	}
	if req.FormType == "" {
		return nil, domainErrors.ErrMissingFormType
	}

	catalog, scorer := e.snapshot()
	if catalog == nil {
		e.metrics.RecordFailure(ctx, "standards_not_ready")
		return nil, domainErrors.ErrStandardsNotReady
	}

	runID := e.seq.Add(1)
	start := e.clock()
	form := req.FormData.Clone()

	// Cache lookup first: a hit is structurally identical to a fresh
	// computation and is not re-recorded in history.
	var fingerprint string
	if e.cache != nil && e.config.CacheEnabled {
		fingerprint = validation.Fingerprint(form, req.FormType, req.ValidationScope, catalog.Version())
		if cached, ok, err := e.cache.Get(ctx, fingerprint); err != nil {
			e.logger.Warn("result cache lookup failed", zap.Error(err))
		} else if ok {
			e.metrics.RecordCacheHit(ctx, true)
			return cached, nil
		}
		e.metrics.RecordCacheHit(ctx, false)
	}

	result, err := e.compute(ctx, catalog, scorer, req, form)
	if err != nil {
		// Cancellation discards all partial state; nothing was committed.
		e.metrics.RecordFailure(ctx, "canceled")
		return nil, err
	}

	e.commit(ctx, runID, fingerprint, result)
	e.metrics.RecordValidation(ctx, float64(e.clock().Sub(start).Milliseconds()), string(result.OverallStatus), len(result.CriticalFindings))
	e.metrics.SetPassRate(e.history.PassRate())

	e.logger.Info("compliance validation completed",
		zap.String("validation_id", result.ValidationID),
		zap.String("form_type", req.FormType),
		zap.String("status", string(result.OverallStatus)),
		zap.Int("percentage", result.ComplianceScore.Percentage),
		zap.Int("critical_findings", len(result.CriticalFindings)),
		zap.Uint64("run_id", runID))

	return result, nil
}

// compute performs the validation, remote-first with lossless local
// fallback: the remote service runs the same algorithm, so a failure
// degrades nothing but latency.
func (e *Engine) compute(ctx context.Context, catalog *standards.Catalog, scorer *Scorer, req Request, form validation.FormData) (*validation.ValidationResult, error) {
	if e.remote != nil {
		remoteCtx, cancel := context.WithTimeout(ctx, e.config.RemoteTimeout)
		result, err := e.remote.Validate(remoteCtx, req)
		cancel()
		if err == nil && result != nil {
			return result, nil
		}
		e.logger.Warn("remote validation failed, falling back to local engine", zap.Error(err))
	}
	return e.computeLocal(ctx, catalog, scorer, req, form)
}

func (e *Engine) computeLocal(ctx context.Context, catalog *standards.Catalog, scorer *Scorer, req Request, form validation.FormData) (*validation.ValidationResult, error) {
	now := e.clock()
	result := &validation.ValidationResult{
		ValidationID:      uuid.NewString(),
		ValidationType:    req.ValidationType,
		ValidationScope:   req.ValidationScope,
		ValidationDate:    now,
		ValidatedBy:       req.ValidatedBy,
		ValidatorRole:     req.ValidatorRole,
		DomainValidations: make([]validation.DomainValidation, 0, len(catalog.Domains())),
		Errors:            []string{},
		Warnings:          []string{},
		CriticalFindings:  []validation.CriticalFinding{},
		ActionItems:       []validation.CorrectiveAction{},
		CreatedAt:         now,
	}

	totalScore, maxTotalScore := 0, 0
	hasErrors := false

	for _, ds := range catalog.Domains() {
		// A canceled run is abandoned whole; no partial result escapes.
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		dv := scorer.ScoreDomain(ds.Key, ds.Requirements, form, req.ValidatedBy, now)
		result.DomainValidations = append(result.DomainValidations, dv)
		totalScore += dv.Score
		maxTotalScore += dv.MaxScore
		result.CriticalFindings = append(result.CriticalFindings, dv.CriticalFindings...)
		for _, f := range dv.CriticalFindings {
			result.ActionItems = append(result.ActionItems, f.CorrectiveActions...)
		}
		switch dv.Status {
		case validation.StatusNonCompliant:
			hasErrors = true
			result.Errors = append(result.Errors, dv.DomainName+" is non-compliant")
		case validation.StatusPartial:
			result.Warnings = append(result.Warnings, dv.DomainName+" compliance is partial")
		}
	}

	percentage := e.overallPercentage(catalog, result.DomainValidations, totalScore, maxTotalScore)
	result.ComplianceScore = validation.ComplianceScore{
		Total:      totalScore,
		MaxTotal:   maxTotalScore,
		Percentage: percentage,
		Grade:      validation.GradeFor(percentage),
	}
	result.OverallStatus = validation.OverallStatusFor(percentage, len(result.CriticalFindings) > 0, hasErrors, catalog.Thresholds())
	result.Recommendations = e.deriveRecommendations(result.DomainValidations, percentage)
	result.NextValidation = e.scheduleNext(req, len(result.CriticalFindings) > 0, now)
	result.AuditTrail = []validation.AuditEntry{
		{
			Action:      "validation_completed",
			PerformedBy: req.ValidatedBy,
			Timestamp:   now,
			Details:     "Validated " + req.FormType + " against catalog version " + catalog.Version(),
		},
	}
	result.CompletedAt = e.clock()

	return result, nil
}

// overallPercentage applies the configured scoring method. The raw
// score sums are reported either way; only the percentage (and thus
// grade and status) differ under weighted_average.
func (e *Engine) overallPercentage(catalog *standards.Catalog, domains []validation.DomainValidation, total, maxTotal int) int {
	if e.config.ScoringMethod == ScoringMethodWeightedAverage {
		weighted := 0.0
		for _, dv := range domains {
			weighted += catalog.Weight(dv.Domain) * float64(dv.Percentage)
		}
		return int(math.Round(weighted))
	}
	return validation.Percentage(total, maxTotal)
}

func (e *Engine) deriveRecommendations(domains []validation.DomainValidation, percentage int) validation.Recommendations {
	recs := validation.Recommendations{
		Immediate:     []string{},
		ShortTerm:     []string{},
		LongTerm:      []string{},
		BestPractices: append([]string{}, bestPractices...),
	}

	for _, dv := range domains {
		if len(dv.CriticalFindings) > 0 {
			recs.Immediate = append(recs.Immediate, "Address critical findings in "+dv.DomainName)
		}
		switch {
		case dv.Percentage < 60:
			recs.Immediate = append(recs.Immediate, "Urgent improvement needed in "+dv.DomainName)
		case dv.Percentage < 80:
			recs.ShortTerm = append(recs.ShortTerm, "Enhance "+dv.DomainName+" compliance")
		}
	}

	if percentage < 75 {
		recs.Immediate = append(recs.Immediate, "Implement comprehensive compliance improvement plan")
		recs.ShortTerm = append(recs.ShortTerm, "Conduct staff training on DOH standards")
	}

	recs.LongTerm = append(recs.LongTerm, "Establish sustainable compliance management processes")

	return recs
}

func (e *Engine) scheduleNext(req Request, hasCriticalFindings bool, now time.Time) validation.NextValidation {
	interval := e.config.RoutineInterval
	nextType := "routine"
	if hasCriticalFindings {
		interval = e.config.FollowUpInterval
		nextType = "follow_up"
	}
	return validation.NextValidation{
		ScheduledDate: now.Add(interval),
		Type:          nextType,
		Scope:         req.ValidationScope,
	}
}

// commit records a completed run in history, cache and repository.
// Runs that are no longer the latest issued are dropped: an older, slow
// run must never overwrite a newer result.
func (e *Engine) commit(ctx context.Context, runID uint64, fingerprint string, result *validation.ValidationResult) {
	e.commitMu.Lock()
	defer e.commitMu.Unlock()

	if runID != e.seq.Load() {
		e.logger.Debug("dropping superseded validation run",
			zap.Uint64("run_id", runID),
			zap.Uint64("latest_issued", e.seq.Load()))
		return
	}

	e.history.Add(result)
	e.latest.Store(result)

	if e.cache != nil && e.config.CacheEnabled && fingerprint != "" {
		if err := e.cache.Put(ctx, fingerprint, result); err != nil {
			e.logger.Warn("result cache write failed", zap.Error(err))
		}
	}
	if e.repo != nil {
		if err := e.repo.SaveResult(ctx, result); err != nil {
			e.logger.Warn("result persistence failed",
				zap.String("validation_id", result.ValidationID),
				zap.Error(err))
		}
	}
}
