package validation

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	domainErrors "github.com/reyadahealth/doh-compliance-engine/internal/domain/errors"
	"github.com/reyadahealth/doh-compliance-engine/internal/domain/standards"
	"github.com/reyadahealth/doh-compliance-engine/internal/domain/validation"
)

// DomainBreakdown is one row of a report's per-domain table.
type DomainBreakdown struct {
	Domain           standards.DomainKey `json:"domain"`
	DomainName       string              `json:"domain_name"`
	Percentage       int                 `json:"percentage"`
	Status           validation.Status   `json:"status"`
	CriticalFindings int                 `json:"critical_findings"`
}

// ComplianceReport is the regulator-facing summary of one run.
type ComplianceReport struct {
	ReportID        string                       `json:"report_id"`
	ValidationID    string                       `json:"validation_id"`
	GeneratedAt     time.Time                    `json:"generated_at"`
	GeneratedBy     string                       `json:"generated_by"`
	OverallStatus   validation.Status            `json:"overall_status"`
	Score           validation.ComplianceScore   `json:"score"`
	Domains         []DomainBreakdown            `json:"domains"`
	Findings        []validation.CriticalFinding `json:"findings"`
	Recommendations validation.Recommendations   `json:"recommendations"`
	NextValidation  validation.NextValidation    `json:"next_validation"`
}

// ComplianceAnalytics aggregates persisted runs over a time window.
type ComplianceAnalytics struct {
	Scope              string                      `json:"scope"`
	WindowStart        time.Time                   `json:"window_start"`
	WindowEnd          time.Time                   `json:"window_end"`
	RunCount           int                         `json:"run_count"`
	AverageScore       float64                     `json:"average_score"`
	StatusDistribution map[validation.Status]int   `json:"status_distribution"`
	FindingsByDomain   map[standards.DomainKey]int `json:"findings_by_domain"`
	Trend              Trend                       `json:"trend"`
}

// Reporter assembles compliance reports and analytics from completed
// runs. Generated reports are retained in memory for retrieval by id.
type Reporter struct {
	logger  *zap.Logger
	engine  *Engine
	repo    ResultRepository
	mu      sync.RWMutex
	reports map[string]*ComplianceReport
}

// NewReporter creates a reporter. The repository is optional; without
// it, analytics fall back to the engine's in-memory history.
func NewReporter(logger *zap.Logger, engine *Engine, repo ResultRepository) *Reporter {
	return &Reporter{
		logger:  logger,
		engine:  engine,
		repo:    repo,
		reports: make(map[string]*ComplianceReport),
	}
}

// GenerateReport builds a report from an existing validation result.
// An empty validationID reports on the latest authoritative run.
func (r *Reporter) GenerateReport(ctx context.Context, validationID, generatedBy string) (*ComplianceReport, error) {
	result, err := r.lookupResult(ctx, validationID)
	if err != nil {
		return nil, err
	}

	report := &ComplianceReport{
		ReportID:        uuid.NewString(),
		ValidationID:    result.ValidationID,
		GeneratedAt:     time.Now(),
		GeneratedBy:     generatedBy,
		OverallStatus:   result.OverallStatus,
		Score:           result.ComplianceScore,
		Domains:         make([]DomainBreakdown, 0, len(result.DomainValidations)),
		Findings:        result.CriticalFindings,
		Recommendations: result.Recommendations,
		NextValidation:  result.NextValidation,
	}
	for _, dv := range result.DomainValidations {
		report.Domains = append(report.Domains, DomainBreakdown{
			Domain:           dv.Domain,
			DomainName:       dv.DomainName,
			Percentage:       dv.Percentage,
			Status:           dv.Status,
			CriticalFindings: len(dv.CriticalFindings),
		})
	}

	r.mu.Lock()
	r.reports[report.ReportID] = report
	r.mu.Unlock()

	r.logger.Info("compliance report generated",
		zap.String("report_id", report.ReportID),
		zap.String("validation_id", result.ValidationID))

	return report, nil
}

// GetReport retrieves a previously generated report.
func (r *Reporter) GetReport(reportID string) (*ComplianceReport, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	report, ok := r.reports[reportID]
	return report, ok
}

// Analytics aggregates runs for a scope over the given window.
func (r *Reporter) Analytics(ctx context.Context, scope string, since time.Time) (*ComplianceAnalytics, error) {
	results, err := r.recentResults(ctx, scope, since)
	if err != nil {
		return nil, err
	}

	analytics := &ComplianceAnalytics{
		Scope:              scope,
		WindowStart:        since,
		WindowEnd:          time.Now(),
		RunCount:           len(results),
		StatusDistribution: make(map[validation.Status]int),
		FindingsByDomain:   make(map[standards.DomainKey]int),
		Trend:              r.engine.History().Trend(),
	}

	sum := 0
	for _, res := range results {
		sum += res.ComplianceScore.Percentage
		analytics.StatusDistribution[res.OverallStatus]++
		for _, f := range res.CriticalFindings {
			analytics.FindingsByDomain[f.Domain]++
		}
	}
	if len(results) > 0 {
		analytics.AverageScore = float64(sum) / float64(len(results))
	}

	return analytics, nil
}

func (r *Reporter) lookupResult(ctx context.Context, validationID string) (*validation.ValidationResult, error) {
	if validationID == "" {
		if latest := r.engine.LatestResult(); latest != nil {
			return latest, nil
		}
		return nil, domainErrors.ErrResultNotFound
	}
	for _, res := range r.engine.History().Recent() {
		if res.ValidationID == validationID {
			return res, nil
		}
	}
	if r.repo != nil {
		return r.repo.GetResult(ctx, validationID)
	}
	return nil, domainErrors.ErrResultNotFound
}

func (r *Reporter) recentResults(ctx context.Context, scope string, since time.Time) ([]*validation.ValidationResult, error) {
	if r.repo != nil {
		results, err := r.repo.ListRecent(ctx, scope, since, 100)
		if err == nil {
			return results, nil
		}
		r.logger.Warn("analytics repository query failed, using in-memory history", zap.Error(err))
	}
	var out []*validation.ValidationResult
	for _, res := range r.engine.History().Recent() {
		if scope != "" && res.ValidationScope != scope {
			continue
		}
		if res.ValidationDate.Before(since) {
			continue
		}
		out = append(out, res)
	}
	return out, nil
}
