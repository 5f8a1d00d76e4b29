package validation

import (
	"time"

	"go.uber.org/zap"

	"github.com/reyadahealth/doh-compliance-engine/internal/domain/standards"
	"github.com/reyadahealth/doh-compliance-engine/internal/domain/validation"
)

// Scorer rolls requirement evaluations up into a domain validation:
// score, status, critical findings and domain-level recommendations.
type Scorer struct {
	logger     *zap.Logger
	evaluator  *Evaluator
	thresholds standards.Thresholds
}

// NewScorer creates a domain scorer backed by the given evaluator.
func NewScorer(logger *zap.Logger, evaluator *Evaluator, thresholds standards.Thresholds) *Scorer {
	return &Scorer{
		logger:     logger,
		evaluator:  evaluator,
		thresholds: thresholds,
	}
}

// ScoreDomain evaluates every requirement of a domain in catalog order.
// A failed mandatory requirement raises exactly one critical finding,
// which forces the domain status to non_compliant.
func (s *Scorer) ScoreDomain(domain standards.DomainKey, reqs []standards.Requirement, form validation.FormData, detectedBy string, now time.Time) validation.DomainValidation {
	dv := validation.DomainValidation{
		Domain:           domain,
		DomainName:       domain.DisplayName(),
		MaxScore:         len(reqs) * validation.MaxRequirementScore,
		ValidationChecks: make([]validation.RequirementCheckResult, 0, len(reqs)),
		CriticalFindings: []validation.CriticalFinding{},
		Recommendations:  []string{},
	}

	for _, req := range reqs {
		check := s.evaluator.Evaluate(req, form)
		dv.ValidationChecks = append(dv.ValidationChecks, check)
		dv.Score += check.Score

		if !check.Passed && req.Mandatory {
			dv.CriticalFindings = append(dv.CriticalFindings, validation.NewCriticalFinding(domain, req, detectedBy, now))
		}
	}

	dv.Percentage = validation.Percentage(dv.Score, dv.MaxScore)

	switch {
	case len(dv.CriticalFindings) > 0:
		dv.Status = validation.StatusNonCompliant
	case dv.Percentage < s.thresholds.Satisfactory:
		dv.Status = validation.StatusPartial
	default:
		dv.Status = validation.StatusCompliant
	}

	if dv.Percentage < 90 {
		dv.Recommendations = append(dv.Recommendations, "Improve "+dv.DomainName+" compliance to achieve excellence")
	}
	if len(dv.CriticalFindings) > 0 {
		dv.Recommendations = append(dv.Recommendations, "Address critical findings in "+dv.DomainName+" immediately")
	}

	s.logger.Debug("domain scored",
		zap.String("domain", string(domain)),
		zap.Int("score", dv.Score),
		zap.Int("max_score", dv.MaxScore),
		zap.Int("percentage", dv.Percentage),
		zap.String("status", string(dv.Status)),
		zap.Int("critical_findings", len(dv.CriticalFindings)))

	return dv
}
