package validation

import (
	"math"
	"time"

	"github.com/reyadahealth/doh-compliance-engine/internal/domain/standards"
)

// MaxRequirementScore is the score a requirement contributes when all of
// its rules pass. Scoring is all-or-nothing per requirement.
const MaxRequirementScore = 20

// Status classifies a domain or overall compliance outcome.
type Status string

const (
	StatusCompliant     Status = "compliant"
	StatusPartial       Status = "partial"
	StatusNonCompliant  Status = "non_compliant"
	StatusNotApplicable Status = "not_applicable"
)

// RequirementCheckResult is the outcome of evaluating one requirement.
type RequirementCheckResult struct {
	RequirementID   string   `json:"requirement_id"`
	Passed          bool     `json:"passed"`
	Score           int      `json:"score"`
	MaxScore        int      `json:"max_score"`
	Evidence        []string `json:"evidence"`
	Recommendations []string `json:"recommendations"`
}

// DomainValidation aggregates requirement checks for one domain.
type DomainValidation struct {
	Domain           standards.DomainKey      `json:"domain"`
	DomainName       string                   `json:"domain_name"`
	Score            int                      `json:"score"`
	MaxScore         int                      `json:"max_score"`
	Percentage       int                      `json:"percentage"`
	Status           Status                   `json:"status"`
	ValidationChecks []RequirementCheckResult `json:"validation_checks"`
	CriticalFindings []CriticalFinding        `json:"critical_findings"`
	Recommendations  []string                 `json:"recommendations"`
}

// ComplianceScore is the overall scoring block of a validation result.
type ComplianceScore struct {
	Total      int    `json:"total"`
	MaxTotal   int    `json:"max_total"`
	Percentage int    `json:"percentage"`
	Grade      string `json:"grade"`
}

// Recommendations groups derived recommendations by urgency horizon.
type Recommendations struct {
	Immediate     []string `json:"immediate"`
	ShortTerm     []string `json:"short_term"`
	LongTerm      []string `json:"long_term"`
	BestPractices []string `json:"best_practices"`
}

// AuditEntry is one append-only record on a validation's audit trail.
type AuditEntry struct {
	Action      string    `json:"action"`
	PerformedBy string    `json:"performed_by"`
	Timestamp   time.Time `json:"timestamp"`
	Details     string    `json:"details,omitempty"`
}

// NextValidation is the scheduled follow-up validation.
type NextValidation struct {
	ScheduledDate time.Time `json:"scheduled_date"`
	Type          string    `json:"type"`
	Scope         string    `json:"scope"`
}

// ValidationResult is the immutable outcome of one validation run. Once
// produced it is never mutated; history and cache hold it as-is.
type ValidationResult struct {
	ValidationID      string             `json:"validation_id"`
	ValidationType    string             `json:"validation_type"`
	ValidationScope   string             `json:"validation_scope"`
	ValidationDate    time.Time          `json:"validation_date"`
	ValidatedBy       string             `json:"validated_by"`
	ValidatorRole     string             `json:"validator_role"`
	OverallStatus     Status             `json:"overall_status"`
	ComplianceScore   ComplianceScore    `json:"compliance_score"`
	DomainValidations []DomainValidation `json:"domain_validations"`
	Errors            []string           `json:"errors"`
	Warnings          []string           `json:"warnings"`
	CriticalFindings  []CriticalFinding  `json:"critical_findings"`
	ActionItems       []CorrectiveAction `json:"action_items"`
	Recommendations   Recommendations    `json:"recommendations"`
	AuditTrail        []AuditEntry       `json:"audit_trail"`
	NextValidation    NextValidation     `json:"next_validation"`
	CreatedAt         time.Time          `json:"created_at"`
	CompletedAt       time.Time          `json:"completed_at"`
}

// Percentage computes a rounded integer percentage, degrading to 0 when
// the maximum is 0 instead of faulting.
func Percentage(score, maxScore int) int {
	if maxScore <= 0 {
		return 0
	}
	return int(math.Round(float64(score) / float64(maxScore) * 100))
}

// GradeFor maps a percentage to the letter grade reported to DOH.
func GradeFor(percentage int) string {
	switch {
	case percentage >= 95:
		return "A"
	case percentage >= 85:
		return "B"
	case percentage >= 75:
		return "C"
	case percentage >= 60:
		return "D"
	default:
		return "F"
	}
}

// OverallStatusFor derives the overall status from the scoring outcome.
// Any critical finding forces non_compliant regardless of percentage.
func OverallStatusFor(percentage int, hasCriticalFindings, hasErrors bool, thresholds standards.Thresholds) Status {
	if hasCriticalFindings || percentage < thresholds.Critical {
		return StatusNonCompliant
	}
	if hasErrors || percentage < thresholds.Satisfactory {
		return StatusPartial
	}
	return StatusCompliant
}
