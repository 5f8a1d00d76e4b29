package validation_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/reyadahealth/doh-compliance-engine/internal/domain/standards"
	domainvalidation "github.com/reyadahealth/doh-compliance-engine/internal/domain/validation"
	svc "github.com/reyadahealth/doh-compliance-engine/internal/service/validation"
	"github.com/reyadahealth/doh-compliance-engine/internal/testutil/fixtures"
)

func newScorer(t *testing.T) *svc.Scorer {
	t.Helper()
	logger := zaptest.NewLogger(t)
	thresholds := standards.Thresholds{Excellent: 95, Good: 85, Satisfactory: 75, NeedsImprovement: 60, Critical: 60}
	return svc.NewScorer(logger, svc.NewEvaluator(logger, false), thresholds)
}

func TestScorer_ScoreDomain_AllPassing(t *testing.T) {
	scorer := newScorer(t)
	now := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)
	reqs := []standards.Requirement{
		fixtures.MandatoryRequirement("CC-001", svc.RuleRequiredField),
		fixtures.MandatoryRequirement("CC-002", svc.RuleCompletenessCheck),
		fixtures.OptionalRequirement("CC-003", svc.RuleTimestampValidation),
	}

	dv := scorer.ScoreDomain(standards.DomainClinicalCare, reqs, fixtures.CompleteForm(t), "nurse-001", now)

	assert.Equal(t, standards.DomainClinicalCare, dv.Domain)
	assert.Equal(t, "Clinical Care", dv.DomainName)
	assert.Equal(t, 3*domainvalidation.MaxRequirementScore, dv.Score)
	assert.Equal(t, 3*domainvalidation.MaxRequirementScore, dv.MaxScore)
	assert.Equal(t, 100, dv.Percentage)
	assert.Equal(t, domainvalidation.StatusCompliant, dv.Status)
	assert.Empty(t, dv.CriticalFindings)
	assert.Empty(t, dv.Recommendations)
	assert.Len(t, dv.ValidationChecks, 3)
}

func TestScorer_ScoreDomain_FailedMandatoryRaisesCritical(t *testing.T) {
	scorer := newScorer(t)
	now := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)
	reqs := []standards.Requirement{
		fixtures.MandatoryRequirement("PS-001", svc.RuleRequiredField),
		fixtures.MandatoryRequirement("PS-002", svc.RuleCompletenessCheck),
	}

	dv := scorer.ScoreDomain(standards.DomainPatientSafety, reqs, fixtures.EmptyForm(t), "nurse-001", now)

	assert.Zero(t, dv.Score)
	assert.Equal(t, 2*domainvalidation.MaxRequirementScore, dv.MaxScore)
	assert.Equal(t, 0, dv.Percentage)
	assert.Equal(t, domainvalidation.StatusNonCompliant, dv.Status)

	require.Len(t, dv.CriticalFindings, 2, "one finding per failed mandatory requirement")
	assert.Equal(t, "PS-001_CRITICAL", dv.CriticalFindings[0].FindingID)
	assert.Equal(t, "PS-002_CRITICAL", dv.CriticalFindings[1].FindingID)

	assert.Contains(t, dv.Recommendations, "Improve Patient Safety compliance to achieve excellence")
	assert.Contains(t, dv.Recommendations, "Address critical findings in Patient Safety immediately")
}

func TestScorer_ScoreDomain_FailedOptionalIsNotCritical(t *testing.T) {
	scorer := newScorer(t)
	now := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)
	form := fixtures.NewFormDataBuilder(t).WithoutField("completedAt").Build()
	reqs := []standards.Requirement{
		fixtures.MandatoryRequirement("DS-001", svc.RuleRequiredField),
		fixtures.OptionalRequirement("DS-002", svc.RuleTimestampValidation),
	}

	dv := scorer.ScoreDomain(standards.DomainDocumentationStandards, reqs, form, "nurse-001", now)

	assert.Equal(t, domainvalidation.MaxRequirementScore, dv.Score)
	assert.Equal(t, 50, dv.Percentage)
	assert.Empty(t, dv.CriticalFindings, "optional failures never raise findings")
	assert.Equal(t, domainvalidation.StatusPartial, dv.Status)
}

func TestScorer_ScoreDomain_StatusBoundaries(t *testing.T) {
	// Four requirements: pct moves in steps of 25, straddling the
	// satisfactory threshold without mandatory failures.
	form := fixtures.NewFormDataBuilder(t).WithoutField("completedAt").Build()
	now := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		failing    int
		wantStatus domainvalidation.Status
	}{
		{"100 percent compliant", 0, domainvalidation.StatusCompliant},
		{"75 percent still compliant", 1, domainvalidation.StatusCompliant},
		{"50 percent partial", 2, domainvalidation.StatusPartial},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scorer := newScorer(t)
			reqs := make([]standards.Requirement, 0, 4)
			for i := 0; i < 4-tt.failing; i++ {
				reqs = append(reqs, fixtures.OptionalRequirement("QI-00"+string(rune('1'+i)), svc.RuleRequiredField))
			}
			for i := 0; i < tt.failing; i++ {
				reqs = append(reqs, fixtures.OptionalRequirement("QI-10"+string(rune('1'+i)), svc.RuleTimestampValidation))
			}

			dv := scorer.ScoreDomain(standards.DomainQualityImprovement, reqs, form, "nurse-001", now)
			assert.Equal(t, tt.wantStatus, dv.Status)
			assert.Empty(t, dv.CriticalFindings)
		})
	}
}

func TestScorer_ScoreDomain_NoRequirements(t *testing.T) {
	scorer := newScorer(t)
	now := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

	dv := scorer.ScoreDomain(standards.DomainPatientRights, nil, fixtures.CompleteForm(t), "nurse-001", now)

	assert.Zero(t, dv.Score)
	assert.Zero(t, dv.MaxScore)
	assert.Zero(t, dv.Percentage)
	assert.Equal(t, domainvalidation.StatusPartial, dv.Status, "no criticals, but below the satisfactory threshold")
}
