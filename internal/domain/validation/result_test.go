package validation_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/reyadahealth/doh-compliance-engine/internal/domain/standards"
	"github.com/reyadahealth/doh-compliance-engine/internal/domain/validation"
)

func TestPercentage(t *testing.T) {
	tests := []struct {
		name     string
		score    int
		maxScore int
		want     int
	}{
		{"full score", 180, 180, 100},
		{"zero score", 0, 180, 0},
		{"rounds up", 2, 3, 67},
		{"rounds down", 1, 3, 33},
		{"zero max degrades to zero", 50, 0, 0},
		{"negative max degrades to zero", 50, -1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, validation.Percentage(tt.score, tt.maxScore))
		})
	}
}

func TestGradeFor(t *testing.T) {
	tests := []struct {
		percentage int
		want       string
	}{
		{100, "A"},
		{95, "A"},
		{94, "B"},
		{85, "B"},
		{84, "C"},
		{75, "C"},
		{74, "D"},
		{60, "D"},
		{59, "F"},
		{0, "F"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, validation.GradeFor(tt.percentage), "percentage %d", tt.percentage)
	}
}

func TestOverallStatusFor(t *testing.T) {
	thresholds := standards.Thresholds{Excellent: 95, Good: 85, Satisfactory: 75, NeedsImprovement: 60, Critical: 60}

	tests := []struct {
		name        string
		percentage  int
		hasCritical bool
		hasErrors   bool
		want        validation.Status
	}{
		{"high score clean run", 96, false, false, validation.StatusCompliant},
		{"satisfactory boundary", 75, false, false, validation.StatusCompliant},
		{"below satisfactory", 74, false, false, validation.StatusPartial},
		{"errors force partial", 96, false, true, validation.StatusPartial},
		{"below critical threshold", 59, false, false, validation.StatusNonCompliant},
		{"critical finding overrides perfect score", 100, true, false, validation.StatusNonCompliant},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := validation.OverallStatusFor(tt.percentage, tt.hasCritical, tt.hasErrors, thresholds)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewCriticalFinding(t *testing.T) {
	now := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)
	req := standards.Requirement{
		ID:        "CC-001",
		Title:     "Comprehensive Patient Assessment",
		Mandatory: true,
	}

	finding := validation.NewCriticalFinding(standards.DomainClinicalCare, req, "nurse-001", now)

	assert.Equal(t, "CC-001_CRITICAL", finding.FindingID)
	assert.Equal(t, "regulatory", finding.FindingType)
	assert.Equal(t, "critical", finding.Severity)
	assert.Equal(t, "critical", finding.RiskLevel)
	assert.Equal(t, standards.DomainClinicalCare, finding.Domain)
	assert.Equal(t, now, finding.DetectedAt)
	assert.Equal(t, "nurse-001", finding.DetectedBy)

	assert.True(t, finding.RegulatoryImplications.DOHReportable)
	assert.True(t, finding.RegulatoryImplications.JawdaImpact)
	assert.True(t, finding.RegulatoryImplications.LicenseRisk)
	assert.True(t, finding.RegulatoryImplications.AccreditationRisk)

	if assert.Len(t, finding.CorrectiveActions, 1) {
		action := finding.CorrectiveActions[0]
		assert.NotEmpty(t, action.ActionID)
		assert.Equal(t, now.Add(24*time.Hour), action.DueDate)
		assert.Equal(t, "pending", action.Status)
		assert.Equal(t, "immediate", action.Priority)
	}
}
