package validation

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/reyadahealth/doh-compliance-engine/internal/domain/standards"
)

// CorrectiveAction is a tracked remediation task attached to a finding.
type CorrectiveAction struct {
	ActionID    string    `json:"action_id"`
	Description string    `json:"description"`
	Responsible string    `json:"responsible"`
	DueDate     time.Time `json:"due_date"`
	Status      string    `json:"status"`
	Priority    string    `json:"priority"`
}

// RegulatoryImplications flags the regulatory consequences of a finding.
type RegulatoryImplications struct {
	DOHReportable     bool `json:"doh_reportable"`
	JawdaImpact       bool `json:"jawda_impact"`
	LicenseRisk       bool `json:"license_risk"`
	AccreditationRisk bool `json:"accreditation_risk"`
}

// CriticalFinding is raised exactly when a mandatory requirement fails.
type CriticalFinding struct {
	FindingID              string                 `json:"finding_id"`
	FindingType            string                 `json:"finding_type"`
	Severity               string                 `json:"severity"`
	Domain                 standards.DomainKey    `json:"domain"`
	Title                  string                 `json:"title"`
	Description            string                 `json:"description"`
	Impact                 string                 `json:"impact"`
	RiskLevel              string                 `json:"risk_level"`
	ImmediateActions       []string               `json:"immediate_actions"`
	CorrectiveActions      []CorrectiveAction     `json:"corrective_actions"`
	RegulatoryImplications RegulatoryImplications `json:"regulatory_implications"`
	PreventiveMeasures     []string               `json:"preventive_measures"`
	DetectedAt             time.Time              `json:"detected_at"`
	DetectedBy             string                 `json:"detected_by"`
}

// NewCriticalFinding builds the finding for a failed mandatory
// requirement. The corrective action is due within 24 hours and every
// regulatory flag is raised: a mandatory DOH requirement failure is
// always reportable.
func NewCriticalFinding(domain standards.DomainKey, req standards.Requirement, detectedBy string, now time.Time) CriticalFinding {
	return CriticalFinding{
		FindingID:   req.ID + "_CRITICAL",
		FindingType: "regulatory",
		Severity:    "critical",
		Domain:      domain,
		Title:       "Critical Compliance Failure: " + req.Title,
		Description: fmt.Sprintf("Mandatory requirement %s (%s) failed validation", req.ID, req.Title),
		Impact:      "Non-compliance with DOH regulatory requirements",
		RiskLevel:   "critical",
		ImmediateActions: []string{
			"Review and correct " + req.Title,
			"Notify compliance officer",
		},
		CorrectiveActions: []CorrectiveAction{
			{
				ActionID:    uuid.NewString(),
				Description: "Remediate " + req.Title + " compliance failure",
				Responsible: "clinical_team",
				DueDate:     now.Add(24 * time.Hour),
				Status:      "pending",
				Priority:    "immediate",
			},
		},
		RegulatoryImplications: RegulatoryImplications{
			DOHReportable:     true,
			JawdaImpact:       true,
			LicenseRisk:       true,
			AccreditationRisk: true,
		},
		PreventiveMeasures: []string{
			"Staff training on " + req.Title,
			"Add pre-submission checks for " + req.ID,
		},
		DetectedAt: now,
		DetectedBy: detectedBy,
	}
}
