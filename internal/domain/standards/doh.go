package standards

import "time"

// Default thresholds per the DOH homecare standard.
var defaultThresholds = Thresholds{
	Excellent:        95,
	Good:             85,
	Satisfactory:     75,
	NeedsImprovement: 60,
	Critical:         60,
}

// Domain weights sum to 1.0 and are only consulted when the scoring
// method is weighted_average.
var defaultWeights = map[DomainKey]float64{
	DomainClinicalCare:            0.15,
	DomainPatientSafety:           0.15,
	DomainInfectionControl:        0.12,
	DomainMedicationManagement:    0.12,
	DomainDocumentationStandards:  0.10,
	DomainContinuityOfCare:        0.10,
	DomainPatientRights:           0.09,
	DomainQualityImprovement:      0.09,
	DomainProfessionalDevelopment: 0.08,
}

// DefaultThresholds returns the DOH homecare standard's score cutoffs.
func DefaultThresholds() Thresholds { return defaultThresholds }

// LoadDefault returns the bundled DOH homecare standards catalog.
func LoadDefault() (*Catalog, error) {
	effective := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	return NewCatalog("DOH-HC-2024", "2024.1", effective, defaultDomains, defaultThresholds, defaultWeights)
}

var defaultDomains = []DomainStandard{
	{
		Key: DomainClinicalCare,
		Requirements: []Requirement{
			{
				ID:               "CC-001",
				Title:            "Comprehensive Patient Assessment",
				Description:      "A complete clinical assessment must be documented for every patient encounter",
				Mandatory:        true,
				ValidationRules:  []string{"required_field", "completeness_check"},
				EvidenceRequired: []string{"assessment_form", "clinical_notes"},
			},
			{
				ID:               "CC-002",
				Title:            "Timely Care Delivery",
				Description:      "Clinical interventions must be delivered and recorded within required timeframes",
				Mandatory:        true,
				ValidationRules:  []string{"required_field", "timestamp_validation"},
				EvidenceRequired: []string{"visit_record", "intervention_log"},
			},
			{
				ID:               "CC-003",
				Title:            "Clinical Justification",
				Description:      "Services provided must be clinically justified against the care plan",
				Mandatory:        false,
				ValidationRules:  []string{"clinical_justification"},
				EvidenceRequired: []string{"care_plan"},
			},
		},
	},
	{
		Key: DomainPatientSafety,
		Requirements: []Requirement{
			{
				ID:               "PS-001",
				Title:            "Fall Risk Assessment",
				Description:      "Fall risk must be assessed and documented on admission and reassessed per policy",
				Mandatory:        true,
				ValidationRules:  []string{"required_field", "completeness_check"},
				EvidenceRequired: []string{"fall_risk_score", "mitigation_plan"},
			},
			{
				ID:               "PS-002",
				Title:            "Incident Reporting",
				Description:      "Patient safety incidents must be reported within 24 hours",
				Mandatory:        true,
				ValidationRules:  []string{"required_field", "timestamp_validation"},
				EvidenceRequired: []string{"incident_report"},
			},
		},
	},
	{
		Key: DomainInfectionControl,
		Requirements: []Requirement{
			{
				ID:               "IC-001",
				Title:            "Infection Prevention Protocol",
				Description:      "Infection prevention measures must be documented for every home visit",
				Mandatory:        true,
				ValidationRules:  []string{"required_field"},
				EvidenceRequired: []string{"infection_control_checklist"},
			},
			{
				ID:               "IC-002",
				Title:            "Hand Hygiene Compliance",
				Description:      "Hand hygiene practice must follow WHO five-moments guidance",
				Mandatory:        false,
				ValidationRules:  []string{"hand_hygiene_audit"},
				EvidenceRequired: []string{"audit_record"},
			},
		},
	},
	{
		Key: DomainMedicationManagement,
		Requirements: []Requirement{
			{
				ID:               "MM-001",
				Title:            "Medication Reconciliation",
				Description:      "Medications must be reconciled at every transition of care",
				Mandatory:        true,
				ValidationRules:  []string{"required_field", "completeness_check"},
				EvidenceRequired: []string{"medication_list", "reconciliation_record"},
			},
			{
				ID:               "MM-002",
				Title:            "High-Alert Medication Controls",
				Description:      "High-alert medications require double verification before administration",
				Mandatory:        true,
				ValidationRules:  []string{"required_field", "timestamp_validation"},
				EvidenceRequired: []string{"verification_signatures"},
			},
			{
				ID:               "MM-003",
				Title:            "Adverse Reaction Monitoring",
				Description:      "Adverse drug reactions must be monitored and documented",
				Mandatory:        false,
				ValidationRules:  []string{"adverse_event_review"},
				EvidenceRequired: []string{"monitoring_log"},
			},
		},
	},
	{
		Key: DomainDocumentationStandards,
		Requirements: []Requirement{
			{
				ID:               "DS-001",
				Title:            "Complete Clinical Documentation",
				Description:      "All required clinical fields must be completed before form submission",
				Mandatory:        true,
				ValidationRules:  []string{"required_field", "completeness_check"},
				EvidenceRequired: []string{"completed_form"},
			},
			{
				ID:               "DS-002",
				Title:            "Timely Record Completion",
				Description:      "Clinical records must be completed and timestamped at point of care",
				Mandatory:        true,
				ValidationRules:  []string{"required_field", "timestamp_validation"},
				EvidenceRequired: []string{"signed_record"},
			},
		},
	},
	{
		Key: DomainContinuityOfCare,
		Requirements: []Requirement{
			{
				ID:               "CN-001",
				Title:            "Care Plan Maintenance",
				Description:      "An individualized care plan must exist and be kept current",
				Mandatory:        true,
				ValidationRules:  []string{"required_field"},
				EvidenceRequired: []string{"care_plan"},
			},
			{
				ID:               "CN-002",
				Title:            "Handover Communication",
				Description:      "Structured handover must occur at every change of responsible clinician",
				Mandatory:        false,
				ValidationRules:  []string{"handover_review"},
				EvidenceRequired: []string{"handover_note"},
			},
		},
	},
	{
		Key: DomainPatientRights,
		Requirements: []Requirement{
			{
				ID:               "PR-001",
				Title:            "Informed Consent",
				Description:      "Documented informed consent is required before treatment",
				Mandatory:        true,
				ValidationRules:  []string{"required_field"},
				EvidenceRequired: []string{"consent_form"},
			},
			{
				ID:               "PR-002",
				Title:            "Privacy and Confidentiality",
				Description:      "Patient information must be handled per confidentiality policy",
				Mandatory:        false,
				ValidationRules:  []string{"privacy_review"},
				EvidenceRequired: []string{"privacy_acknowledgement"},
			},
		},
	},
	{
		Key: DomainQualityImprovement,
		Requirements: []Requirement{
			{
				ID:               "QI-001",
				Title:            "Quality Indicator Reporting",
				Description:      "Jawda quality indicators must be captured and reported each quarter",
				Mandatory:        false,
				ValidationRules:  []string{"required_field"},
				EvidenceRequired: []string{"kpi_submission"},
			},
			{
				ID:               "QI-002",
				Title:            "Audit Participation",
				Description:      "Clinical audits must be performed per the annual audit calendar",
				Mandatory:        false,
				ValidationRules:  []string{"audit_schedule_review"},
				EvidenceRequired: []string{"audit_report"},
			},
		},
	},
	{
		Key: DomainProfessionalDevelopment,
		Requirements: []Requirement{
			{
				ID:               "PD-001",
				Title:            "Staff Licensure Verification",
				Description:      "All clinical staff must hold a valid DOH license",
				Mandatory:        true,
				ValidationRules:  []string{"required_field"},
				EvidenceRequired: []string{"license_record"},
			},
			{
				ID:               "PD-002",
				Title:            "Continuing Education",
				Description:      "Staff must complete required continuing education hours",
				Mandatory:        false,
				ValidationRules:  []string{"cme_review"},
				EvidenceRequired: []string{"training_record"},
			},
		},
	},
}
