package standards

import (
	"fmt"
	"strings"
	"time"
)

// DomainKey identifies one of the nine DOH compliance domains.
type DomainKey string

const (
	DomainClinicalCare            DomainKey = "clinical_care"
	DomainPatientSafety           DomainKey = "patient_safety"
	DomainInfectionControl        DomainKey = "infection_control"
	DomainMedicationManagement    DomainKey = "medication_management"
	DomainDocumentationStandards  DomainKey = "documentation_standards"
	DomainContinuityOfCare        DomainKey = "continuity_of_care"
	DomainPatientRights           DomainKey = "patient_rights"
	DomainQualityImprovement      DomainKey = "quality_improvement"
	DomainProfessionalDevelopment DomainKey = "professional_development"
)

// DomainOrder fixes the evaluation and reporting order of the nine domains.
var DomainOrder = []DomainKey{
	DomainClinicalCare,
	DomainPatientSafety,
	DomainInfectionControl,
	DomainMedicationManagement,
	DomainDocumentationStandards,
	DomainContinuityOfCare,
	DomainPatientRights,
	DomainQualityImprovement,
	DomainProfessionalDevelopment,
}

// DisplayName converts a domain key into its human-readable form,
// replacing every underscore and title-casing each word.
func (k DomainKey) DisplayName() string {
	words := strings.Split(string(k), "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// Requirement is one auditable DOH standard requirement within a domain.
type Requirement struct {
	ID               string   `json:"id"`
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	Mandatory        bool     `json:"mandatory"`
	ValidationRules  []string `json:"validation_rules"`
	EvidenceRequired []string `json:"evidence_required"`
}

// Thresholds are the ordered compliance score cutoffs.
type Thresholds struct {
	Excellent        int `json:"excellent"`
	Good             int `json:"good"`
	Satisfactory     int `json:"satisfactory"`
	NeedsImprovement int `json:"needs_improvement"`
	Critical         int `json:"critical"`
}

// DomainStandard pairs a domain key with its ordered requirements.
type DomainStandard struct {
	Key          DomainKey     `json:"key"`
	Requirements []Requirement `json:"requirements"`
}

// Catalog is the versioned, immutable definition of DOH standards the
// engine validates against. It is loaded once at startup and replaced
// wholesale on a version bump, never mutated in place.
type Catalog struct {
	standardID    string
	version       string
	effectiveDate time.Time
	domains       []DomainStandard
	index         map[DomainKey]int
	thresholds    Thresholds
	weights       map[DomainKey]float64
}

// NewCatalog assembles a catalog from its parts. Domains are kept in the
// order given; weights must cover every domain.
func NewCatalog(standardID, version string, effectiveDate time.Time, domains []DomainStandard, thresholds Thresholds, weights map[DomainKey]float64) (*Catalog, error) {
	if standardID == "" {
		return nil, fmt.Errorf("standard id cannot be empty")
	}
	if version == "" {
		return nil, fmt.Errorf("version cannot be empty")
	}
	index := make(map[DomainKey]int, len(domains))
	for i, d := range domains {
		if _, dup := index[d.Key]; dup {
			return nil, fmt.Errorf("duplicate domain %q", d.Key)
		}
		index[d.Key] = i
	}
	for _, d := range domains {
		if _, ok := weights[d.Key]; !ok {
			return nil, fmt.Errorf("missing weight for domain %q", d.Key)
		}
	}
	return &Catalog{
		standardID:    standardID,
		version:       version,
		effectiveDate: effectiveDate,
		domains:       domains,
		index:         index,
		thresholds:    thresholds,
		weights:       weights,
	}, nil
}

// StandardID returns the regulatory standard identifier.
func (c *Catalog) StandardID() string { return c.standardID }

// Version returns the catalog version. Cache keys embed this so a
// version bump invalidates every previously cached result.
func (c *Catalog) Version() string { return c.version }

// EffectiveDate returns the date the standard took effect.
func (c *Catalog) EffectiveDate() time.Time { return c.effectiveDate }

// Domains returns the domains in catalog order.
func (c *Catalog) Domains() []DomainStandard { return c.domains }

// Requirements returns the ordered requirements of one domain.
func (c *Catalog) Requirements(key DomainKey) ([]Requirement, bool) {
	i, ok := c.index[key]
	if !ok {
		return nil, false
	}
	return c.domains[i].Requirements, true
}

// Weight returns the aggregation weight of one domain.
func (c *Catalog) Weight(key DomainKey) float64 { return c.weights[key] }

// Thresholds returns the compliance score cutoffs.
func (c *Catalog) Thresholds() Thresholds { return c.thresholds }
