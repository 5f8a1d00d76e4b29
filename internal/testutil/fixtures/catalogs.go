package fixtures

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/reyadahealth/doh-compliance-engine/internal/domain/standards"
)

// CatalogBuilder builds small standards catalogs for tests
type CatalogBuilder struct {
	t             *testing.T
	standardID    string
	version       string
	effectiveDate time.Time
	domains       []standards.DomainStandard
	thresholds    standards.Thresholds
	weights       map[standards.DomainKey]float64
}

// NewCatalogBuilder creates a builder with production-equivalent
// thresholds and no domains.
func NewCatalogBuilder(t *testing.T) *CatalogBuilder {
	t.Helper()
	return &CatalogBuilder{
		t:             t,
		standardID:    "DOH-TEST",
		version:       "test.1",
		effectiveDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		thresholds:    standards.DefaultThresholds(),
		weights:       map[standards.DomainKey]float64{},
	}
}

// WithVersion overrides the catalog version
func (b *CatalogBuilder) WithVersion(version string) *CatalogBuilder {
	b.version = version
	return b
}

// WithDomain appends a domain with equal weight 1.0
func (b *CatalogBuilder) WithDomain(key standards.DomainKey, reqs ...standards.Requirement) *CatalogBuilder {
	return b.WithWeightedDomain(key, 1.0, reqs...)
}

// WithWeightedDomain appends a domain with an explicit weight
func (b *CatalogBuilder) WithWeightedDomain(key standards.DomainKey, weight float64, reqs ...standards.Requirement) *CatalogBuilder {
	b.domains = append(b.domains, standards.DomainStandard{Key: key, Requirements: reqs})
	b.weights[key] = weight
	return b
}

// Build assembles the catalog, failing the test on invalid input
func (b *CatalogBuilder) Build() *standards.Catalog {
	b.t.Helper()
	catalog, err := standards.NewCatalog(b.standardID, b.version, b.effectiveDate, b.domains, b.thresholds, b.weights)
	require.NoError(b.t, err)
	return catalog
}

// MandatoryRequirement returns a mandatory requirement with the given rules
func MandatoryRequirement(id string, rules ...string) standards.Requirement {
	return standards.Requirement{
		ID:              id,
		Title:           "Requirement " + id,
		Description:     "Test requirement " + id,
		Mandatory:       true,
		ValidationRules: rules,
	}
}

// OptionalRequirement returns a non-mandatory requirement with the given rules
func OptionalRequirement(id string, rules ...string) standards.Requirement {
	req := MandatoryRequirement(id, rules...)
	req.Mandatory = false
	return req
}
