package fixtures

import (
	"testing"
	"time"

	"github.com/reyadahealth/doh-compliance-engine/internal/domain/validation"
)

// FormDataBuilder builds clinical form payloads for tests
type FormDataBuilder struct {
	t      *testing.T
	fields validation.FormData
}

// NewFormDataBuilder creates a builder seeded with a fully compliant
// form: every field the known validation rules inspect is present.
func NewFormDataBuilder(t *testing.T) *FormDataBuilder {
	t.Helper()
	now := time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC)
	return &FormDataBuilder{
		t: t,
		fields: validation.FormData{
			"patientId":        "PAT-2024-001",
			"assessmentDate":   "2024-06-15",
			"clinicalFindings": "Patient stable, wound healing within expected parameters",
			"timestamp":        now.Format(time.RFC3339),
			"completedAt":      now.Add(25 * time.Minute).Format(time.RFC3339),
			"assessedBy":       "nurse-001",
		},
	}
}

// WithField sets or overrides a form field
func (b *FormDataBuilder) WithField(name string, value interface{}) *FormDataBuilder {
	b.fields[name] = value
	return b
}

// WithoutField removes a form field
func (b *FormDataBuilder) WithoutField(name string) *FormDataBuilder {
	delete(b.fields, name)
	return b
}

// Empty clears every field, producing the degenerate {} submission
func (b *FormDataBuilder) Empty() *FormDataBuilder {
	b.fields = validation.FormData{}
	return b
}

// Build returns the form data
func (b *FormDataBuilder) Build() validation.FormData {
	return b.fields.Clone()
}

// CompleteForm returns a form that passes every known validation rule.
func CompleteForm(t *testing.T) validation.FormData {
	t.Helper()
	return NewFormDataBuilder(t).Build()
}

// EmptyForm returns the degenerate empty submission.
func EmptyForm(t *testing.T) validation.FormData {
	t.Helper()
	return NewFormDataBuilder(t).Empty().Build()
}
