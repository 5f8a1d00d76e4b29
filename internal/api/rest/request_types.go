package rest

import (
	"github.com/go-playground/validator/v10"

	"github.com/reyadahealth/doh-compliance-engine/internal/domain/validation"
	svc "github.com/reyadahealth/doh-compliance-engine/internal/service/validation"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateRequest is the request body for a single validation run.
type ValidateRequest struct {
	FormData        validation.FormData `json:"form_data" validate:"required"`
	FormType        string              `json:"form_type" validate:"required"`
	ValidationType  string              `json:"validation_type" validate:"omitempty,oneof=doh_compliance clinical_quality regulatory_audit"`
	ValidationScope string              `json:"validation_scope" validate:"omitempty,oneof=single_form episode patient organization"`
	PatientID       string              `json:"patient_id,omitempty"`
	EpisodeID       string              `json:"episode_id,omitempty"`
	FormID          string              `json:"form_id,omitempty"`
}

// ToServiceRequest converts the DTO into an engine request, stamping
// the authenticated caller's identity.
func (r ValidateRequest) ToServiceRequest(userID, role string) svc.Request {
	validationType := r.ValidationType
	if validationType == "" {
		validationType = "doh_compliance"
	}
	scope := r.ValidationScope
	if scope == "" {
		scope = "single_form"
	}
	return svc.Request{
		FormData:        r.FormData,
		FormType:        r.FormType,
		ValidationType:  validationType,
		ValidationScope: scope,
		PatientID:       r.PatientID,
		EpisodeID:       r.EpisodeID,
		FormID:          r.FormID,
		ValidatedBy:     userID,
		ValidatorRole:   role,
	}
}

// BatchValidateRequest is the request body for batch validation.
type BatchValidateRequest struct {
	Items  []BatchItemRequest `json:"items" validate:"required,min=1,max=100,dive"`
	Queued bool               `json:"queued"`
}

// BatchItemRequest is one item of a batch request.
type BatchItemRequest struct {
	ItemID  string          `json:"item_id" validate:"required"`
	Request ValidateRequest `json:"request" validate:"required"`
}

// ReportRequest asks for a compliance report over a validation run.
type ReportRequest struct {
	ValidationID string `json:"validation_id,omitempty"`
}
