package validation

import (
	"context"
	"time"

	"github.com/reyadahealth/doh-compliance-engine/internal/domain/validation"
)

// Request is the engine's input: one clinical form submission plus the
// validation context it is judged under.
type Request struct {
	FormData        validation.FormData `json:"form_data"`
	FormType        string              `json:"form_type"`
	ValidationType  string              `json:"validation_type"`
	ValidationScope string              `json:"validation_scope"`
	PatientID       string              `json:"patient_id,omitempty"`
	EpisodeID       string              `json:"episode_id,omitempty"`
	FormID          string              `json:"form_id,omitempty"`
	ValidatedBy     string              `json:"validated_by"`
	ValidatorRole   string              `json:"validator_role"`
}

// ResultCache memoizes validation results by content fingerprint. A hit
// must be structurally identical to a fresh computation.
type ResultCache interface {
	Get(ctx context.Context, fingerprint string) (*validation.ValidationResult, bool, error)
	Put(ctx context.Context, fingerprint string, result *validation.ValidationResult) error
	ClearExpired(ctx context.Context) (int, error)
}

// ResultRepository persists completed validation results for reporting
// and analytics.
type ResultRepository interface {
	SaveResult(ctx context.Context, result *validation.ValidationResult) error
	GetResult(ctx context.Context, validationID string) (*validation.ValidationResult, error)
	ListRecent(ctx context.Context, scope string, since time.Time, limit int) ([]*validation.ValidationResult, error)
}

// RemoteValidator is the external validation API. Every call may fail;
// the engine falls back to identical local computation when it does.
type RemoteValidator interface {
	Validate(ctx context.Context, req Request) (*validation.ValidationResult, error)
}
