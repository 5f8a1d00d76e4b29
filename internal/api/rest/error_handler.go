package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	domainErrors "github.com/reyadahealth/doh-compliance-engine/internal/domain/errors"
)

// handleError maps application errors onto HTTP responses. The caller
// always gets a structured error distinct from a low compliance score:
// scores travel in successful responses, never through this path.
func handleError(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}

	var appErr *domainErrors.AppError
	if errors.As(err, &appErr) {
		writeError(w, appErr.StatusCode, appErr.Code, appErr.Message, "")
		return
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		details := ""
		for i, fe := range validationErrs {
			if i > 0 {
				details += "; "
			}
			details += fmt.Sprintf("field %s failed %s validation", fe.Field(), fe.Tag())
		}
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "Request validation failed", details)
		return
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON syntax",
			fmt.Sprintf("error at position %d", syntaxErr.Offset))
		return
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		writeError(w, http.StatusBadRequest, "TYPE_MISMATCH",
			fmt.Sprintf("Invalid type for field %q", typeErr.Field), "")
		return
	}

	if errors.Is(err, context.Canceled) {
		writeError(w, http.StatusRequestTimeout, "REQUEST_CANCELED", "Request was canceled", "")
		return
	}
	if errors.Is(err, context.DeadlineExceeded) {
		writeError(w, http.StatusRequestTimeout, "REQUEST_TIMEOUT", "Request timed out", "")
		return
	}

	writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred", "")
}
