package response

import (
	"errors"
	"net/http"

	"github.com/qbadvisory/hr-analytics-go/internal/domain/auth"
	"github.com/qbadvisory/hr-analytics-go/internal/domain/hr"
	"github.com/qbadvisory/hr-analytics-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, "Invalid or expired token")

	// Analytics domain errors
	case errors.Is(err, hr.ErrNoSnapshot):
		ServiceUnavailable(w, "No dataset loaded yet; run a refresh first")
	case errors.Is(err, hr.ErrUnknownTable):
		NotFound(w, "Unknown table name")
	case errors.Is(err, hr.ErrUnknownView):
		NotFound(w, "Unknown aggregate view")
	case errors.Is(err, hr.ErrUnknownChart):
		NotFound(w, "Unknown drill chart")
	case errors.Is(err, hr.ErrMissingBucket):
		BadRequest(w, "A bucket label is required for this chart", nil)
	case errors.Is(err, hr.ErrRefreshInProgress):
		Conflict(w, "A data refresh is already running")

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
