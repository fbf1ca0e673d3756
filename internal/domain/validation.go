package domain

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// NewValidationError converts ozzo-validation output into a ValidationError.
// validation.Errors keys become field names; any other error is reported
// under the message only.
func NewValidationError(message string, err error) *ValidationError {
	verr := &ValidationError{Message: message, Fields: map[string]string{}}

	var fieldErrs validation.Errors
	if errors.As(err, &fieldErrs) {
		for field, fe := range fieldErrs {
			if fe != nil {
				verr.Fields[field] = fe.Error()
			}
		}
		return verr
	}

	if err != nil && message == "" {
		verr.Message = err.Error()
	}
	return verr
}
