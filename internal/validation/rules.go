// Package validation provides the input rules checked before any lookup
// work starts.
package validation

import (
	"regexp"

	validation "github.com/jellydator/validation"

	"github.com/TheMichaelB/pincheck/internal/models"
)

// pincodePattern is exactly six ASCII digits.
var pincodePattern = regexp.MustCompile(`^[0-9]{6}$`)

// PincodeRule validates an Indian postal code.
var PincodeRule = validation.Match(pincodePattern).
	ErrorObject(validation.NewError("validation_pincode", "must be exactly 6 digits"))

// Pincode validates pin and reports failures as *models.ValidationError.
func Pincode(pin string) error {
	err := validation.Validate(pin, validation.Required, PincodeRule)
	return WrapValidationError("pincode", pin, err)
}

// Query validates a lookup query.
func Query(q *models.PincodeQuery) error {
	err := validation.ValidateStruct(q,
		validation.Field(&q.Pincode, validation.Required, PincodeRule),
	)
	return WrapValidationError("query", q.Pincode, err)
}

// WrapValidationError wraps rule failures as a domain validation error.
func WrapValidationError(field, value string, err error) error {
	if err == nil {
		return nil
	}
	return &models.ValidationError{Field: field, Value: value, Err: err}
}
