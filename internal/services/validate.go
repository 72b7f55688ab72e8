package services

import (
	"errors"

	pgvalidator "github.com/go-playground/validator/v10"

	"github.com/escola-viva/secretaria-service/internal/validator"
)

// toValidationErrors converts validator tag failures into the service error
// taxonomy so handlers render them as field-level 4xx responses.
func toValidationErrors(err error) error {
	if err == nil {
		return nil
	}

	var fieldErrors pgvalidator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return err
	}

	out := make(ValidationErrors, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		out = append(out, ValidationError{
			Field:   fe.Field(),
			Message: validator.FieldMessage(fe),
			Value:   fe.Value(),
		})
	}
	return out
}
