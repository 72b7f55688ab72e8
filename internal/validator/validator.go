// Package validator wraps go-playground/validator with the custom rules the
// service needs: Brazilian CPF identifiers and HH:MM time-of-day strings.
package validator

import (
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

var hhmmPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// Validator validates request structs.
type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	validate := validator.New()

	// cpf_digits accepts a CPF with or without punctuation as long as it
	// carries exactly 11 digits. Check-digit verification is left to the
	// enrollment workflow.
	validate.RegisterValidation("cpf_digits", func(fl validator.FieldLevel) bool {
		digits := 0
		for _, r := range fl.Field().String() {
			if r >= '0' && r <= '9' {
				digits++
			}
		}
		return digits == 11
	})

	// hhmm accepts a 24h wall-clock time like "14:30".
	validate.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		return hhmmPattern.MatchString(fl.Field().String())
	})

	return &Validator{validate: validate}
}

// Struct validates a struct's `validate` tags. The returned error is the
// underlying validator.ValidationErrors when fields failed.
func (v *Validator) Struct(s interface{}) error {
	return v.validate.Struct(s)
}

// Var validates a single value against a rule expression.
func (v *Validator) Var(field interface{}, tag string) error {
	return v.validate.Var(field, tag)
}

// FieldMessage renders a human message for one failed field.
func FieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "cpf_digits":
		return "must be a CPF with 11 digits"
	case "hhmm":
		return "must be a time in HH:MM format"
	default:
		return fmt.Sprintf("failed rule %q", fe.Tag())
	}
}
