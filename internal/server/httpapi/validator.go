package httpapi

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// FieldError describes one failed field in a request body.
type FieldError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

// ValidationError carries every field failure of a request at once.
type ValidationError struct {
	Errors []FieldError
}

func (ve ValidationError) Error() string {
	return fmt.Sprintf("validation failed with %d error(s)", len(ve.Errors))
}

// Validator adapts go-playground/validator to echo.Validator.
type Validator struct {
	validator *validator.Validate
}

func NewValidator() *Validator {
	return &Validator{validator: validator.New(validator.WithRequiredStructEnabled())}
}

func (v *Validator) Validate(i any) error {
	err := v.validator.Struct(i)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	out := ValidationError{Errors: make([]FieldError, len(validationErrors))}
	for i, fe := range validationErrors {
		out.Errors[i] = FieldError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Message: msgForTag(fe.Tag()),
		}
	}
	return out
}

func msgForTag(tag string) string {
	switch tag {
	case "required":
		return "This field is required"
	default:
		return fmt.Sprintf("Failed validation on rule: %s", tag)
	}
}
