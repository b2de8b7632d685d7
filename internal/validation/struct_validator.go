package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "gnecli/internal/errors"
)

// StructValidator validates option and request structs by their `validate`
// tags. Field names in messages come from json tags.
type StructValidator struct {
	validate *validator.Validate
}

// NewStructValidator creates a validator with the delimiter rule registered.
func NewStructValidator() *StructValidator {
	v := validator.New()
	v.RegisterValidation("delimiter", isDelimiter)
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	return &StructValidator{validate: v}
}

// Struct returns an *errors.APIError listing every failed field, or nil.
func (s *StructValidator) Struct(v interface{}) error {
	err := s.validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	out := make([]apperrors.ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, apperrors.ValidationError{
			Field:   fe.Field(),
			Message: formatValidationError(fe),
		})
	}
	return apperrors.NewValidationErrors(out)
}

// Messages flattens a Struct error into "field: message" lines.
func Messages(err error) []string {
	var apiErr *apperrors.APIError
	if !errors.As(err, &apiErr) {
		if err == nil {
			return nil
		}
		return []string{err.Error()}
	}
	details, ok := apiErr.Details.(apperrors.ValidationErrors)
	if !ok {
		return []string{apiErr.Message}
	}
	lines := make([]string, 0, len(details.Errors))
	for _, e := range details.Errors {
		lines = append(lines, e.Message)
	}
	return lines
}

func formatValidationError(err validator.FieldError) string {
	field := err.Field()
	param := err.Param()

	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(param, " ", ", "))
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, param)
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, param)
	case "delimiter":
		return fmt.Sprintf("%s must be a single character other than a quote or line break", field)
	default:
		return fmt.Sprintf("%s failed %s validation", field, err.Tag())
	}
}

// isDelimiter accepts a one-character string or a non-zero rune that is not
// a quote or a line terminator.
func isDelimiter(fl validator.FieldLevel) bool {
	var r rune
	switch fl.Field().Kind() {
	case reflect.String:
		s := []rune(fl.Field().String())
		if len(s) != 1 {
			return false
		}
		r = s[0]
	case reflect.Int32:
		r = rune(fl.Field().Int())
	default:
		return false
	}
	return r != 0 && r != '"' && r != '\n' && r != '\r'
}
