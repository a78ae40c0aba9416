package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apierrors "crickalytics/internal/errors"
	api "crickalytics/pkg/contracts/api/v1"
)

// RequestValidator validates request structs and reports failures by JSON
// field name.
type RequestValidator struct {
	validate *validator.Validate
}

// NewRequestValidator returns a validator with the custom tags registered.
func NewRequestValidator() *RequestValidator {
	v := validator.New(validator.WithRequiredStructEnabled())

	_ = v.RegisterValidation("view", isKnownView)

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &RequestValidator{validate: v}
}

// Struct validates s. Failures come back as a VALIDATION_FAILED *APIError
// listing every offending field.
func (rv *RequestValidator) Struct(s interface{}) error {
	err := rv.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apierrors.InvalidRequestWithError(err)
	}

	out := make([]apierrors.ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, apierrors.ValidationError{
			Field:   fieldPath(fe),
			Message: FormatFieldError(fe),
		})
	}
	return apierrors.NewValidationErrors(out)
}

// fieldPath drops the root struct name from the namespace, so nested and
// slice fields read "years[0]" rather than "ViewRequest.years[0]".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

// FormatFieldError formats validation error messages
func FormatFieldError(err validator.FieldError) string {
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
	case "view":
		return fmt.Sprintf("%s must be one of: %s", field, strings.Join(api.Views, ", "))
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, param)
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, param)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, param)
	case "lt":
		return fmt.Sprintf("%s must be less than %s", field, param)
	default:
		return fmt.Sprintf("%s failed %s validation", field, err.Tag())
	}
}

func isKnownView(fl validator.FieldLevel) bool {
	return api.IsView(fl.Field().String())
}
