package api

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mkarlsen/taskly-api/internal/domain"
)

// newValidator creates a request validator that reports fields by their
// JSON names, so validation errors key cleanly into response bodies.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// fieldErrors converts a validation error into field-keyed messages suitable
// for a 400 response. Non-validator errors produce a single generic entry.
func fieldErrors(err error) map[string]string {
	fields := make(map[string]string)

	var valErrs validator.ValidationErrors
	if errors.As(err, &valErrs) {
		for _, fe := range valErrs {
			fields[fe.Field()] = tagMessage(fe)
		}
		return fields
	}

	var domainErr *domain.ValidationError
	if errors.As(err, &domainErr) {
		fields[domainErr.Field] = domainErr.Message
		return fields
	}

	fields["body"] = "is invalid"
	return fields
}

// tagMessage maps validation tags to user-friendly error messages.
func tagMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "is too short"
	case "max":
		return "is too long"
	default:
		return "is invalid"
	}
}
