package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"

	"bloghub/internal/auth"
	"bloghub/internal/models"
)

var requestValidator = validator.New(validator.WithRequiredStructEnabled())

var loginPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

func init() {
	requestValidator.RegisterValidation("login_charset", func(fl validator.FieldLevel) bool {
		return loginPattern.MatchString(fl.Field().String())
	})
	requestValidator.RegisterValidation("likestatus", func(fl validator.FieldLevel) bool {
		return models.LikeStatus(fl.Field().String()).Valid()
	})
}

// contentPolicy strips markup from user-supplied text before it is stored.
var contentPolicy = bluemonday.StrictPolicy()

func sanitize(s string) string {
	return strings.TrimSpace(contentPolicy.Sanitize(s))
}

// decodeAndValidate decodes a JSON body into dst and runs struct validation.
// Every violation is reported as a field-scoped message so the client can
// attribute it, matching the errorsMessages contract.
func decodeAndValidate(body io.Reader, dst any) []auth.FieldError {
	decoder := json.NewDecoder(body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return []auth.FieldError{{Message: "invalid JSON body"}}
	}

	if err := decoder.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return []auth.FieldError{{Message: "invalid JSON body"}}
	}

	if err := requestValidator.Struct(dst); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
			fieldErrors := make([]auth.FieldError, 0, len(validationErrors))
			for _, ve := range validationErrors {
				fieldErrors = append(fieldErrors, fieldErrorFor(ve))
			}
			return fieldErrors
		}
		return []auth.FieldError{{Message: "invalid request payload"}}
	}

	return nil
}

func fieldErrorFor(ve validator.FieldError) auth.FieldError {
	field := jsonFieldName(ve.Field())

	var message string
	switch ve.Tag() {
	case "required", "required_if":
		message = fmt.Sprintf("%s is required", field)
	case "email":
		message = "invalid email format"
	case "url":
		message = fmt.Sprintf("%s must be a valid URL", field)
	case "min":
		message = fmt.Sprintf("%s must be at least %s characters", field, ve.Param())
	case "max":
		message = fmt.Sprintf("%s must be at most %s characters", field, ve.Param())
	case "oneof":
		message = fmt.Sprintf("%s must be one of: %s", field, ve.Param())
	case "login_charset":
		message = fmt.Sprintf("%s may only contain letters, digits, underscore and hyphen", field)
	case "likestatus":
		message = fmt.Sprintf("%s must be None, Like or Dislike", field)
	default:
		message = fmt.Sprintf("invalid %s", field)
	}

	return auth.FieldError{Message: message, Field: field}
}

func jsonFieldName(structField string) string {
	if structField == "" {
		return structField
	}
	return strings.ToLower(structField[:1]) + structField[1:]
}
