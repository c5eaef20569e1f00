package auth

import (
	"errors"
	"fmt"
)

// ErrUnauthenticated is the uniform failure for bad credentials, banned
// users, and invalid or rotated-out tokens. Handlers map it to 401 without
// leaking which check failed.
var ErrUnauthenticated = errors.New("unauthenticated")

type FieldError struct {
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// BadRequestError carries the field-scoped message list returned to clients
// as the errorsMessages body.
type BadRequestError struct {
	Errors []FieldError
}

func (e *BadRequestError) Error() string {
	if len(e.Errors) == 0 {
		return "bad request"
	}
	if e.Errors[0].Field == "" {
		return e.Errors[0].Message
	}
	return fmt.Sprintf("%s: %s", e.Errors[0].Field, e.Errors[0].Message)
}

func NewBadRequest(message, field string) *BadRequestError {
	return &BadRequestError{Errors: []FieldError{{Message: message, Field: field}}}
}
