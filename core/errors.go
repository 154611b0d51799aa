package core

import "github.com/pkg/errors"

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

// ValidationError is a client error (400).
// Slug is a stable machine readable identifier of the failure (eg: "missing-slug").
type ValidationError struct {
	Err    error
	Slug   string
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{Err: err, Fields: flds}
}

// NewSlugValidationError returns a ValidationError identified by slug.
func NewSlugValidationError(slug string) error {
	return &ValidationError{Err: errors.New(slug), Slug: slug}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		if len(err.Fields) > 0 {
			return err.Fields[0].Field + ": " + err.Fields[0].Error
		}
		return ""
	}
	return err.Err.Error()
}

// NotFoundError is returned when a requested resource does not exist (404).
type NotFoundError struct {
	Slug string
}

func NewNotFoundError(slug string) error {
	return &NotFoundError{Slug: slug}
}

func (err NotFoundError) Error() string {
	return err.Slug
}

// PermissionError is returned when the user is not allowed to perform an action (403).
type PermissionError struct {
	Msg string
}

func NewPermissionError(msg string) error {
	return &PermissionError{Msg: msg}
}

func (err PermissionError) Error() string {
	return err.Msg
}

// IsNotFound reports whether the cause of err is a NotFoundError.
func IsNotFound(err error) bool {
	_, ok := errors.Cause(err).(*NotFoundError)
	return ok
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
