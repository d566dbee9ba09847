package models

import "errors"

// Application-wide standard errors
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input data")

	// Dispatch errors
	ErrValidation       = errors.New("required field is missing")
	ErrBusy             = errors.New("a request for this form is already in flight")
	ErrUnknownOperation = errors.New("unknown analysis operation")

	// Analysis service failures. ErrServer covers non-2xx statuses and
	// undecodable bodies; the user sees both the same way as ErrTransport.
	ErrTransport = errors.New("analysis service is unreachable")
	ErrServer    = errors.New("analysis service returned an invalid response")
)

// ValidationError names the field that failed validation. It unwraps to ErrValidation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Field + " is required"
}

func (e *ValidationError) Unwrap() error { return ErrValidation }
