package records

import (
	"errors"
	"fmt"
)

// ValidationError reports an input field that could not be coerced. It is
// always returned before any backend call is made.
type ValidationError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("%s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("%s: %s (got %v)", e.Field, e.Reason, e.Value)
}

// StorageError reports a failure signalled by the backend itself, either at
// the top level or for an individual record. Message is the backend text.
type StorageError struct {
	Table   string
	Op      string
	Message string
}

func (e *StorageError) Error() string {
	return e.Message
}

// TransportError reports that the backend could not be reached or answered
// with something that is not a record response.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsValidation reports whether err is or wraps a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsStorage reports whether err is or wraps a *StorageError.
func IsStorage(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}

// IsTransport reports whether err is or wraps a *TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
