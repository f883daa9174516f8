package catalog

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("album not found")
	ErrRescanFailed = errors.New("rescan failed")
)

// ValidationError is a local input problem caught before any request is made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ServiceError carries a failure reported by the remote service.
type ServiceError struct {
	Status  int
	Message string
}

func (e *ServiceError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("service error (HTTP %d)", e.Status)
	}
	return e.Message
}

// Message extracts the text to show a user for err: the server-provided
// message when there is one, the error text otherwise.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var se *ServiceError
	if errors.As(err, &se) && se.Message != "" {
		return se.Message
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	return err.Error()
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
