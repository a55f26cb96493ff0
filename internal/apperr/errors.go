// Package apperr defines the error taxonomy shared by the server and the sync client.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrValidation      = errors.New("validation failed")
	ErrTransport       = errors.New("transport error")
	ErrRateLimited     = errors.New("rate limited")
)

// Kind is the category a failure falls into.
type Kind string

const (
	KindNotFound        Kind = "not_found"
	KindUnauthenticated Kind = "unauthenticated"
	KindValidation      Kind = "validation"
	KindTransport       Kind = "transport"
)

// KindOf classifies err. Anything not explicitly categorized is a transport failure.
func KindOf(err error) Kind {
	switch {
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrUnauthenticated):
		return KindUnauthenticated
	case errors.Is(err, ErrValidation):
		return KindValidation
	default:
		return KindTransport
	}
}

// Validation wraps a validation message so that errors.Is(err, ErrValidation) holds.
func Validation(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}

// Transport wraps cause as a transport failure.
func Transport(cause error) error {
	if cause == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrTransport, cause)
}
