package kgclient

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport is returned when a request could not be performed or its
	// body could not be read.
	ErrTransport = errors.New("knowledge graph transport failure")
	// ErrDecode is returned when a response body is not valid JSON of the
	// expected shape.
	ErrDecode = errors.New("knowledge graph response decode failure")
	// ErrInvalidInput is returned when request parameters fail validation.
	// No request is issued in that case.
	ErrInvalidInput = errors.New("invalid input")
)

// APIError is an application-level or HTTP-level failure reported by the
// backend.
type APIError struct {
	Status int    // HTTP status code
	Code   int    // envelope code, 0 when absent
	Msg    string // envelope message or response body excerpt
}

func (e *APIError) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("knowledge graph api: status %d code %d", e.Status, e.Code)
	}
	return fmt.Sprintf("knowledge graph api: status %d code %d: %s", e.Status, e.Code, e.Msg)
}

// IsAPIError reports whether err wraps an *APIError.
func IsAPIError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}
