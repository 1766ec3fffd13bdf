package hrflow

import (
	"errors"
	"fmt"
)

// Sentinel error kinds for this package.
var (
	ErrUpstream    = errors.New("hrflow upstream error")
	ErrDecode      = errors.New("hrflow decode failed")
	ErrEmptyResult = errors.New("hrflow returned no result")
)

// APIError is a non-2xx answer from the API. It unwraps to ErrUpstream.
type APIError struct {
	Op     string
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("hrflow %s: status %d: %s", e.Op, e.Status, e.Body)
}

// Unwrap implements errors unwrapping.
func (e *APIError) Unwrap() error {
	return ErrUpstream
}
