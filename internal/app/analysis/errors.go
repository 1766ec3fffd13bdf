package analysis

import "errors"

var (
	// ErrNotFound is returned when the profile or the job cannot be fetched.
	ErrNotFound = errors.New("profile or job not found")
	// ErrEmail is returned when the rejection email cannot be written.
	ErrEmail = errors.New("email generation failed")
)
