package repository

import "errors"

// Sentinel kinds for run log errors.
var (
	ErrNotFound     = errors.New("run not found")
	ErrInvalidLimit = errors.New("invalid run limit")
	ErrStorage      = errors.New("run storage error")
)
