package dashboard

import "errors"

var (
	// ErrRejectFailed is returned when at least one rejection workflow call
	// did not succeed.
	ErrRejectFailed = errors.New("reject failed")
	// ErrNoWorkflow is returned when no rejection workflow URL is configured.
	ErrNoWorkflow = errors.New("rejection workflow not configured")
	// ErrExport is returned when the spreadsheet cannot be built.
	ErrExport = errors.New("export failed")
)
