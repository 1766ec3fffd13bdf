package media

import "errors"

// Sentinel error kinds for this package.
var (
	ErrDownload = errors.New("media download failed")
)
