package twilio

import "errors"

// Sentinel error kinds for this package.
var (
	ErrSend  = errors.New("twilio send failed")
	ErrTwiML = errors.New("twiml render failed")
)
