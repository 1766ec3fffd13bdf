package simulate

import "time"

// Default configuration constants.
const (
	DefaultWebhookPath = "/twilio/whatsapp"
	DefaultSenders     = 20
	DefaultTimeout     = 30 * time.Second
	DefaultSettle      = 10 * time.Second
)

// HTTP status code constants.
const (
	StatusOK = 200
)

// Worker configuration constants.
const (
	WorkerChannelMultiplier = 2
)

// Runner configuration constants.
const (
	PercentageMultiplier = 100
)
