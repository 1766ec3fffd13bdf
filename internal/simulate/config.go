// Package simulate replays scripted WhatsApp conversations against a running
// matchbot server, posting the same form payloads Twilio would send.
package simulate

import "time"

// Config holds configuration for a simulation run.
type Config struct {
	BaseURL        string        // Base URL of the service
	WebhookPath    string        // Path of the WhatsApp webhook
	PublicURL      string        // URL the signature is computed over; defaults to BaseURL+WebhookPath
	AuthToken      string        // Twilio auth token; empty sends unsigned requests
	Senders        int           // Number of simulated WhatsApp users
	Workers        int           // Number of concurrent workers
	DuplicateEvery int           // Redeliver every Nth message with the same SID; 0 disables
	Timeout        time.Duration // HTTP request timeout
	Settle         time.Duration // Wait before reading /stats
	OutputFile     string        // Output file for the generated conversations
	LogFile        string        // Log file for the run
	Verbose        bool          // Enable verbose logging
}

// Message is one inbound WhatsApp message as Twilio posts it.
type Message struct {
	SID        string `json:"sid"`
	From       string `json:"from"`
	Body       string `json:"body"`
	MediaURL   string `json:"media_url,omitempty"`
	MediaType  string `json:"media_type,omitempty"`
	Redelivery bool   `json:"redelivery,omitempty"`
}

// Conversation is the ordered list of messages from one sender.
type Conversation struct {
	From     string    `json:"from"`
	Messages []Message `json:"messages"`
}

// Stats holds run statistics.
type Stats struct {
	Conversations   int
	MessagesSent    int
	Replied         int
	Rejected        int
	Failed          int
	Redeliveries    int
	ServerRuns      int
	ServerStatsRead bool
	StartTime       time.Time
	EndTime         time.Time
	Duration        time.Duration
}
