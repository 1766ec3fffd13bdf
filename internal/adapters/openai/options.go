package openai

import (
	"net/http"
	"time"

	"github.com/okian/matchbot/pkg/logger"
)

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at another API root, e.g. a proxy or a test server.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = u
	}
}

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout bounds every request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithModel sets the job generation model.
func WithModel(m string) Option {
	return func(c *Client) {
		if m != "" {
			c.model = m
		}
	}
}

// WithChatModel sets the assistant model.
func WithChatModel(m string) Option {
	return func(c *Client) {
		if m != "" {
			c.chatModel = m
		}
	}
}

// WithTranscriptionModel sets the speech-to-text model.
func WithTranscriptionModel(m string) Option {
	return func(c *Client) {
		if m != "" {
			c.transcriptionModel = m
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}
