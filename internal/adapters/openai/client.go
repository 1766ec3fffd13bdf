// Package openai adapts the OpenAI API to the bot: Whisper transcription,
// job generation from a résumé and the streaming career assistant.
package openai

import (
	"errors"
	"net/http"
	"time"

	oai "github.com/sashabaranov/go-openai"

	"github.com/okian/matchbot/pkg/logger"
	"github.com/okian/matchbot/pkg/metrics"
)

const (
	defaultModel              = "gpt-4"
	defaultChatModel          = oai.GPT4oMini
	defaultTranscriptionModel = oai.Whisper1
	defaultTimeout            = 60 * time.Second

	service = "openai"
)

// Client wraps a go-openai client with the models the bot uses.
type Client struct {
	api                *oai.Client
	baseURL            string
	http               *http.Client
	model              string
	chatModel          string
	transcriptionModel string
	log                logger.Logger
}

// New creates a Client authenticated with apiKey.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		http:               &http.Client{Timeout: defaultTimeout},
		model:              defaultModel,
		chatModel:          defaultChatModel,
		transcriptionModel: defaultTranscriptionModel,
		log:                logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	cfg := oai.DefaultConfig(apiKey)
	if c.baseURL != "" {
		cfg.BaseURL = c.baseURL
	}
	cfg.HTTPClient = c.http
	c.api = oai.NewClientWithConfig(cfg)
	return c
}

// StatusCode extracts the upstream HTTP status from an error returned by this
// package. It is 0 for transport failures.
func StatusCode(err error) int {
	var apiErr *oai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *oai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}

func record(op string, err error, start time.Time) {
	status := http.StatusOK
	if err != nil {
		status = StatusCode(err)
	}
	metrics.RecordUpstreamCall(service, op, status, time.Since(start))
}
