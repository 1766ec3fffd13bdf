// Package twilio adapts the Twilio WhatsApp gateway: outbound messages,
// TwiML acknowledgements and inbound webhook signature checks.
package twilio

import (
	"context"
	"fmt"
	"time"

	twilio "github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/okian/matchbot/pkg/logger"
	"github.com/okian/matchbot/pkg/metrics"
)

// messageCreator is the slice of the Twilio REST API the Messenger uses.
type messageCreator interface {
	CreateMessage(params *openapi.CreateMessageParams) (*openapi.ApiV2010Message, error)
}

// Messenger sends WhatsApp messages from a fixed sender.
type Messenger struct {
	api  messageCreator
	from string
	log  logger.Logger
}

// MessengerOption configures a Messenger.
type MessengerOption func(*Messenger)

// WithLogger sets the messenger logger.
func WithLogger(l logger.Logger) MessengerOption {
	return func(m *Messenger) {
		if l != nil {
			m.log = l
		}
	}
}

// withAPI swaps the REST API, for tests.
func withAPI(api messageCreator) MessengerOption {
	return func(m *Messenger) {
		m.api = api
	}
}

// NewMessenger creates a Messenger authenticated with the account SID/token.
func NewMessenger(accountSID, authToken, from string, opts ...MessengerOption) *Messenger {
	rest := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	m := &Messenger{api: rest.Api, from: from, log: logger.Nop()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Send delivers body to the recipient address (e.g. "whatsapp:+33...").
// The Twilio SDK call is not context aware; ctx is checked before sending.
func (m *Messenger) Send(ctx context.Context, to, body string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("twilio send: %w", err)
	}
	params := &openapi.CreateMessageParams{}
	params.SetFrom(m.from)
	params.SetTo(to)
	params.SetBody(body)

	start := time.Now()
	msg, err := m.api.CreateMessage(params)
	if err != nil {
		metrics.RecordUpstreamCall("twilio", "messages.create", 0, time.Since(start))
		metrics.RecordMessageSent(false)
		return fmt.Errorf("%w: %w", ErrSend, err)
	}
	metrics.RecordUpstreamCall("twilio", "messages.create", 201, time.Since(start))
	metrics.RecordMessageSent(true)

	sid := ""
	if msg != nil && msg.Sid != nil {
		sid = *msg.Sid
	}
	m.log.Debug(ctx, "whatsapp message sent", logger.String("sid", sid), logger.Int("chars", len(body)))
	return nil
}
