package twilio

import (
	"fmt"

	"github.com/twilio/twilio-go/twiml"
)

// ContentTypeXML is the content type of TwiML responses.
const ContentTypeXML = "text/xml"

// MessageResponse renders a TwiML document replying with one message.
func MessageResponse(body string) (string, error) {
	doc, err := twiml.Messages([]twiml.Element{&twiml.MessagingMessage{Body: body}})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrTwiML, err)
	}
	return doc, nil
}
