package twilio

import (
	"net/http"

	"github.com/twilio/twilio-go/client"
)

// SignatureHeader carries the request signature computed by Twilio.
const SignatureHeader = "X-Twilio-Signature"

// SignatureValidator checks that a webhook was signed with our auth token.
type SignatureValidator struct {
	validator client.RequestValidator
	publicURL string
}

// NewSignatureValidator creates a validator. publicURL is the webhook URL as
// configured in the Twilio console; when empty, the URL is rebuilt from the
// request.
func NewSignatureValidator(authToken, publicURL string) *SignatureValidator {
	return &SignatureValidator{
		validator: client.NewRequestValidator(authToken),
		publicURL: publicURL,
	}
}

// Valid reports whether r carries a valid signature. r.ParseForm must have
// been called.
func (v *SignatureValidator) Valid(r *http.Request) bool {
	sig := r.Header.Get(SignatureHeader)
	if sig == "" {
		return false
	}
	params := make(map[string]string, len(r.PostForm))
	for k, vals := range r.PostForm {
		if len(vals) > 0 {
			params[k] = vals[0]
		}
	}
	return v.validator.Validate(v.url(r), params, sig)
}

func (v *SignatureValidator) url(r *http.Request) string {
	if v.publicURL != "" {
		return v.publicURL
	}
	scheme := "https"
	if r.TLS == nil && r.Header.Get("X-Forwarded-Proto") == "" {
		scheme = "http"
	}
	if p := r.Header.Get("X-Forwarded-Proto"); p != "" {
		scheme = p
	}
	return scheme + "://" + r.Host + r.URL.RequestURI()
}
