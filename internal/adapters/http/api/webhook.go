package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/okian/matchbot/internal/adapters/twilio"
	service "github.com/okian/matchbot/internal/app"
	"github.com/okian/matchbot/internal/domain/format"
	"github.com/okian/matchbot/internal/domain/model"
	"github.com/okian/matchbot/pkg/logger"
)

// WebhookHandler acknowledges WhatsApp deliveries and hands them to the
// intake; the reply to the sender happens later, out of band.
type WebhookHandler struct {
	intake    Intake
	signature SignatureChecker
	messages  format.Messages
	log       logger.Logger
	now       func() time.Time
}

// NewWebhookHandler creates a webhook handler. A nil signature checker
// accepts unsigned requests.
func NewWebhookHandler(intake Intake, signature SignatureChecker, messages format.Messages, log logger.Logger) *WebhookHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &WebhookHandler{
		intake:    intake,
		signature: signature,
		messages:  messages,
		log:       log.Named("webhook"),
		now:       time.Now,
	}
}

// HandleWhatsApp handles POST /twilio/whatsapp requests.
func (h *WebhookHandler) HandleWhatsApp(w http.ResponseWriter, r *http.Request) {
	const op = "api.twilio_whatsapp"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		h.log.Warn(ctx, "unreadable webhook form", logger.Error(WrapKind(op, ErrBadRequest, err)))
		writeError(w, http.StatusBadRequest, "invalid form")
		return
	}
	if h.signature != nil && !h.signature.Valid(r) {
		h.log.Warn(ctx, "rejected unsigned webhook", logger.String("remote", r.RemoteAddr))
		writeError(w, http.StatusForbidden, "invalid signature")
		return
	}

	// The run may only start once the TwiML answer has left the handler.
	acked := make(chan struct{})
	defer close(acked)
	m := inboundFromForm(r, h.now())
	m.Acked = acked
	reply := h.messages.Ack
	adm, err := h.intake.Enqueue(ctx, m)
	switch {
	case err != nil:
		h.log.Error(ctx, "webhook intake failed",
			logger.String("message_sid", m.MessageSID),
			logger.Error(WrapKind(op, ErrBackpressure, err)))
		reply = h.messages.Busy
	case adm == service.Busy:
		reply = h.messages.Busy
	}
	h.log.Info(ctx, "webhook acknowledged",
		logger.String("message_sid", m.MessageSID),
		logger.String("admission", adm.String()),
		logger.Int("num_media", m.NumMedia))

	doc, err := twilio.MessageResponse(reply)
	if err != nil {
		h.log.Error(ctx, "twiml render failed", logger.Error(err))
		w.WriteHeader(http.StatusOK)
		return
	}
	w.Header().Set("Content-Type", twilio.ContentTypeXML)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(doc))
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func inboundFromForm(r *http.Request, now time.Time) model.InboundMessage {
	numMedia, err := strconv.Atoi(strings.TrimSpace(r.PostFormValue("NumMedia")))
	if err != nil || numMedia < 0 {
		numMedia = 0
	}
	return model.InboundMessage{
		MessageSID:       r.PostFormValue("MessageSid"),
		From:             r.PostFormValue("From"),
		Body:             r.PostFormValue("Body"),
		NumMedia:         numMedia,
		MediaURL:         r.PostFormValue("MediaUrl0"),
		MediaContentType: r.PostFormValue("MediaContentType0"),
		ReceivedAt:       now,
	}
}
