package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/okian/matchbot/internal/domain/model"
	"github.com/okian/matchbot/pkg/logger"
)

const maxChatBody = 1 << 20

// ChatHandler streams the career assistant's replies.
type ChatHandler struct {
	chat  Chatter
	ready Check
	log   logger.Logger
}

// NewChatHandler creates a chat handler.
func NewChatHandler(c Chatter, ready Check, log logger.Logger) *ChatHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &ChatHandler{chat: c, ready: ready, log: log.Named("chat")}
}

type chatRequest struct {
	Messages []model.ChatMessage `json:"messages"`
	Context  *model.ChatContext  `json:"context"`
}

// HandleChat handles POST /api/chat requests. Each text delta is written as
// a `0:"<json string>"` line; a failure after streaming started is written
// as a `3:"<json string>"` line.
func (h *ChatHandler) HandleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	ctx := r.Context()
	var req chatRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxChatBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(req.Messages) == 0 {
		writeError(w, http.StatusBadRequest, "messages are required")
		return
	}
	if err := h.ready.err(); err != nil {
		h.log.Error(ctx, "chat not configured", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "API configuration error")
		return
	}

	flusher, _ := w.(http.Flusher)
	started := false
	emit := func(delta string) error {
		if !started {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.Header().Set("Cache-Control", "no-cache")
			w.WriteHeader(http.StatusOK)
			started = true
		}
		if err := writeStreamPart(w, '0', delta); err != nil {
			return err
		}
		if flusher != nil {
			flusher.Flush()
		}
		return nil
	}

	err := h.chat.StreamChat(ctx, req.Messages, req.Context, emit)
	if err == nil {
		if !started {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.WriteHeader(http.StatusOK)
		}
		return
	}
	h.log.Error(ctx, "chat stream failed", logger.Bool("started", started), logger.Error(err))
	if !started {
		writeError(w, http.StatusInternalServerError, "Chat failed")
		return
	}
	_ = writeStreamPart(w, '3', "Chat failed")
	if flusher != nil {
		flusher.Flush()
	}
}

func writeStreamPart(w io.Writer, kind byte, text string) error {
	b, err := json.Marshal(text)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%c:%s\n", kind, b); err != nil {
		return err
	}
	return nil
}
