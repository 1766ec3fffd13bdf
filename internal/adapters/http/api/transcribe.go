package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"syscall"

	"github.com/okian/matchbot/internal/adapters/openai"
	"github.com/okian/matchbot/pkg/logger"
)

const (
	defaultMaxAudioBytes = 25 << 20
	multipartOverhead    = 1 << 20
	defaultRecordingName = "recording.webm"
)

// TranscribeHandler transcribes dashboard voice recordings.
type TranscribeHandler struct {
	transcriber Transcriber
	ready       Check
	language    string
	maxBytes    int64
	log         logger.Logger
}

// NewTranscribeHandler creates a transcription handler. maxBytes below one
// uses 25MB.
func NewTranscribeHandler(t Transcriber, ready Check, language string, maxBytes int64, log logger.Logger) *TranscribeHandler {
	if maxBytes < 1 {
		maxBytes = defaultMaxAudioBytes
	}
	if log == nil {
		log = logger.Nop()
	}
	return &TranscribeHandler{transcriber: t, ready: ready, language: language, maxBytes: maxBytes, log: log.Named("transcribe")}
}

type transcribeResponse struct {
	Text string `json:"text"`
}

// HandleTranscribe handles POST /api/transcribe multipart uploads with an
// "audio" part.
func (h *TranscribeHandler) HandleTranscribe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	ctx := r.Context()
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+multipartOverhead)
	if err := r.ParseMultipartForm(h.maxBytes + multipartOverhead); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, http.StatusBadRequest, "Audio file too large. Maximum size is 25MB")
			return
		}
		writeError(w, http.StatusBadRequest, "No audio file provided")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("audio")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No audio file provided")
		return
	}
	defer func() { _ = file.Close() }()
	if header.Size > h.maxBytes {
		writeError(w, http.StatusBadRequest, "Audio file too large. Maximum size is 25MB")
		return
	}
	if err := h.ready.err(); err != nil {
		h.log.Error(ctx, "transcription not configured", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "API configuration error")
		return
	}

	name := header.Filename
	if name == "" {
		name = defaultRecordingName
	}
	text, err := h.transcriber.TranscribeReader(ctx, name, file, h.language)
	if err != nil {
		status, msg := transcribeFailure(err)
		h.log.Error(ctx, "transcription failed",
			logger.Int("status", status),
			logger.Error(err))
		writeError(w, status, msg)
		return
	}
	writeJSON(w, http.StatusOK, transcribeResponse{Text: text})
}

// transcribeFailure maps an upstream error to the status shown to the browser.
func transcribeFailure(err error) (int, string) {
	switch openai.StatusCode(err) {
	case http.StatusUnauthorized:
		return http.StatusInternalServerError, "Invalid OpenAI API key"
	case http.StatusTooManyRequests:
		return http.StatusTooManyRequests, "Rate limit reached. Please try again in a moment."
	}
	if isConnectionFailure(err) {
		return http.StatusServiceUnavailable, "Connection to OpenAI failed. Please try again."
	}
	return http.StatusInternalServerError, "Transcription failed"
}

func isConnectionFailure(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, syscall.ECONNRESET) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
