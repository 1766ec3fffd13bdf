package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/okian/matchbot/internal/adapters/media"
	"github.com/okian/matchbot/internal/domain/format"
	"github.com/okian/matchbot/internal/domain/model"
	"github.com/okian/matchbot/pkg/logger"
)

// resolveText classifies the attachment and turns the message into the
// search text. Refused inputs come back as a rejection carrying the reply.
func (p *Pipeline) resolveText(ctx context.Context, log logger.Logger, m model.InboundMessage) (string, model.MediaKind, error) { //nolint:gocritic // hugeParam
	msgs := p.fmt.Messages()
	text := format.Clean(m.Body)
	kind := model.MediaNone

	if m.HasMedia() {
		if m.MediaURL == "" {
			return "", kind, reject(ErrMissingMediaURL, msgs.MissingMediaURL)
		}
		kind = media.Classify(m.MediaContentType)
		log.Info(ctx, "attachment classified",
			logger.String("content_type", m.MediaContentType), logger.String("kind", string(kind)))

		var err error
		switch kind {
		case model.MediaAudio:
			text, err = p.fromAudio(ctx, log, m)
		case model.MediaResume:
			text, err = p.fromResume(ctx, log, m)
		default:
			return "", kind, reject(ErrUnsupportedMedia, p.fmt.Unsupported(m.MediaContentType))
		}
		if err != nil {
			return "", kind, err
		}
	}

	if text == "" {
		return "", kind, reject(ErrEmptyText, msgs.NoText)
	}
	return text, kind, nil
}

func (p *Pipeline) fromAudio(ctx context.Context, log logger.Logger, m model.InboundMessage) (string, error) { //nolint:gocritic // hugeParam
	defer p.step(ctx, log, "transcribe")()

	path, err := p.deps.Downloader.Download(ctx, m.MediaURL, m.MediaContentType, model.MediaAudio)
	if err != nil {
		return "", fmt.Errorf("download audio: %w", err)
	}
	defer p.remove(ctx, log, path)

	text, err := p.deps.Transcriber.Transcribe(ctx, path, p.settings.TranscribeLanguage)
	if err != nil {
		return "", fmt.Errorf("transcribe audio: %w", err)
	}
	return format.Clean(text), nil
}

func (p *Pipeline) fromResume(ctx context.Context, log logger.Logger, m model.InboundMessage) (string, error) { //nolint:gocritic // hugeParam
	defer p.step(ctx, log, "resume")()
	msgs := p.fmt.Messages()

	if err := p.deps.Messenger.Send(ctx, m.From, msgs.ResumeDetected); err != nil {
		return "", fmt.Errorf("send resume notice: %w", err)
	}

	path, err := p.deps.Downloader.Download(ctx, m.MediaURL, m.MediaContentType, model.MediaResume)
	if err != nil {
		return "", fmt.Errorf("download resume: %w", err)
	}
	defer p.remove(ctx, log, path)

	resume, err := p.deps.HrFlow.OCR(ctx, path)
	if err != nil {
		return "", fmt.Errorf("extract resume text: %w", err)
	}
	if strings.TrimSpace(resume) == "" {
		return "", reject(ErrEmptyResume, msgs.ResumeEmpty)
	}

	if err := p.deps.Messenger.Send(ctx, m.From, msgs.Generating); err != nil {
		return "", fmt.Errorf("send generation notice: %w", err)
	}
	job, err := p.deps.Generator.GenerateJob(ctx, resume)
	if err != nil {
		return "", fmt.Errorf("generate job: %w", err)
	}
	job = format.Clean(job)
	if job == "" {
		return "", reject(ErrEmptyGeneration, msgs.GenerationEmpty)
	}
	return job, nil
}

func (p *Pipeline) remove(ctx context.Context, log logger.Logger, path string) {
	if err := p.deps.Remove(path); err != nil {
		log.Warn(ctx, "failed to remove staged media", logger.String("path", path), logger.Error(err))
	}
}
