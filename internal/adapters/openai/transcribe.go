package openai

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	oai "github.com/sashabaranov/go-openai"

	"github.com/okian/matchbot/pkg/logger"
)

// Transcribe converts the audio file at path to text. An empty language lets
// the model detect it.
func (c *Client) Transcribe(ctx context.Context, path, language string) (string, error) {
	return c.transcribe(ctx, oai.AudioRequest{
		Model:    c.transcriptionModel,
		FilePath: path,
		Language: language,
		Format:   oai.AudioResponseFormatJSON,
	})
}

// TranscribeReader is Transcribe for an in-memory upload. name carries the
// extension the API uses to detect the container format.
func (c *Client) TranscribeReader(ctx context.Context, name string, r io.Reader, language string) (string, error) {
	return c.transcribe(ctx, oai.AudioRequest{
		Model:    c.transcriptionModel,
		FilePath: name,
		Reader:   r,
		Language: language,
		Format:   oai.AudioResponseFormatJSON,
	})
}

func (c *Client) transcribe(ctx context.Context, req oai.AudioRequest) (text string, err error) {
	start := time.Now()
	defer func() { record("transcribe", err, start) }()

	resp, err := c.api.CreateTranscription(ctx, req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrTranscribe, err)
	}
	text = strings.TrimSpace(resp.Text)
	c.log.Debug(ctx, "audio transcribed", logger.Int("chars", len(text)), logger.Duration("took", time.Since(start)))
	return text, nil
}
