// Package vertex generates job postings with Gemini on Vertex AI.
package vertex

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/vertexai/genai"

	"github.com/okian/matchbot/internal/domain/prompts"
	"github.com/okian/matchbot/pkg/metrics"
)

// ErrGenerate wraps every generation failure.
var ErrGenerate = errors.New("vertex generation failed")

const defaultModel = "gemini-1.5-flash"

// contentGenerator is the part of *genai.GenerativeModel the generator uses.
type contentGenerator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// Generator writes job postings from résumés.
type Generator struct {
	client *genai.Client
	model  contentGenerator
}

// New connects to Vertex AI in project/location. An empty model name uses
// gemini-1.5-flash.
func New(ctx context.Context, project, location, model string) (*Generator, error) {
	client, err := genai.NewClient(ctx, project, location)
	if err != nil {
		return nil, fmt.Errorf("%w: create client: %w", ErrGenerate, err)
	}
	if model == "" {
		model = defaultModel
	}

	m := client.GenerativeModel(model)
	m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(prompts.JobPersona)}}
	m.SetTemperature(0.4)
	m.SetMaxOutputTokens(2048)

	return &Generator{client: client, model: m}, nil
}

// GenerateJob mirrors the OpenAI backend: same persona, same instruction.
func (g *Generator) GenerateJob(ctx context.Context, resume string) (job string, err error) {
	start := time.Now()
	defer func() {
		status := 200
		if err != nil {
			status = 0
		}
		metrics.RecordUpstreamCall("vertex", "generate_job", status, time.Since(start))
	}()

	resp, err := g.model.GenerateContent(ctx, genai.Text(prompts.JobFromResume(resume)))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrGenerate, err)
	}
	return strings.TrimSpace(responseText(resp)), nil
}

// Close releases the client connection.
func (g *Generator) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return b.String()
}
