package openai

import (
	"context"
	"fmt"
	"strings"
	"time"

	oai "github.com/sashabaranov/go-openai"

	"github.com/okian/matchbot/internal/domain/prompts"
)

// GenerateJob writes a job posting for which the résumé is an ideal fit.
// An empty completion returns "" without error.
func (c *Client) GenerateJob(ctx context.Context, resume string) (job string, err error) {
	start := time.Now()
	defer func() { record("generate_job", err, start) }()

	resp, err := c.api.CreateChatCompletion(ctx, oai.ChatCompletionRequest{
		Model: c.model,
		Messages: []oai.ChatCompletionMessage{
			{Role: oai.ChatMessageRoleSystem, Content: prompts.JobPersona},
			{Role: oai.ChatMessageRoleUser, Content: prompts.JobFromResume(resume)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrGenerate, err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// Complete answers a single user prompt with the generation model, capped
// at maxTokens. An empty completion returns "" without error.
func (c *Client) Complete(ctx context.Context, prompt string, maxTokens int) (text string, err error) {
	start := time.Now()
	defer func() { record("complete", err, start) }()

	resp, err := c.api.CreateChatCompletion(ctx, oai.ChatCompletionRequest{
		Model:     c.model,
		MaxTokens: maxTokens,
		Messages: []oai.ChatCompletionMessage{
			{Role: oai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrGenerate, err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
