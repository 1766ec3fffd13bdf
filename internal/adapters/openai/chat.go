package openai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	oai "github.com/sashabaranov/go-openai"

	"github.com/okian/matchbot/internal/domain/model"
	"github.com/okian/matchbot/internal/domain/prompts"
)

// StreamChat answers the conversation, calling emit for every non-empty
// content delta in order. An emit error stops the stream and is returned.
func (c *Client) StreamChat(ctx context.Context, history []model.ChatMessage, chatCtx *model.ChatContext, emit func(string) error) (err error) {
	start := time.Now()
	defer func() { record("chat", err, start) }()

	msgs := make([]oai.ChatCompletionMessage, 0, len(history)+1)
	msgs = append(msgs, oai.ChatCompletionMessage{Role: oai.ChatMessageRoleSystem, Content: prompts.ChatSystem(chatCtx)})
	for _, m := range history {
		role := m.Role
		if role != oai.ChatMessageRoleAssistant {
			role = oai.ChatMessageRoleUser
		}
		msgs = append(msgs, oai.ChatCompletionMessage{Role: role, Content: m.Content})
	}

	stream, err := c.api.CreateChatCompletionStream(ctx, oai.ChatCompletionRequest{
		Model:    c.chatModel,
		Messages: msgs,
		Stream:   true,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrChat, err)
	}
	defer func() { _ = stream.Close() }()

	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: %w", ErrChat, err)
		}
		for _, ch := range resp.Choices {
			if ch.Delta.Content == "" {
				continue
			}
			if err := emit(ch.Delta.Content); err != nil {
				return err
			}
		}
	}
}
