// Package notify alerts an operator when a pipeline run fails.
package notify

import (
	"context"
	"errors"
	"fmt"
	"html"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/okian/matchbot/internal/domain/model"
)

// ErrNotify wraps delivery failures.
var ErrNotify = errors.New("alert delivery failed")

// Alerter is told about failed runs.
type Alerter interface {
	RunFailed(ctx context.Context, run model.Run) error
}

// Nop drops every alert.
type Nop struct{}

// RunFailed implements Alerter.
func (Nop) RunFailed(context.Context, model.Run) error { return nil }

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram posts alerts to one chat.
type Telegram struct {
	bot    sender
	chatID int64
}

// NewTelegram logs the bot in and targets chatID.
func NewTelegram(token string, chatID int64) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("%w: init telegram bot: %w", ErrNotify, err)
	}
	return &Telegram{bot: bot, chatID: chatID}, nil
}

// RunFailed implements Alerter.
func (t *Telegram) RunFailed(ctx context.Context, run model.Run) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(t.chatID, failureText(run))
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("%w: %w", ErrNotify, err)
	}
	return nil
}

func failureText(run model.Run) string {
	return fmt.Sprintf(
		"⚠️ <b>matchbot run failed</b>\n"+
			"🆔 <code>%s</code>\n"+
			"📨 %s (%s)\n"+
			"⏱ %s\n"+
			"❌ %s",
		html.EscapeString(run.ID),
		html.EscapeString(run.From),
		html.EscapeString(string(run.InputKind)),
		run.Duration().Round(time.Millisecond),
		html.EscapeString(run.Error),
	)
}
