package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/matchbot/internal/domain/model"
)

type fakeBot struct {
	sent []tgbotapi.Chattable
	err  error
}

func (f *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, f.err
}

func failedRun() model.Run {
	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	return model.Run{
		ID:         "run-1",
		From:       "whatsapp:+33600000000",
		InputKind:  model.MediaAudio,
		Error:      "hrflow score: <500>",
		StartedAt:  start,
		FinishedAt: start.Add(1500 * time.Millisecond),
	}
}

func TestTelegramRunFailed(t *testing.T) {
	Convey("Given a failed run", t, func() {
		bot := &fakeBot{}
		tg := &Telegram{bot: bot, chatID: 42}

		So(tg.RunFailed(context.Background(), failedRun()), ShouldBeNil)
		So(bot.sent, ShouldHaveLength, 1)

		Convey("One escaped HTML message goes to the chat", func() {
			msg, ok := bot.sent[0].(tgbotapi.MessageConfig)
			So(ok, ShouldBeTrue)
			So(msg.ChatID, ShouldEqual, int64(42))
			So(msg.ParseMode, ShouldEqual, tgbotapi.ModeHTML)
			So(msg.Text, ShouldContainSubstring, "run-1")
			So(msg.Text, ShouldContainSubstring, "1.5s")
			So(msg.Text, ShouldContainSubstring, "hrflow score: &lt;500&gt;")
		})
	})
}

func TestTelegramRunFailedErrors(t *testing.T) {
	Convey("Send failures are notify errors", t, func() {
		tg := &Telegram{bot: &fakeBot{err: errors.New("blocked")}, chatID: 1}
		So(tg.RunFailed(context.Background(), failedRun()), ShouldWrap, ErrNotify)
	})

	Convey("A cancelled context is returned as is", t, func() {
		tg := &Telegram{bot: &fakeBot{}, chatID: 1}
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		So(tg.RunFailed(ctx, failedRun()), ShouldWrap, context.Canceled)
	})
}

func TestNop(t *testing.T) {
	Convey("The no-op alerter never fails", t, func() {
		var a Alerter = Nop{}
		So(a.RunFailed(context.Background(), failedRun()), ShouldBeNil)
	})
}
