package notify

import (
	"fmt"
	"strings"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const maxDetailLen = 500

// sender is the part of tgbotapi.BotAPI used for notifications.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram posts alerts to an admin chat.
type Telegram struct {
	api    sender
	chatID int64
	logger *zap.Logger
}

// NewTelegram authorizes the bot token and targets chatID.
func NewTelegram(token string, chatID int64, logger *zap.Logger) (*Telegram, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	logger.Info("authorized on account", zap.String("account", api.Self.UserName))

	return &Telegram{
		api:    api,
		chatID: chatID,
		logger: logger,
	}, nil
}

func (t *Telegram) Startup(addr string) {
	t.send(formatStartup(addr))
}

func (t *Telegram) InternalError(op, url, detail string) {
	t.send(formatInternalError(op, url, detail))
}

func (t *Telegram) send(text string) {
	go func() {
		msg := tgbotapi.NewMessage(t.chatID, text)
		if _, err := t.api.Send(msg); err != nil {
			t.logger.Warn("failed to send notification", zap.Error(err))
		}
	}()
}

func formatStartup(addr string) string {
	return "✅ tubegrab started, listening on " + addr
}

func formatInternalError(op, url, detail string) string {
	if utf8.RuneCountInString(detail) > maxDetailLen {
		detail = string([]rune(detail)[:maxDetailLen]) + "..."
	}

	var b strings.Builder
	b.WriteString("❌ internal error in ")
	b.WriteString(op)
	if url != "" {
		b.WriteString("\nURL: ")
		b.WriteString(url)
	}
	b.WriteString("\n")
	b.WriteString(detail)
	return b.String()
}
