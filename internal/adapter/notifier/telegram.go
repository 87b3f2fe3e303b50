package notifier

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/custos-io/custos/internal/config"
	"github.com/custos-io/custos/internal/domain"
)

// TelegramNotifier sends run outcomes as bot messages to a fixed chat.
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

func NewTelegram(cfg *config.TelegramConfig) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	var chatID int64
	if _, err := fmt.Sscanf(cfg.ChatID, "%d", &chatID); err != nil {
		return nil, fmt.Errorf("invalid telegram chat_id %q: %w", cfg.ChatID, err)
	}

	return &TelegramNotifier{
		bot:    bot,
		chatID: chatID,
	}, nil
}

func (n *TelegramNotifier) Send(ctx context.Context, subject, body string) error {
	msg := tgbotapi.NewMessage(n.chatID, fmt.Sprintf("%s\n\n%s", subject, body))

	if _, err := n.bot.Send(msg); err != nil {
		return &domain.TransportError{Channel: n.Channel(), Err: err}
	}

	return nil
}

func (n *TelegramNotifier) Channel() string {
	return "telegram"
}
