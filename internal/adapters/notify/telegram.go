package notify

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// sender es el subconjunto de tgbotapi.BotAPI que usa Telegram.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram implementa ports.AlertNotifier sobre un bot de Telegram.
// Todas las alertas de una evaluación van en un solo mensaje.
type Telegram struct {
	bot    sender
	chatID int64
}

// NewTelegram crea el notificador autenticando el bot con el token dado.
func NewTelegram(token string, chatID int64) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("notify.NewTelegram: %w", err)
	}
	return &Telegram{bot: bot, chatID: chatID}, nil
}

// SendAlerts envía las alertas como un único mensaje.
func (t *Telegram) SendAlerts(_ context.Context, messages []string) error {
	if len(messages) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString("⚠️ arbot alerts\n")
	for _, msg := range messages {
		sb.WriteString("• ")
		sb.WriteString(msg)
		sb.WriteString("\n")
	}

	msg := tgbotapi.NewMessage(t.chatID, sb.String())
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("notify.SendAlerts: %w", err)
	}
	return nil
}
