package notify

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"go.uber.org/zap"
)

// ChatResolver looks up a user's linked Telegram chat, ok=false when the
// user never linked one.
type ChatResolver interface {
	TelegramChatID(ctx context.Context, userID int64) (int64, bool, error)
}

// TelegramNotifier delivers events as Telegram messages to recipients with a
// linked chat. Users without one are silently skipped.
type TelegramNotifier struct {
	bot    *bot.Bot
	chats  ChatResolver
	logger *zap.Logger
}

func NewTelegramNotifier(b *bot.Bot, chats ChatResolver, logger *zap.Logger) *TelegramNotifier {
	return &TelegramNotifier{bot: b, chats: chats, logger: logger}
}

// Emit sends a short human-readable message for the event.
func (n *TelegramNotifier) Emit(ctx context.Context, event Event) error {
	chatID, ok, err := n.chats.TelegramChatID(ctx, event.RecipientID)
	if err != nil {
		n.logger.Warn("resolve telegram chat failed",
			zap.Int64("recipient_id", event.RecipientID),
			zap.Error(err))
		return err
	}
	if !ok {
		return nil
	}

	_, err = n.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   formatEvent(event),
	})
	if err != nil {
		n.logger.Warn("telegram send failed",
			zap.Int64("chat_id", chatID),
			zap.String("event_type", string(event.Type)),
			zap.Error(err))
		return err
	}

	return nil
}

func formatEvent(event Event) string {
	when, _ := event.Payload["start_time"].(string)
	switch event.Type {
	case EventLessonBooked:
		return fmt.Sprintf("New lesson booked for %s.", when)
	case EventLessonProposed:
		return fmt.Sprintf("A lesson was proposed to you for %s.", when)
	case EventLessonConfirmed:
		return fmt.Sprintf("Your lesson on %s is confirmed.", when)
	case EventLessonDeclined:
		return fmt.Sprintf("The lesson request for %s was declined.", when)
	case EventLessonCancelled:
		return fmt.Sprintf("The lesson on %s was cancelled.", when)
	default:
		return fmt.Sprintf("Lesson update: %s", event.Type)
	}
}
