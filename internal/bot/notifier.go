package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"taa-signals/internal/domain"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// Sender is the part of *tele.Bot used to push messages.
type Sender interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// TelegramNotifier delivers alerts to one chat, retrying with exponential
// backoff.
type TelegramNotifier struct {
	sender     Sender
	chat       tele.ChatID
	maxRetries int
	backoff    time.Duration
	logger     *zap.Logger
}

func NewTelegramNotifier(sender Sender, chatID int64, logger *zap.Logger) *TelegramNotifier {
	return &TelegramNotifier{
		sender:     sender,
		chat:       tele.ChatID(chatID),
		maxRetries: 3,
		backoff:    time.Second,
		logger:     logger.With(zap.String("component", "telegram-notifier")),
	}
}

// FormatAlerts renders a user's alerts as one message.
func FormatAlerts(userID string, alerts []domain.Alert) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Trend alerts for %s\n", shortID(userID))
	for _, a := range alerts {
		sb.WriteString(a.Message)
		sb.WriteByte('\n')
	}
	return strings.TrimRight(sb.String(), "\n")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func (n *TelegramNotifier) Notify(ctx context.Context, userID string, alerts []domain.Alert) error {
	if len(alerts) == 0 {
		return nil
	}
	text := FormatAlerts(userID, alerts)

	var lastErr error
	for i := 0; i <= n.maxRetries; i++ {
		_, err := n.sender.Send(n.chat, text)
		if err == nil {
			return nil
		}
		lastErr = err
		wait := n.backoff * time.Duration(1<<uint(i))
		n.logger.Warn("telegram send failed",
			zap.Int("attempt", i+1),
			zap.Duration("retry_in", wait),
			zap.Error(err),
		)
		if i == n.maxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
	return fmt.Errorf("send alerts after %d attempts: %w", n.maxRetries+1, lastErr)
}
