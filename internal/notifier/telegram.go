package notifier

import (
	"context"
	"fmt"
)

// textSender is satisfied by *telegram.Client
type textSender interface {
	SendText(ctx context.Context, text string) error
}

// TelegramNotifier sends messages to a single Telegram chat
type TelegramNotifier struct {
	client textSender
}

// NewTelegramNotifier wraps a Telegram client
func NewTelegramNotifier(client textSender) *TelegramNotifier {
	return &TelegramNotifier{client: client}
}

// Notify sends the message, blocking while transport failures are retried
func (n *TelegramNotifier) Notify(ctx context.Context, text string) error {
	if err := n.client.SendText(ctx, text); err != nil {
		return fmt.Errorf("sending to telegram: %w", err)
	}
	return nil
}
