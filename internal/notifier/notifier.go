package notifier

import "context"

// Notifier defines the interface for delivering a rendered message
type Notifier interface {
	// Notify delivers the message text; it returns once the message was accepted
	Notify(ctx context.Context, text string) error
}
