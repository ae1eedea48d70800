package notifier

import (
	"context"
	"fmt"
	"io"

	"github.com/pfrederiksen/atm-watch/internal/telegram"
)

// DryRunNotifier prints what would be sent without contacting Telegram
type DryRunNotifier struct {
	out   io.Writer
	count int
}

// NewDryRunNotifier creates a new dry-run notifier writing to out
func NewDryRunNotifier(out io.Writer) *DryRunNotifier {
	return &DryRunNotifier{out: out}
}

// Notify prints the message and its visible length
func (n *DryRunNotifier) Notify(ctx context.Context, text string) error {
	n.count++
	fmt.Fprintf(n.out, "--- Message %d ---\n", n.count)
	fmt.Fprintln(n.out, text)

	length := telegram.VisibleLength(text)
	fmt.Fprintf(n.out, "\n(Length: %d characters", length)
	if length > telegram.MaxMessageLength {
		fmt.Fprintf(n.out, ", over the %d limit", telegram.MaxMessageLength)
	}
	fmt.Fprint(n.out, ")\n\n")
	return nil
}
