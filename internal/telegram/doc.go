// Package telegram sends ATM notifications through the Telegram Bot API.
//
// Messages are posted as form-encoded sendMessage calls in HTML parse mode
// with link previews and notification sounds turned off. Network failures are
// retried indefinitely with a fixed delay; answers from Telegram that reject
// the message are returned to the caller.
//
// Authentication requires a bot token (from @BotFather) and chat ID.
package telegram
