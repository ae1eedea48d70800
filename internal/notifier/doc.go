// Package notifier provides the delivery side of the poll loop.
//
// TelegramNotifier posts messages to the configured chat; DryRunNotifier
// prints them with the length Telegram would count, for checking a template
// without a bot token.
package notifier
