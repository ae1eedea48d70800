// Package render turns the sorted ATM list into the notification text.
//
// Templates use html/template syntax; the list is available as .atms and
// interpolated values are HTML-escaped, which matches the HTML parse mode
// used when the message is sent to Telegram.
package render
