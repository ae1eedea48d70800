package telegram

import (
	"strings"
	"unicode/utf16"

	"github.com/PuerkitoBio/goquery"
)

// VisibleText returns the text a chat member sees once Telegram has
// parsed the HTML entities of message
func VisibleText(message string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(message))
	if err != nil {
		return message
	}
	return doc.Text()
}

// VisibleLength returns the length of the visible text in UTF-16 code units,
// the unit Telegram uses for its message size limit
func VisibleLength(message string) int {
	return len(utf16.Encode([]rune(VisibleText(message))))
}
