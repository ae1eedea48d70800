package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/pfrederiksen/atm-watch/internal/logger"
)

const (
	apiBaseURL = "https://api.telegram.org"

	// RetryDelay is the fixed pause between attempts after a transport failure
	RetryDelay = 10 * time.Second

	// MaxMessageLength is the longest text Telegram accepts after entity parsing
	MaxMessageLength = 4096
)

// APIError is returned when Telegram answered but rejected the message
type APIError struct {
	StatusCode  int
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram API error (status %d): %s", e.StatusCode, e.Description)
}

// Client represents a Telegram Bot API client bound to a single chat
type Client struct {
	botToken   string
	chatID     string
	baseURL    string
	httpClient *http.Client
	retryDelay time.Duration
}

// NewClient creates a new Telegram client. Requests have no client timeout:
// a timeout firing after Telegram accepted the message would be retried and
// post it twice.
func NewClient(botToken, chatID string) (*Client, error) {
	if botToken == "" {
		return nil, fmt.Errorf("bot token is required")
	}
	if chatID == "" {
		return nil, fmt.Errorf("chat ID is required")
	}

	return &Client{
		botToken: botToken,
		chatID:   chatID,
		baseURL:  apiBaseURL,
		httpClient: &http.Client{},
		retryDelay: RetryDelay,
	}, nil
}

// ChatID returns the chat messages are sent to
func (c *Client) ChatID() string {
	return c.chatID
}

// SendText sends an HTML message to the configured chat with link previews
// and notification sound disabled.
//
// Transport failures are retried forever with a fixed delay until the
// context is cancelled. A response from Telegram that reports failure is
// returned as *APIError without retrying.
func (c *Client) SendText(ctx context.Context, text string) error {
	if text == "" {
		return fmt.Errorf("message text is required")
	}

	if n := VisibleLength(text); n > MaxMessageLength {
		logger.Warn("Message exceeds Telegram length limit", logger.Fields{
			"length": n,
			"limit":  MaxMessageLength,
		}, nil)
	}

	form := url.Values{
		"chat_id":                  {c.chatID},
		"text":                     {text},
		"parse_mode":               {"html"},
		"disable_web_page_preview": {"true"},
		"disable_notification":     {"true"},
	}

	attempt := 0
	operation := func() error {
		attempt++
		err := c.post(ctx, form)
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			return backoff.Permanent(err)
		}
		return err
	}

	b := backoff.WithContext(backoff.NewConstantBackOff(c.retryDelay), ctx)
	return backoff.RetryNotify(operation, b, func(err error, wait time.Duration) {
		logger.IncrCounter("notify.retries")
		logger.Warn("Sending message failed, retrying", logger.Fields{
			"attempt":  attempt,
			"retry_in": wait.String(),
		}, err)
	})
}

// post performs a single sendMessage call
func (c *Client) post(ctx context.Context, form url.Values) error {
	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", c.baseURL, c.botToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", redact(err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return &APIError{StatusCode: resp.StatusCode, Description: apiDescription(body)}
	}

	var result struct {
		OK          bool   `json:"ok"`
		Description string `json:"description"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return &APIError{StatusCode: resp.StatusCode, Description: fmt.Sprintf("parsing response: %v", err)}
	}

	if !result.OK {
		return &APIError{StatusCode: resp.StatusCode, Description: result.Description}
	}

	return nil
}

// apiDescription extracts the description field of an error body, falling back to the raw body
func apiDescription(body []byte) string {
	var result struct {
		Description string `json:"description"`
	}
	if err := json.Unmarshal(body, &result); err == nil && result.Description != "" {
		return result.Description
	}
	return strings.TrimSpace(string(body))
}

// redact drops the request URL, which carries the bot token, from transport errors
func redact(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%s: %w", urlErr.Op, urlErr.Err)
	}
	return err
}
