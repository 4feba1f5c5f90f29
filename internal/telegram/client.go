// Package telegram posts new-content announcements to a channel through
// the Bot API.
package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/streamapp/stream-platform/internal/apperr"
)

const apiBase = "https://api.telegram.org"

// Client talks to the Telegram Bot API. A client with an empty token is
// disabled and silently drops every send.
type Client struct {
	Token  string
	ChatID string
	HTTP   *http.Client
}

func New(token, chatID string) *Client {
	return &Client{
		Token:  token,
		ChatID: chatID,
		HTTP:   &http.Client{Timeout: 10 * time.Second},
	}
}

// Enabled reports whether the client has credentials to post with.
func (c *Client) Enabled() bool { return c.Token != "" && c.ChatID != "" }

// SendPhoto posts a photo by URL with an HTML caption to the configured
// chat.
func (c *Client) SendPhoto(ctx context.Context, photoURL, caption string) error {
	if !c.Enabled() {
		return nil
	}
	form := url.Values{
		"chat_id":    {c.ChatID},
		"photo":      {photoURL},
		"caption":    {caption},
		"parse_mode": {"HTML"},
	}
	return c.post(ctx, "sendPhoto", form)
}

// SendMessage posts a plain HTML message, used when the content has no
// poster to attach.
func (c *Client) SendMessage(ctx context.Context, text string) error {
	if !c.Enabled() {
		return nil
	}
	form := url.Values{
		"chat_id":    {c.ChatID},
		"text":       {text},
		"parse_mode": {"HTML"},
	}
	return c.post(ctx, "sendMessage", form)
}

func (c *Client) post(ctx context.Context, method string, form url.Values) error {
	endpoint := fmt.Sprintf("%s/bot%s/%s", apiBase, c.Token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint,
		strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return apperr.External("telegram request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return apperr.External(fmt.Sprintf("telegram %s returned %d: %s", method, resp.StatusCode, body), nil)
	}
	return nil
}
