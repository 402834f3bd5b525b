// Package whatsapp is the chat channel adapter: it verifies and parses
// inbound webhook events, drives the conversation flow, and sends replies
// through the Graph API.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Sender delivers one reply to a recipient. The Graph client implements
// it; tests substitute a recorder.
type Sender interface {
	Send(ctx context.Context, to string, reply Reply) error
}

// Client posts messages to the WhatsApp Cloud (Graph) API.
type Client struct {
	httpClient *http.Client
	apiURL     string
	token      string
}

// NewClient builds a client for the given business phone number id and
// access token.
func NewClient(phoneNumberID, token string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		apiURL:     fmt.Sprintf("https://graph.facebook.com/v19.0/%s/messages", phoneNumberID),
		token:      token,
	}
}

var _ Sender = (*Client)(nil)

// Send posts one message. The envelope wraps the reply's payload with the
// messaging product and recipient fields the API expects.
func (c *Client) Send(ctx context.Context, to string, reply Reply) error {
	envelope := map[string]any{
		"messaging_product": "whatsapp",
		"to":                to,
	}
	for k, v := range reply.payload() {
		envelope[k] = v
	}
	body, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("whatsapp: marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("whatsapp: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("whatsapp: send message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("whatsapp: send message: status %d: %s", resp.StatusCode, detail)
	}
	return nil
}
