package channel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Client sends text replies through the chat channel's HTTP API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

type sendTextRequest struct {
	To   string `json:"to"`
	Text string `json:"text"`
}

// SendText delivers text to the target chat. Empty targets or texts are skipped.
func (c *Client) SendText(ctx context.Context, to, text string) error {
	if to == "" || text == "" {
		return nil
	}

	data, err := json.Marshal(sendTextRequest{To: to, Text: text})
	if err != nil {
		return fmt.Errorf("marshal send request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/messages", bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create send request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send text to %s: %w", to, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("channel returned status %d for %s", resp.StatusCode, to)
	}
	return nil
}
