package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultBaseURL = "https://slack.com/api"

// APIError is returned when the Slack API answers with a non-2xx status or an
// ok=false body.
type APIError struct {
	StatusCode int
	Reason     string
}

func (e *APIError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("slack api error: %s (status %d)", e.Reason, e.StatusCode)
	}

	return fmt.Sprintf("slack api error: status %d", e.StatusCode)
}

// Client is a client for the Slack Web API message-post endpoint.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// option is a function that configures the Client.
type option func(*Client)

// NewClient creates a new Slack client. An empty token disables the client,
// see Enabled.
func NewClient(token string, opts ...option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    defaultBaseURL,
		token:      token,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithBaseURL overrides the Slack API base URL.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithBaseURL(baseURL string) option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient overrides the underlying HTTP client.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithHTTPClient(httpClient *http.Client) option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// Enabled reports whether a bot token is configured.
func (c *Client) Enabled() bool {
	return c.token != ""
}

type postMessageRequest struct {
	Channel string  `json:"channel"`
	Blocks  []Block `json:"blocks"`
}

type postMessageResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// PostMessage posts a block message to the given channel or member ID.
func (c *Client) PostMessage(ctx context.Context, channel string, blocks []Block) error {
	payload, err := json.Marshal(postMessageRequest{
		Channel: channel,
		Blocks:  blocks,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal message payload: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+"/chat.postMessage",
		bytes.NewReader(payload),
	)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post message: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode}
	}

	var apiResp postMessageResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if !apiResp.OK {
		return &APIError{StatusCode: resp.StatusCode, Reason: apiResp.Error}
	}

	return nil
}
