// Package negotiation talks to the external negotiation service.
package negotiation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
	}
}

// Start opens a new negotiation session.
func (c *Client) Start(ctx context.Context, req StartRequest) (*StartResponse, error) {
	resp, err := c.post(ctx, "/start-negotiation", req, "application/json")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out StartResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("negotiation: decode start response: %w", err)
	}
	if out.SessionID == "" {
		return nil, fmt.Errorf("negotiation: start response has no session_id")
	}
	return &out, nil
}

// RespondStream sends one user message and consumes the streamed reply.
func (c *Client) RespondStream(ctx context.Context, sessionID, message string, onChunk func(string)) (*Completion, error) {
	resp, err := c.post(ctx, "/respond-stream", respondRequest{SessionID: sessionID, Message: message}, "text/event-stream")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return ReadStream(resp.Body, onChunk)
}

// ListSessions returns the service's active session summaries verbatim.
func (c *Client) ListSessions(ctx context.Context) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/sessions", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.do(req, "/sessions")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("negotiation: read sessions: %w", err)
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("negotiation: sessions response is not JSON")
	}
	return body, nil
}

func (c *Client) post(ctx context.Context, path string, payload any, accept string) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", accept)
	return c.do(req, path)
}

func (c *Client) do(req *http.Request, endpoint string) (*http.Response, error) {
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("negotiation: %s: %w", endpoint, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &StatusError{Endpoint: endpoint, Code: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}
	return resp, nil
}
