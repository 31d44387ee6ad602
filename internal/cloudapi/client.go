// Package cloudapi is the HTTP client for the remote control plane hosting
// cloud browser sessions.
//
// Only the handful of fields the CLI surfaces are typed; everything else in
// the control plane's responses is passed through untouched.
package cloudapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrNoAPIKey means remote session queries are unavailable because no API
// key is configured.
var ErrNoAPIKey = errors.New("cloud API key not configured")

const defaultRequestTimeout = 15 * time.Second

// Session is one cloud-hosted session as reported by the control plane.
type Session struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	Region    string `json:"region,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

// DebugInfo holds the debugger connection URLs for one cloud session.
type DebugInfo struct {
	DebuggerURL           string `json:"debuggerUrl,omitempty"`
	DebuggerFullscreenURL string `json:"debuggerFullscreenUrl,omitempty"`
	WSURL                 string `json:"wsUrl,omitempty"`
}

// Client talks to the control plane's REST API.
type Client struct {
	BaseURL string
	APIKey  string

	// HTTPClient defaults to a client with a request timeout.
	HTTPClient *http.Client
}

// New returns a client for the given control plane endpoint.
func New(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL:    baseURL,
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: defaultRequestTimeout},
	}
}

// ListSessions returns all sessions visible to the API key.
func (c *Client) ListSessions(ctx context.Context) ([]Session, error) {
	var sessions []Session
	if err := c.do(ctx, http.MethodGet, "/sessions", nil, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// GetSession returns one session's detail.
func (c *Client) GetSession(ctx context.Context, id string) (*Session, error) {
	var session Session
	if err := c.do(ctx, http.MethodGet, "/sessions/"+id, nil, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// StopSession asks the control plane to release a session.
func (c *Client) StopSession(ctx context.Context, id string) (*Session, error) {
	body := map[string]string{"status": "REQUEST_RELEASE"}
	var session Session
	if err := c.do(ctx, http.MethodPost, "/sessions/"+id, body, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// DebugSession fetches the debugger connection URLs for a session.
func (c *Client) DebugSession(ctx context.Context, id string) (*DebugInfo, error) {
	var info DebugInfo
	if err := c.do(ctx, http.MethodGet, "/sessions/"+id+"/debug", nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// do performs one authenticated request and decodes the JSON response.
func (c *Client) do(ctx context.Context, method, path string, body, result any) error {
	if c.APIKey == "" {
		return ErrNoAPIKey
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("X-API-Key", c.APIKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultRequestTimeout}
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("control plane request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read control plane response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("control plane returned %s: %s", resp.Status, apiErrorMessage(payload))
	}

	if result != nil && len(payload) > 0 {
		if err := json.Unmarshal(payload, result); err != nil {
			return fmt.Errorf("decode control plane response: %w", err)
		}
	}

	return nil
}

// apiErrorMessage extracts a message from an error body, falling back to the
// raw text.
func apiErrorMessage(payload []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(payload, &body); err == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	return string(payload)
}
