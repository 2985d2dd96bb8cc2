// Package api provides the HTTP client for the assistant server.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// DefaultBaseURL is the assistant server address used when none is configured.
const DefaultBaseURL = "http://localhost:5000"

const (
	chatPath   = "/api/chat"
	clearPath  = "/api/clear"
	healthPath = "/api/health"

	// maxErrorBody bounds how much of a failed response is read for diagnostics.
	maxErrorBody = 4096
)

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

// ClearRequest is the body of POST /api/clear.
type ClearRequest struct {
	SessionID string `json:"session_id"`
}

// Health is the body of GET /api/health.
type Health struct {
	Status      string `json:"status"`
	ModelLoaded bool   `json:"model_loaded"`
}

// StatusError reports a non-2xx response. Message carries the server's
// {"error": ...} text when the body had one.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("server returned %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// Config holds configuration options for the client.
type Config struct {
	// BaseURL is the server base URL (default: http://localhost:5000)
	BaseURL string

	// HTTPClient performs requests. The default has no overall timeout so
	// that a reply may stream for as long as the server keeps it open.
	HTTPClient *http.Client

	Logger *zerolog.Logger
}

// Client talks to the assistant server. It is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient creates a client from cfg, filling in defaults for zero values.
func NewClient(cfg Config) (*Client, error) {
	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid base url %q", base)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, errors.Errorf("invalid base url %q: scheme must be http or https", base)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	return &Client{
		baseURL:    strings.TrimRight(base, "/"),
		httpClient: httpClient,
		logger:     logger.With().Str("component", "api").Logger(),
	}, nil
}

// BaseURL returns the normalized server base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Chat posts a message and returns once response headers arrive. The
// reply body is consumed through the returned Stream, which the caller
// must Close.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (*Stream, error) {
	resp, err := c.postJSON(ctx, chatPath, req)
	if err != nil {
		return nil, err
	}
	if err := checkStatus(resp); err != nil {
		return nil, err
	}
	return NewStream(resp.Body), nil
}

// Clear drops the server-side conversation state for a session.
func (c *Client) Clear(ctx context.Context, req ClearRequest) error {
	resp, err := c.postJSON(ctx, clearPath, req)
	if err != nil {
		return err
	}
	if err := checkStatus(resp); err != nil {
		return err
	}
	// Body is ignored; drain it so the connection can be reused.
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.Body.Close()
}

// Health reports whether the server is up and its model is loaded.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+healthPath, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create health request")
	}

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if err := checkStatus(resp); err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var h Health
	if err := json.NewDecoder(resp.Body).Decode(&h); err != nil {
		return nil, errors.Wrap(err, "failed to decode health response")
	}
	return &h, nil
}

func (c *Client) postJSON(ctx context.Context, path string, body any) (*http.Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req)
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	c.logger.Debug().
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Msg("api: sending request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "%s %s failed", req.Method, req.URL.Path)
	}

	c.logger.Debug().
		Str("path", req.URL.Path).
		Int("status", resp.StatusCode).
		Msg("api: response headers received")
	return resp, nil
}

// checkStatus closes the body and returns a *StatusError for non-2xx responses.
func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	defer resp.Body.Close()

	se := &StatusError{StatusCode: resp.StatusCode}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err == nil {
		var body struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(raw, &body) == nil {
			se.Message = body.Error
		}
	}
	return se
}
