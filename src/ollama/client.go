// Package ollama is the HTTP client for the locally running Ollama model
// server. The server is an external collaborator: this package only shuttles
// requests and responses, it implements none of the model protocol itself.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"
)

const (
	// Explicit IPv4 instead of localhost avoids IPv6 resolution issues on Windows.
	defaultBaseURL = "http://127.0.0.1:11434"
	defaultTimeout = 30 * time.Second
)

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeNotRunning
	ErrTypeTimeout
	ErrTypeModelNotFound
	ErrTypeConnection
	ErrTypeInvalidResponse
)

// ClientError represents an error from the Ollama client.
type ClientError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// Sentinel errors for easy checking.
var (
	ErrNotRunning    = &ClientError{Type: ErrTypeNotRunning, Message: "Ollama is not running"}
	ErrTimeout       = &ClientError{Type: ErrTypeTimeout, Message: "request timed out"}
	ErrModelNotFound = &ClientError{Type: ErrTypeModelNotFound, Message: "model not found"}
)

// IsNotRunning reports whether an error indicates the server is unreachable.
func IsNotRunning(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeNotRunning
	}
	return false
}

// IsModelNotFound reports whether an error is a missing-model error.
func IsModelNotFound(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeModelNotFound
	}
	return false
}

// Config holds configuration options for the client. Zero values take
// defaults.
type Config struct {
	BaseURL      string
	Timeout      time.Duration
	DefaultModel string
	Logger       *slog.Logger
}

// Client handles communication with the Ollama API. Safe for concurrent use.
type Client struct {
	config     Config
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new Ollama API client.
func NewClient(config Config) *Client {
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}
	if config.Timeout == 0 {
		config.Timeout = defaultTimeout
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		logger:     logger.With("component", "ollama_client"),
	}
}

// BaseURL returns the server address the client talks to.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// DefaultModel returns the configured fallback model name.
func (c *Client) DefaultModel() string {
	return c.config.DefaultModel
}

// CheckRunning verifies that the server is reachable.
func (c *Client) CheckRunning(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL, nil)
	if err != nil {
		return &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrTimeout
		}
		return ErrNotRunning
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &ClientError{Type: ErrTypeConnection, Message: "unexpected status from Ollama: " + resp.Status}
	}
	return nil
}

// post issues a JSON POST and returns the raw response. The caller owns the
// body. streaming requests bypass the client timeout; the context governs
// their lifetime instead.
func (c *Client) post(ctx context.Context, path string, reqBody any, streaming bool) (*http.Response, error) {
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to marshal request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")

	client := c.httpClient
	if streaming {
		client = &http.Client{}
	}

	resp, err := client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, ErrTimeout
		}
		return nil, ErrNotRunning
	}

	if resp.StatusCode == http.StatusNotFound {
		resp.Body.Close()
		return nil, ErrModelNotFound
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		var serverErr serverError
		if err := json.NewDecoder(resp.Body).Decode(&serverErr); err == nil && serverErr.Error != "" {
			return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: serverErr.Error}
		}
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: path + " request failed: " + resp.Status}
	}

	return resp, nil
}
