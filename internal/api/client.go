// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for the Game Event Planner API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents an error from the planner client.
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

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeConnection
	ErrTypeTimeout
	ErrTypeRateLimited
	ErrTypeInvalidRequest
	ErrTypeServer
	ErrTypeStream
)

// Sentinel errors for easy checking.
var (
	ErrUnavailable = &ClientError{Type: ErrTypeConnection, Message: "planner service is unreachable"}
	ErrTimeout     = &ClientError{Type: ErrTypeTimeout, Message: "request timed out"}
	ErrRateLimited = &ClientError{Type: ErrTypeRateLimited, Message: "rate limit exceeded"}
)

// IsTimeout checks if an error is a timeout error.
func IsTimeout(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeTimeout
	}
	return errors.Is(err, ErrTimeout)
}

// IsRateLimited checks if an error indicates the server's quota was hit.
func IsRateLimited(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeRateLimited
	}
	return errors.Is(err, ErrRateLimited)
}

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the planner client.
type ClientConfig struct {
	// BaseURL is the planner API base URL (default: http://127.0.0.1:8000)
	BaseURL string

	// Timeout for non-streaming requests (default: 60s)
	Timeout time.Duration

	// MaxRetries for transient failures before giving up (default: 3)
	MaxRetries int

	// RetryDelay is the base delay between retries; each attempt doubles
	// it, capped at 10s (default: 2s)
	RetryDelay time.Duration

	// RequestsPerMinute throttles outbound calls to stay under the
	// server's quota (default: 15, matching the server; 0 disables)
	RequestsPerMinute int
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:           "http://127.0.0.1:8000",
		Timeout:           60 * time.Second,
		MaxRetries:        3,
		RetryDelay:        2 * time.Second,
		RequestsPerMinute: 15,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client handles communication with the Game Event Planner API.
//
// The Client is safe for concurrent use, though the conversation
// controller serializes submissions anyway.
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a planner client with default configuration.
func NewClient() *Client {
	return NewClientWithConfig(DefaultConfig())
}

// NewClientWithConfig creates a planner client with custom configuration.
func NewClientWithConfig(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	if config.BaseURL == "" {
		config.BaseURL = "http://127.0.0.1:8000"
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	if config.Timeout == 0 {
		config.Timeout = 60 * time.Second
	}
	if config.MaxRetries == 0 {
		config.MaxRetries = 3
	}
	if config.RetryDelay == 0 {
		config.RetryDelay = 2 * time.Second
	}

	var limiter *rate.Limiter
	if config.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(
			rate.Every(time.Minute/time.Duration(config.RequestsPerMinute)),
			config.RequestsPerMinute,
		)
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		limiter: limiter,
	}
}

// GetConfig returns the client configuration.
func (c *Client) GetConfig() *ClientConfig {
	return c.config
}

// wait blocks until the local limiter permits another request.
func (c *Client) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return &ClientError{Type: ErrTypeTimeout, Message: "cancelled while waiting for rate limiter", Cause: err}
	}
	return nil
}

// =============================================================================
// ERROR DECODING
// =============================================================================

// DecodeErrorBody derives a human-readable description from a failure
// response: the JSON "detail" field if present, else the raw body text,
// else a message naming the status code.
func DecodeErrorBody(status string, body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil && eb.Detail != "" {
		return eb.Detail
	}
	if text := strings.TrimSpace(string(body)); text != "" {
		return text
	}
	return "request failed: " + status
}

// errorFromResponse converts a non-success response into a ClientError.
// The body is read in full; streaming failure bodies are small.
func errorFromResponse(resp *http.Response) *ClientError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	message := DecodeErrorBody(resp.Status, body)

	errType := ErrTypeServer
	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		errType = ErrTypeRateLimited
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		errType = ErrTypeInvalidRequest
	}
	return &ClientError{Type: errType, Message: message}
}

// transportError maps a transport-level failure to a ClientError.
func transportError(err error) *ClientError {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	if errors.Is(err, context.Canceled) {
		return &ClientError{Type: ErrTypeTimeout, Message: "request cancelled", Cause: err}
	}
	return &ClientError{Type: ErrTypeConnection, Message: "planner service is unreachable", Cause: err}
}

// retryable reports whether a failed attempt is worth repeating.
// Client-side request errors never are; the request will not get better.
func retryable(err error) bool {
	var clientErr *ClientError
	if !errors.As(err, &clientErr) {
		return false
	}
	switch clientErr.Type {
	case ErrTypeConnection, ErrTypeServer, ErrTypeRateLimited:
		return true
	default:
		return false
	}
}

// backoff returns the delay before the given 1-based retry attempt,
// doubling from the base delay and capped at 10s.
func (c *Client) backoff(attempt int) time.Duration {
	d := c.config.RetryDelay
	for i := 1; i < attempt; i++ {
		d *= 2
	}
	if d > 10*time.Second {
		d = 10 * time.Second
	}
	return d
}

// =============================================================================
// NON-STREAMING REQUEST
// =============================================================================

// PlanEvent sends a non-streaming plan request and returns the finished
// answer with token usage. Transient failures are retried with backoff.
func (c *Client) PlanEvent(ctx context.Context, req PlanRequest) (*PlanResponse, error) {
	req.Stream = false

	var lastErr error
	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(c.backoff(attempt)):
			case <-ctx.Done():
				return nil, transportError(ctx.Err())
			}
		}

		resp, err := c.planEventOnce(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if !retryable(err) {
			return nil, err
		}
	}
	return nil, lastErr
}

func (c *Client) planEventOnce(ctx context.Context, req PlanRequest) (*PlanResponse, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidRequest, Message: "failed to marshal request", Cause: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/plan-event", bytes.NewReader(body))
	if err != nil {
		return nil, &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, transportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errorFromResponse(resp)
	}

	var result PlanResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &ClientError{Type: ErrTypeServer, Message: "failed to decode response", Cause: err}
	}
	return &result, nil
}
