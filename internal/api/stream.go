// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for the Game Event Planner API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// =============================================================================
// STREAMING REQUEST
// =============================================================================

// PlanEventStream sends a streaming plan request. The response body is
// chunked UTF-8 text with no framing; end of stream is the terminator.
//
// h.OnStart fires once the response status has been validated; h.OnChunk
// fires for each decoded text segment, strictly in arrival order. The
// body is wrapped in a stream-aware UTF-8 decoder, so a multi-byte
// character split across chunk boundaries is carried over and completed
// by the next chunk, never corrupted or dropped.
//
// Transient failures are retried with backoff only while nothing has
// been delivered; once OnStart has fired, any failure is returned to the
// caller, who decides how to surface the truncated attempt.
func (c *Client) PlanEventStream(ctx context.Context, req PlanRequest, h StreamHandler) error {
	req.Stream = true

	started := false
	wrapped := StreamHandler{
		OnStart: func() {
			started = true
			h.start()
		},
		OnChunk: h.chunk,
	}

	var lastErr error
	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(c.backoff(attempt)):
			case <-ctx.Done():
				return transportError(ctx.Err())
			}
		}

		err := c.planEventStreamOnce(ctx, req, wrapped)
		if err == nil {
			return nil
		}
		lastErr = err
		if started || !retryable(err) {
			return err
		}
	}
	return lastErr
}

func (c *Client) planEventStreamOnce(ctx context.Context, req PlanRequest, h StreamHandler) error {
	if err := c.wait(ctx); err != nil {
		return err
	}

	body, err := json.Marshal(req)
	if err != nil {
		return &ClientError{Type: ErrTypeInvalidRequest, Message: "failed to marshal request", Cause: err}
	}

	// A client without timeout for streaming; lifetime is bounded by ctx.
	streamClient := &http.Client{}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/plan-event", bytes.NewReader(body))
	if err != nil {
		return &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")
	httpReq.Header.Set("Cache-Control", "no-cache")

	resp, err := streamClient.Do(httpReq)
	if err != nil {
		return transportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errorFromResponse(resp)
	}

	h.start()
	return readStream(ctx, resp.Body, h)
}

// readStream drains the response body, delivering decoded text segments
// to the handler until end of stream.
func readStream(ctx context.Context, body io.Reader, h StreamHandler) error {
	// The decoder buffers an incomplete trailing UTF-8 sequence until the
	// next read completes it, and replaces genuinely invalid bytes with
	// U+FFFD instead of corrupting the text.
	decoded := transform.NewReader(body, unicode.UTF8.NewDecoder())

	buf := make([]byte, 4096)
	for {
		select {
		case <-ctx.Done():
			return transportError(ctx.Err())
		default:
		}

		n, err := decoded.Read(buf)
		if n > 0 {
			h.chunk(string(buf[:n]))
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return &ClientError{Type: ErrTypeStream, Message: "reading stream failed", Cause: err}
		}
	}
}
