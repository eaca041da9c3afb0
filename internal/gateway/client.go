// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package gateway is the typed client for the Alluz persistence and
// auth API. All other components talk to the remote service through it,
// never through raw HTTP. Non-2xx responses are mapped onto a small
// error taxonomy (AuthError, RateLimitError, NotFoundError,
// TransportError); nothing is retried.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Client configuration constants.
const (
	RequestTimeout = 30 * time.Second // HTTP request timeout
	MaxResponseLen = 1 << 20          // Maximum response body to read (1MB)
	UserAgent      = "alluz-web/1.0"  // User-Agent header value
)

// TokenSource supplies the bearer token for a request, or the empty
// string for unauthenticated calls.
type TokenSource func(ctx context.Context) string

// Client talks to the Alluz API. It is safe for concurrent use.
type Client struct {
	baseURL      string
	http         *http.Client
	token        TokenSource
	onAuthReject func(ctx context.Context)
}

// Config holds the client construction options.
type Config struct {
	// BaseURL is the API root, e.g. "https://api.alluz.example/api".
	BaseURL string

	// Token supplies the bearer token per request. Defaults to
	// TokenFromContext.
	Token TokenSource

	// OnAuthReject is invoked whenever the API rejects authentication.
	// This is the single enforcement point of the forced-logout policy:
	// session teardown happens here, not at individual call sites.
	OnAuthReject func(ctx context.Context)
}

// New creates an API client.
func New(cfg Config) *Client {
	token := cfg.Token
	if token == nil {
		token = TokenFromContext
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http: &http.Client{
			Timeout: RequestTimeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		token:        token,
		onAuthReject: cfg.OnAuthReject,
	}
}

// do performs a JSON request against the API and decodes the response
// body into out (when out is non-nil). op names the operation for error
// reporting.
func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return &TransportError{Op: op, Err: fmt.Errorf("encoding request: %w", err)}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("creating request: %w", err)}
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.token(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Drain a bounded amount so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, MaxResponseLen))

		mapped := statusError(op, resp.StatusCode)
		if _, ok := mapped.(*AuthError); ok && c.onAuthReject != nil {
			c.onAuthReject(ctx)
		}
		return mapped
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, MaxResponseLen))
		return nil
	}

	decoder := json.NewDecoder(io.LimitReader(resp.Body, MaxResponseLen))
	if err := decoder.Decode(out); err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("decoding response: %w", err)}
	}
	return nil
}
