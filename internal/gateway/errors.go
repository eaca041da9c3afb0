// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package gateway

import (
	"errors"
	"fmt"
	"net/http"
)

// AuthError is returned when the API rejects the bearer token
// (401-class). Receiving one means the session is invalid: the client
// fires the configured OnAuthReject hook before returning it.
type AuthError struct {
	Op string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s: authentication rejected", e.Op)
}

// RateLimitError is returned when the API signals too many requests
// (429-class). Callers present "slow down" guidance instead of a
// generic retry message.
type RateLimitError struct {
	Op string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s: rate limited", e.Op)
}

// NotFoundError is returned when the operation referenced a record that
// no longer exists (404/409-class). Surfaced verbatim, never retried.
type NotFoundError struct {
	Op         string
	StatusCode int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, http.StatusText(e.StatusCode))
}

// TransportError is the catch-all for network failures and unexpected
// server responses. StatusCode is zero when the request never got a
// response.
type TransportError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: HTTP %d", e.Op, e.StatusCode)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsAuth reports whether err is an AuthError anywhere in its chain.
func IsAuth(err error) bool {
	var target *AuthError
	return errors.As(err, &target)
}

// IsRateLimit reports whether err is a RateLimitError anywhere in its
// chain.
func IsRateLimit(err error) bool {
	var target *RateLimitError
	return errors.As(err, &target)
}

// IsNotFound reports whether err is a NotFoundError anywhere in its
// chain.
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// statusError maps a non-2xx response status to the error taxonomy.
func statusError(op string, statusCode int) error {
	switch {
	case statusCode == http.StatusUnauthorized:
		return &AuthError{Op: op}
	case statusCode == http.StatusTooManyRequests:
		return &RateLimitError{Op: op}
	case statusCode == http.StatusNotFound || statusCode == http.StatusConflict:
		return &NotFoundError{Op: op, StatusCode: statusCode}
	default:
		return &TransportError{Op: op, StatusCode: statusCode}
	}
}
