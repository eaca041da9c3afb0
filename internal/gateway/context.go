// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package gateway

import "context"

type contextKey string

// contextKeyToken carries the bearer token through a request context.
const contextKeyToken contextKey = "bearer_token"

// WithToken returns a context carrying the bearer token. The client's
// default token source reads it back, so a request made with this
// context is authenticated as the session that owns the token.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, contextKeyToken, token)
}

// TokenFromContext retrieves the bearer token from the context.
// Returns the empty string when no token is present.
func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(contextKeyToken).(string)
	return token
}
