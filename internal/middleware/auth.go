// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for authentication,
// rate limiting, and security headers.
package middleware

import (
	"net/http"

	"github.com/alluz/alluz-web/internal/gateway"
	"github.com/alluz/alluz-web/internal/session"
)

// RequireAdmin creates middleware that guards the admin console. An
// unauthenticated request is redirected to the login page; an
// authenticated one proceeds with the session's bearer token injected
// into the request context for outbound API calls. A token this
// process has not confirmed yet, such as one restored from a persisted
// session after a restart, is re-checked against the API first.
func RequireAdmin(sessions *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := sessions.Token(r.Context())
			if token == "" {
				http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
				return
			}

			if err := sessions.EnsureValid(r.Context()); err != nil {
				if gateway.IsAuth(err) {
					http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
					return
				}
				// Transient API failure. Let the request through; the
				// page's own gateway calls will surface it.
			}

			ctx := gateway.WithToken(r.Context(), token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RedirectIfAuthenticated sends signed-in admins straight to the
// dashboard. Used on the login page.
func RedirectIfAuthenticated(sessions *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet && sessions.IsAuthenticated(r.Context()) {
				http.Redirect(w, r, "/admin", http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
