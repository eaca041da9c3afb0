// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package session owns the admin authentication state: the API bearer
// token and the signed-in username, kept in a server-side session
// backed by SQLite. Login is fail-closed — the token is stored only
// after the API has confirmed it resolves to a user.
package session

import (
	"context"
	"database/sql"
	"net/http"
	"sync"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"

	"github.com/alluz/alluz-web/internal/gateway"
	"github.com/alluz/alluz-web/internal/model"
)

// Session keys. keyToken holds the API bearer token, keyUser the
// confirmed admin username.
const (
	keyToken = "alluz_token"
	keyUser  = "alluz_user"
)

// Authenticator is the remote auth surface the manager validates
// against.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (string, error)
	Me(ctx context.Context) (model.User, error)
}

// Manager wraps the scs session manager with the token lifecycle.
type Manager struct {
	scs  *scs.SessionManager
	auth Authenticator

	// validated tracks tokens this process has confirmed against the
	// API. Sessions outlive restarts in SQLite, so a token seen for the
	// first time after boot gets re-checked before it is trusted.
	mu        sync.Mutex
	validated map[string]struct{}
}

// New creates a session manager backed by the SQLite sessions table.
// Cookies are HttpOnly and SameSite=Lax; Secure and the __Host- prefix
// are enabled outside development.
func New(db *sql.DB, auth Authenticator, isDev bool) *Manager {
	sm := scs.New()
	sm.Store = sqlite3store.New(db)
	sm.Lifetime = 24 * time.Hour
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Secure = !isDev
	if !isDev {
		sm.Cookie.Name = "__Host-session"
		sm.Cookie.Path = "/"
	}

	return &Manager{
		scs:       sm,
		auth:      auth,
		validated: make(map[string]struct{}),
	}
}

// SCS exposes the underlying scs manager for the LoadAndSave middleware.
func (m *Manager) SCS() *scs.SessionManager { return m.scs }

// Login exchanges credentials for a bearer token and stores it only
// after a follow-up identity check confirms the token works. A token
// that cannot be validated is discarded and the session is left
// unauthenticated.
func (m *Manager) Login(ctx context.Context, username, password string) error {
	token, err := m.auth.Login(ctx, username, password)
	if err != nil {
		return err
	}

	user, err := m.auth.Me(gateway.WithToken(ctx, token))
	if err != nil {
		return err
	}

	// Fresh token on privilege change.
	if err := m.scs.RenewToken(ctx); err != nil {
		return err
	}
	m.scs.Put(ctx, keyToken, token)
	m.scs.Put(ctx, keyUser, user.Username)
	m.markValidated(token)
	return nil
}

// EnsureValid re-checks the session token against the API the first
// time this process sees it, which catches tokens restored from a
// persisted session after a restart. A token confirmed once is trusted
// for the rest of the process lifetime; later revocations are handled
// by the gateway's auth-reject hook.
func (m *Manager) EnsureValid(ctx context.Context) error {
	token := m.scs.GetString(ctx, keyToken)
	if token == "" {
		return &gateway.AuthError{Op: "validate session"}
	}

	m.mu.Lock()
	_, seen := m.validated[token]
	m.mu.Unlock()
	if seen {
		return nil
	}

	if err := m.Validate(ctx); err != nil {
		return err
	}
	m.markValidated(token)
	return nil
}

func (m *Manager) markValidated(token string) {
	m.mu.Lock()
	m.validated[token] = struct{}{}
	m.mu.Unlock()
}

func (m *Manager) forget(token string) {
	if token == "" {
		return
	}
	m.mu.Lock()
	delete(m.validated, token)
	m.mu.Unlock()
}

// Validate re-checks the stored token against the API. A rejection
// destroys the session.
func (m *Manager) Validate(ctx context.Context) error {
	token := m.scs.GetString(ctx, keyToken)
	if token == "" {
		return &gateway.AuthError{Op: "validate session"}
	}
	if _, err := m.auth.Me(gateway.WithToken(ctx, token)); err != nil {
		if gateway.IsAuth(err) {
			_ = m.scs.Destroy(ctx)
		}
		return err
	}
	return nil
}

// Logout destroys the session.
func (m *Manager) Logout(ctx context.Context) error {
	m.forget(m.scs.GetString(ctx, keyToken))
	return m.scs.Destroy(ctx)
}

// ForceLogout clears the stored credentials in response to an API auth
// rejection. It is safe to call from contexts that never passed through
// the session middleware; those carry no token and are left alone.
func (m *Manager) ForceLogout(ctx context.Context) {
	token := gateway.TokenFromContext(ctx)
	if token == "" {
		return
	}
	m.forget(token)
	_ = m.scs.Destroy(ctx)
}

// Token returns the stored bearer token, or "" when not signed in.
func (m *Manager) Token(ctx context.Context) string {
	return m.scs.GetString(ctx, keyToken)
}

// Username returns the confirmed admin username, or "".
func (m *Manager) Username(ctx context.Context) string {
	return m.scs.GetString(ctx, keyUser)
}

// IsAuthenticated reports whether the session holds a token.
func (m *Manager) IsAuthenticated(ctx context.Context) bool {
	return m.scs.GetString(ctx, keyToken) != ""
}
