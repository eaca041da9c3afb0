// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package session

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/alluz/alluz-web/internal/gateway"
	"github.com/alluz/alluz-web/internal/model"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	// Sessions table required by sqlite3store.
	_, err = db.Exec(`
		CREATE TABLE sessions (
			token TEXT PRIMARY KEY,
			data BLOB NOT NULL,
			expiry REAL NOT NULL
		);
		CREATE INDEX sessions_expiry_idx ON sessions(expiry);
	`)
	if err != nil {
		t.Fatalf("failed to create sessions table: %v", err)
	}

	t.Cleanup(func() { _ = db.Close() })
	return db
}

type fakeAuth struct {
	token    string
	loginErr error
	meErr    error
	meCalls  int
}

func (f *fakeAuth) Login(_ context.Context, _, _ string) (string, error) {
	if f.loginErr != nil {
		return "", f.loginErr
	}
	return f.token, nil
}

func (f *fakeAuth) Me(ctx context.Context) (model.User, error) {
	f.meCalls++
	if f.meErr != nil {
		return model.User{}, f.meErr
	}
	if gateway.TokenFromContext(ctx) != f.token {
		return model.User{}, &gateway.AuthError{Op: "get current user"}
	}
	return model.User{Username: "admin"}, nil
}

// sessionContext loads a fresh session into ctx the way the LoadAndSave
// middleware would.
func sessionContext(t *testing.T, m *Manager) context.Context {
	t.Helper()
	ctx, err := m.SCS().Load(context.Background(), "")
	if err != nil {
		t.Fatalf("loading session: %v", err)
	}
	return ctx
}

func TestNew_DevMode(t *testing.T) {
	m := New(setupTestDB(t), &fakeAuth{}, true)

	sm := m.SCS()
	if sm.Cookie.Secure {
		t.Error("expected Cookie.Secure = false in dev mode")
	}
	if sm.Cookie.Name == "__Host-session" {
		t.Error("expected default cookie name in dev mode")
	}
}

func TestNew_ProductionMode(t *testing.T) {
	m := New(setupTestDB(t), &fakeAuth{}, false)

	sm := m.SCS()
	if !sm.Cookie.Secure {
		t.Error("expected Cookie.Secure = true in production mode")
	}
	if sm.Cookie.Name != "__Host-session" {
		t.Errorf("expected __Host-session cookie name, got %q", sm.Cookie.Name)
	}
	if sm.Cookie.Path != "/" {
		t.Errorf("expected Cookie.Path = '/', got %q", sm.Cookie.Path)
	}
}

func TestNew_SessionSettings(t *testing.T) {
	m := New(setupTestDB(t), &fakeAuth{}, true)

	sm := m.SCS()
	if sm.Lifetime != 24*time.Hour {
		t.Errorf("Lifetime = %v, want 24h", sm.Lifetime)
	}
	if !sm.Cookie.HttpOnly {
		t.Error("expected Cookie.HttpOnly = true")
	}
	if sm.Cookie.SameSite != http.SameSiteLaxMode {
		t.Errorf("expected SameSite = Lax, got %v", sm.Cookie.SameSite)
	}
	if sm.Store == nil {
		t.Error("expected Store to be initialized")
	}
}

func TestLogin(t *testing.T) {
	auth := &fakeAuth{token: "tok-123"}
	m := New(setupTestDB(t), auth, true)
	ctx := sessionContext(t, m)

	if err := m.Login(ctx, "admin", "secret"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if got := m.Token(ctx); got != "tok-123" {
		t.Errorf("Token = %q, want tok-123", got)
	}
	if got := m.Username(ctx); got != "admin" {
		t.Errorf("Username = %q, want admin", got)
	}
	if !m.IsAuthenticated(ctx) {
		t.Error("IsAuthenticated = false after login")
	}
	if auth.meCalls != 1 {
		t.Errorf("Me called %d times, want 1", auth.meCalls)
	}
}

func TestLoginBadCredentials(t *testing.T) {
	auth := &fakeAuth{loginErr: &gateway.AuthError{Op: "login"}}
	m := New(setupTestDB(t), auth, true)
	ctx := sessionContext(t, m)

	if err := m.Login(ctx, "admin", "wrong"); !gateway.IsAuth(err) {
		t.Fatalf("Login error = %v, want auth error", err)
	}
	if m.IsAuthenticated(ctx) {
		t.Error("session authenticated after failed login")
	}
}

// A token the API hands out but then refuses to validate must never be
// stored.
func TestLoginFailClosed(t *testing.T) {
	auth := &fakeAuth{token: "tok-123", meErr: errors.New("api unreachable")}
	m := New(setupTestDB(t), auth, true)
	ctx := sessionContext(t, m)

	if err := m.Login(ctx, "admin", "secret"); err == nil {
		t.Fatal("Login succeeded despite failed identity check")
	}
	if m.IsAuthenticated(ctx) {
		t.Error("token stored despite failed identity check")
	}
}

func TestValidate(t *testing.T) {
	auth := &fakeAuth{token: "tok-123"}
	m := New(setupTestDB(t), auth, true)
	ctx := sessionContext(t, m)

	if err := m.Login(ctx, "admin", "secret"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if err := m.Validate(ctx); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestValidateRejectedTokenDestroysSession(t *testing.T) {
	auth := &fakeAuth{token: "tok-123"}
	m := New(setupTestDB(t), auth, true)
	ctx := sessionContext(t, m)

	if err := m.Login(ctx, "admin", "secret"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	auth.meErr = &gateway.AuthError{Op: "get current user"}
	if err := m.Validate(ctx); !gateway.IsAuth(err) {
		t.Fatalf("Validate error = %v, want auth error", err)
	}
	if m.IsAuthenticated(ctx) {
		t.Error("session survived rejected token")
	}
}

// A token restored from a persisted session has never been confirmed
// by this process, so the first EnsureValid re-checks it and later
// calls trust the cached confirmation.
func TestEnsureValidRechecksUnseenTokenOnce(t *testing.T) {
	auth := &fakeAuth{token: "tok-123"}
	m := New(setupTestDB(t), auth, true)
	ctx := sessionContext(t, m)

	m.scs.Put(ctx, keyToken, "tok-123")

	if err := m.EnsureValid(ctx); err != nil {
		t.Fatalf("EnsureValid: %v", err)
	}
	if auth.meCalls != 1 {
		t.Fatalf("Me called %d times, want 1", auth.meCalls)
	}

	if err := m.EnsureValid(ctx); err != nil {
		t.Fatalf("EnsureValid (second): %v", err)
	}
	if auth.meCalls != 1 {
		t.Errorf("confirmed token re-checked: Me called %d times, want 1", auth.meCalls)
	}
}

func TestEnsureValidAfterLoginSkipsRecheck(t *testing.T) {
	auth := &fakeAuth{token: "tok-123"}
	m := New(setupTestDB(t), auth, true)
	ctx := sessionContext(t, m)

	if err := m.Login(ctx, "admin", "secret"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if err := m.EnsureValid(ctx); err != nil {
		t.Fatalf("EnsureValid: %v", err)
	}
	// Login already confirmed the token via the identity check.
	if auth.meCalls != 1 {
		t.Errorf("Me called %d times, want 1", auth.meCalls)
	}
}

func TestEnsureValidStaleTokenDestroysSession(t *testing.T) {
	auth := &fakeAuth{token: "tok-live"}
	m := New(setupTestDB(t), auth, true)
	ctx := sessionContext(t, m)

	m.scs.Put(ctx, keyToken, "tok-stale")

	if err := m.EnsureValid(ctx); !gateway.IsAuth(err) {
		t.Fatalf("EnsureValid error = %v, want auth error", err)
	}
	if m.IsAuthenticated(ctx) {
		t.Error("session survived a stale token")
	}
}

func TestEnsureValidWithoutToken(t *testing.T) {
	m := New(setupTestDB(t), &fakeAuth{}, true)
	ctx := sessionContext(t, m)

	if err := m.EnsureValid(ctx); !gateway.IsAuth(err) {
		t.Fatalf("EnsureValid error = %v, want auth error", err)
	}
}

func TestLogout(t *testing.T) {
	auth := &fakeAuth{token: "tok-123"}
	m := New(setupTestDB(t), auth, true)
	ctx := sessionContext(t, m)

	if err := m.Login(ctx, "admin", "secret"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if err := m.Logout(ctx); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if m.IsAuthenticated(ctx) {
		t.Error("session authenticated after logout")
	}
}

func TestForceLogoutWithoutRequestTokenIsNoop(t *testing.T) {
	auth := &fakeAuth{token: "tok-123"}
	m := New(setupTestDB(t), auth, true)
	ctx := sessionContext(t, m)

	if err := m.Login(ctx, "admin", "secret"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	// No token in the request context: the hook fired for a background
	// caller and must not touch the session.
	m.ForceLogout(ctx)
	if !m.IsAuthenticated(ctx) {
		t.Error("ForceLogout destroyed a session it should have ignored")
	}

	m.ForceLogout(gateway.WithToken(ctx, "tok-123"))
	if m.IsAuthenticated(ctx) {
		t.Error("ForceLogout with request token left the session intact")
	}
}
