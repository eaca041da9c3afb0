// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/alluz/alluz-web/internal/gateway"
	"github.com/alluz/alluz-web/internal/render"
	"github.com/alluz/alluz-web/internal/session"
)

// PasswordChanger is the remote operation behind the change-password
// form.
type PasswordChanger interface {
	ChangePassword(ctx context.Context, currentPassword, newPassword string) error
}

// AuthHandler handles the admin login, logout, and password routes.
type AuthHandler struct {
	sessions *session.Manager
	renderer *render.Renderer
	passwd   PasswordChanger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(sessions *session.Manager, renderer *render.Renderer, passwd PasswordChanger) *AuthHandler {
	return &AuthHandler{
		sessions: sessions,
		renderer: renderer,
		passwd:   passwd,
	}
}

// LoginForm renders the login page.
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if err := h.renderer.Render(w, r, "admin/login", render.TemplateData{
		Title: "Entrar - Alluz",
	}); err != nil {
		logAndInternalError(w, "failed to render login", "error", err)
	}
}

// Login handles the login form submission.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, "/admin/login") {
		return
	}

	username := r.FormValue("username")
	password := r.FormValue("password")
	if username == "" || password == "" {
		flashError(w, r, h.renderer, "/admin/login", "Informe usuário e senha")
		return
	}

	if err := h.sessions.Login(r.Context(), username, password); err != nil {
		if gateway.IsAuth(err) {
			flashError(w, r, h.renderer, "/admin/login", "Usuário ou senha incorretos")
			return
		}
		slog.Error("login failed", "error", err)
		flashError(w, r, h.renderer, "/admin/login", "Erro ao comunicar com o servidor. Tente novamente.")
		return
	}

	slog.Info("admin logged in", "username", username)
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

// Logout destroys the session and returns to the login page.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Logout(r.Context()); err != nil {
		slog.Error("logout failed", "error", err)
	}
	http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
}

// PasswordForm renders the change-password page.
func (h *AuthHandler) PasswordForm(w http.ResponseWriter, r *http.Request) {
	if err := h.renderer.Render(w, r, "admin/password", render.TemplateData{
		Title:    "Alterar Senha - Alluz",
		Username: h.sessions.Username(r.Context()),
	}); err != nil {
		logAndInternalError(w, "failed to render password form", "error", err)
	}
}

// PasswordUpdate handles the change-password form submission.
func (h *AuthHandler) PasswordUpdate(w http.ResponseWriter, r *http.Request) {
	const backURL = "/admin/password"

	if !parseFormOrRedirect(w, r, h.renderer, backURL) {
		return
	}

	current := r.FormValue("current_password")
	next := r.FormValue("new_password")
	confirm := r.FormValue("confirm_password")

	switch {
	case current == "" || next == "":
		flashError(w, r, h.renderer, backURL, "Preencha todos os campos")
		return
	case next != confirm:
		flashError(w, r, h.renderer, backURL, "A confirmação não confere com a nova senha")
		return
	case len(next) < 8:
		flashError(w, r, h.renderer, backURL, "A nova senha deve ter pelo menos 8 caracteres")
		return
	}

	if err := h.passwd.ChangePassword(r.Context(), current, next); err != nil {
		handleGatewayError(w, r, h.renderer, h.sessions, backURL, err)
		return
	}

	flashSuccess(w, r, h.renderer, "/admin", "Senha alterada com sucesso")
}
