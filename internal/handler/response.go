// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler wires HTTP routes to the catalog, the lead pipeline,
// and the remote API.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/alluz/alluz-web/internal/gateway"
	"github.com/alluz/alluz-web/internal/render"
	"github.com/alluz/alluz-web/internal/session"
)

// flashAndRedirect sets a flash message and redirects to the given URL.
// Uses http.StatusSeeOther (303) for POST/PUT/DELETE redirects.
func flashAndRedirect(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, url, message, messageType string) {
	renderer.SetFlash(r, message, messageType)
	http.Redirect(w, r, url, http.StatusSeeOther)
}

// flashError sets an error flash message and redirects to the given URL.
func flashError(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, url, message string) {
	flashAndRedirect(w, r, renderer, url, message, "error")
}

// flashSuccess sets a success flash message and redirects to the given URL.
func flashSuccess(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, url, message string) {
	flashAndRedirect(w, r, renderer, url, message, "success")
}

// parseFormOrRedirect parses the request form and redirects with an error message on failure.
// Returns true if parsing succeeded, false if it failed (and redirect was performed).
func parseFormOrRedirect(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, redirectURL string) bool {
	if err := r.ParseForm(); err != nil {
		flashError(w, r, renderer, redirectURL, "Dados do formulário inválidos")
		return false
	}
	return true
}

// logAndInternalError logs an error and writes a 500 Internal Server Error response.
func logAndInternalError(w http.ResponseWriter, logMsg string, args ...any) {
	slog.Error(logMsg, args...)
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

// handleGatewayError translates an API failure on an admin page into a
// user-visible outcome. An auth rejection ends the session and sends
// the admin back to the login page; everything else flashes a message
// on the page they came from.
func handleGatewayError(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, sessions *session.Manager, backURL string, err error) {
	switch {
	case gateway.IsAuth(err):
		sessions.ForceLogout(r.Context())
		flashError(w, r, renderer, "/admin/login", "Sessão expirada. Entre novamente.")
	case gateway.IsNotFound(err):
		flashError(w, r, renderer, backURL, "Registro não encontrado. A página foi recarregada.")
	case gateway.IsRateLimit(err):
		flashError(w, r, renderer, backURL, "Muitas tentativas. Aguarde um momento.")
	default:
		slog.Error("api request failed", "error", err, "path", r.URL.Path)
		flashError(w, r, renderer, backURL, "Erro ao comunicar com o servidor. Tente novamente.")
	}
}
