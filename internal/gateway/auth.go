// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package gateway

import (
	"context"
	"net/http"

	"github.com/alluz/alluz-web/internal/model"
)

// Login exchanges admin credentials for a bearer token.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	body := map[string]string{"username": username, "password": password}
	var resp struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	if err := c.do(ctx, "login", http.MethodPost, "/auth/login", body, &resp); err != nil {
		return "", err
	}
	return resp.AccessToken, nil
}

// Me fetches the identity behind the current bearer token.
func (c *Client) Me(ctx context.Context) (model.User, error) {
	var user model.User
	if err := c.do(ctx, "me", http.MethodGet, "/auth/me", nil, &user); err != nil {
		return model.User{}, err
	}
	return user, nil
}

// ChangePassword sets a new password for the authenticated admin. The
// current password is re-checked server-side.
func (c *Client) ChangePassword(ctx context.Context, currentPassword, newPassword string) error {
	body := map[string]string{"current_password": currentPassword, "new_password": newPassword}
	return c.do(ctx, "change password", http.MethodPost, "/auth/change-password", body, nil)
}
