// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package gateway

import (
	"context"
	"net/http"
)

// GetContent fetches the full content key/value map. Public, no auth
// required.
func (c *Client) GetContent(ctx context.Context) (map[string]string, error) {
	var content map[string]string
	if err := c.do(ctx, "get content", http.MethodGet, "/content", nil, &content); err != nil {
		return nil, err
	}
	return content, nil
}

// UpdateContent upserts a single content key. Admin only.
func (c *Client) UpdateContent(ctx context.Context, key, value string) error {
	body := map[string]string{"key": key, "value": value}
	return c.do(ctx, "update content", http.MethodPut, "/admin/content", body, nil)
}

// UpdateWhatsApp updates the contact number and message template in one
// call. The server persists them as the two whatsapp content keys.
func (c *Client) UpdateWhatsApp(ctx context.Context, numero, mensagemTemplate string) error {
	body := map[string]string{"numero": numero, "mensagem_template": mensagemTemplate}
	return c.do(ctx, "update whatsapp", http.MethodPut, "/admin/whatsapp", body, nil)
}
