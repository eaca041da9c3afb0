// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package gateway

import (
	"context"
	"net/http"
	"net/url"

	"github.com/alluz/alluz-web/internal/model"
)

// LeadQuery holds the server-side lead list filters. Empty fields are
// omitted from the request. Dates are ISO 8601 strings compared against
// created_at.
type LeadQuery struct {
	Status     string
	Plano      string
	DataInicio string
	DataFim    string
}

// CreateLead submits a public lead. Unauthenticated; the server answers
// 429 when the caller is rate limited.
func (c *Client) CreateLead(ctx context.Context, draft model.LeadDraft) (model.Lead, error) {
	var lead model.Lead
	if err := c.do(ctx, "create lead", http.MethodPost, "/leads", draft, &lead); err != nil {
		return model.Lead{}, err
	}
	return lead, nil
}

// ListLeads fetches leads matching the query, newest first. Admin only.
func (c *Client) ListLeads(ctx context.Context, query LeadQuery) ([]model.Lead, error) {
	params := url.Values{}
	if query.Status != "" {
		params.Set("status", query.Status)
	}
	if query.Plano != "" {
		params.Set("plano", query.Plano)
	}
	if query.DataInicio != "" {
		params.Set("data_inicio", query.DataInicio)
	}
	if query.DataFim != "" {
		params.Set("data_fim", query.DataFim)
	}

	path := "/admin/leads"
	if encoded := params.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var leads []model.Lead
	if err := c.do(ctx, "list leads", http.MethodGet, path, nil, &leads); err != nil {
		return nil, err
	}
	return leads, nil
}

// UpdateLeadStatus sets the status of a lead. Admin only.
func (c *Client) UpdateLeadStatus(ctx context.Context, id, status string) error {
	body := map[string]string{"status": status}
	return c.do(ctx, "update lead status", http.MethodPatch, "/admin/leads/"+url.PathEscape(id), body, nil)
}

// ExportLeadsCSV fetches the full lead collection as CSV text. Admin
// only. The CSV formatting is the collaborator's concern; the payload
// is passed through untouched.
func (c *Client) ExportLeadsCSV(ctx context.Context) (string, error) {
	var resp struct {
		CSV string `json:"csv"`
	}
	if err := c.do(ctx, "export leads", http.MethodGet, "/admin/leads/export", nil, &resp); err != nil {
		return "", err
	}
	return resp.CSV, nil
}
