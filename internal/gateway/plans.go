// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package gateway

import (
	"context"
	"net/http"
	"net/url"

	"github.com/alluz/alluz-web/internal/model"
)

// ListPlans fetches all plans, server-sorted by ordem. Public.
func (c *Client) ListPlans(ctx context.Context) ([]model.Plan, error) {
	var plans []model.Plan
	if err := c.do(ctx, "list plans", http.MethodGet, "/plans", nil, &plans); err != nil {
		return nil, err
	}
	return plans, nil
}

// CreatePlan creates a plan and returns the record with its
// server-assigned id. Admin only.
func (c *Client) CreatePlan(ctx context.Context, draft model.PlanDraft) (model.Plan, error) {
	var plan model.Plan
	if err := c.do(ctx, "create plan", http.MethodPost, "/admin/plans", draft, &plan); err != nil {
		return model.Plan{}, err
	}
	return plan, nil
}

// UpdatePlan replaces the plan identified by id and returns the updated
// record. Admin only.
func (c *Client) UpdatePlan(ctx context.Context, id string, draft model.PlanDraft) (model.Plan, error) {
	var plan model.Plan
	if err := c.do(ctx, "update plan", http.MethodPut, "/admin/plans/"+url.PathEscape(id), draft, &plan); err != nil {
		return model.Plan{}, err
	}
	return plan, nil
}

// DeletePlan removes the plan identified by id. Admin only.
func (c *Client) DeletePlan(ctx context.Context, id string) error {
	return c.do(ctx, "delete plan", http.MethodDelete, "/admin/plans/"+url.PathEscape(id), nil, nil)
}
