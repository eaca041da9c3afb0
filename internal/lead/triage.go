// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package lead

import (
	"context"
	"strings"

	"github.com/alluz/alluz-web/internal/gateway"
	"github.com/alluz/alluz-web/internal/model"
)

// Criteria are the conjunctive triage filters. Empty fields match
// everything; non-empty fields must all match.
type Criteria struct {
	Status string
	Plano  string
	Search string
}

// Filter applies the criteria to a lead collection. The result keeps
// the input order and shares no backing storage with it. The search
// term matches case-insensitively against nome, empresa, and cidade,
// and as a raw substring against telefone.
func Filter(leads []model.Lead, criteria Criteria) []model.Lead {
	search := strings.ToLower(strings.TrimSpace(criteria.Search))

	out := make([]model.Lead, 0, len(leads))
	for _, l := range leads {
		if criteria.Status != "" && l.Status != criteria.Status {
			continue
		}
		if criteria.Plano != "" && l.Plano != criteria.Plano {
			continue
		}
		if search != "" && !matchesSearch(l, search) {
			continue
		}
		out = append(out, l)
	}
	return out
}

func matchesSearch(l model.Lead, search string) bool {
	return strings.Contains(strings.ToLower(l.Nome), search) ||
		strings.Contains(strings.ToLower(l.Empresa), search) ||
		strings.Contains(strings.ToLower(l.Cidade), search) ||
		strings.Contains(l.Telefone, search)
}

// CountByStatus tallies leads per status. Every valid status gets an
// entry, zero included, so the dashboard stat cards render a stable
// set.
func CountByStatus(leads []model.Lead) map[string]int {
	counts := make(map[string]int, len(model.LeadStatuses))
	for _, s := range model.LeadStatuses {
		counts[s] = 0
	}
	for _, l := range leads {
		counts[l.Status]++
	}
	return counts
}

// StatusStore is the persistence surface the triage engine writes
// status changes through.
type StatusStore interface {
	ListLeads(ctx context.Context, query gateway.LeadQuery) ([]model.Lead, error)
	UpdateLeadStatus(ctx context.Context, id, status string) error
}

// Triage drives the admin lead list: server-side query, client-side
// conjunctive filtering, and status updates.
type Triage struct {
	store StatusStore
}

// NewTriage creates a triage engine over store.
func NewTriage(store StatusStore) *Triage {
	return &Triage{store: store}
}

// List fetches leads matching the server-side query.
func (t *Triage) List(ctx context.Context, query gateway.LeadQuery) ([]model.Lead, error) {
	return t.store.ListLeads(ctx, query)
}

// UpdateStatus validates and persists a status change. Any valid status
// is accepted regardless of the lead's current status.
func (t *Triage) UpdateStatus(ctx context.Context, id, status string) error {
	if !model.IsValidLeadStatus(status) {
		return &model.ValidationError{MissingFields: []string{"status"}}
	}
	return t.store.UpdateLeadStatus(ctx, id, status)
}
