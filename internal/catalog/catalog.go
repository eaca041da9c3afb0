// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package catalog holds the shared snapshot of content records and
// plans. It is the single source of truth for both the public renderer
// and the admin editor: reads come from the committed snapshot, writes
// go through the gateway first and mutate the snapshot only after the
// remote store acknowledges them. A failed write leaves the prior value
// visible and surfaces the error.
package catalog

import (
	"context"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/alluz/alluz-web/internal/content"
	"github.com/alluz/alluz-web/internal/model"
)

// Gateway is the remote store surface the catalog depends on.
type Gateway interface {
	GetContent(ctx context.Context) (map[string]string, error)
	UpdateContent(ctx context.Context, key, value string) error
	UpdateWhatsApp(ctx context.Context, numero, mensagemTemplate string) error
	ListPlans(ctx context.Context) ([]model.Plan, error)
	CreatePlan(ctx context.Context, draft model.PlanDraft) (model.Plan, error)
	UpdatePlan(ctx context.Context, id string, draft model.PlanDraft) (model.Plan, error)
	DeletePlan(ctx context.Context, id string) error
}

// Catalog is the write-through cache. Safe for concurrent use; the
// public renderer only ever observes committed state.
type Catalog struct {
	gw Gateway

	mu      sync.RWMutex
	content map[string]string
	plans   []model.Plan
	loaded  bool
}

// New creates an empty catalog. Until LoadAll succeeds, reads serve the
// registered content defaults and an empty plan list.
func New(gw Gateway) *Catalog {
	return &Catalog{
		gw:      gw,
		content: make(map[string]string),
	}
}

// LoadAll fetches content and plans concurrently and swaps the snapshot
// in atomically. If either fetch fails the whole load fails and the
// previous snapshot stays committed: callers never observe partial
// data.
func (c *Catalog) LoadAll(ctx context.Context) error {
	var (
		contentValues map[string]string
		plans         []model.Plan
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		contentValues, err = c.gw.GetContent(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		plans, err = c.gw.ListPlans(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	if contentValues == nil {
		contentValues = make(map[string]string)
	}

	c.mu.Lock()
	c.content = contentValues
	c.plans = plans
	c.loaded = true
	c.mu.Unlock()
	return nil
}

// Loaded reports whether an initial LoadAll has succeeded.
func (c *Catalog) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

// Content returns a copy of the raw content map.
func (c *Catalog) Content() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	values := make(map[string]string, len(c.content))
	for k, v := range c.content {
		values[k] = v
	}
	return values
}

// Value returns the content value for key, falling back to the
// registered default when absent or blank.
func (c *Catalog) Value(key string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return content.Value(c.content, key)
}

// WhatsApp returns the committed contact configuration.
func (c *Catalog) WhatsApp() model.WhatsAppConfig {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return content.WhatsApp(c.content)
}

// Plans returns a copy of the plan collection sorted by ordem
// ascending. The sort is stable: plans sharing an ordem keep their
// original collection order.
func (c *Catalog) Plans() []model.Plan {
	c.mu.RLock()
	plans := make([]model.Plan, len(c.plans))
	copy(plans, c.plans)
	c.mu.RUnlock()

	sort.SliceStable(plans, func(i, j int) bool {
		return plans[i].Ordem < plans[j].Ordem
	})
	return plans
}

// UpdateContentKey persists a content value and updates the snapshot
// after the remote write acknowledges. On failure the cached value is
// unchanged.
func (c *Catalog) UpdateContentKey(ctx context.Context, key, value string) error {
	if err := c.gw.UpdateContent(ctx, key, value); err != nil {
		return err
	}

	c.mu.Lock()
	c.content[key] = value
	c.mu.Unlock()
	return nil
}

// UpdateWhatsApp persists the contact number and message template as a
// compound update to the two whatsapp content keys, with the same
// write-through discipline as UpdateContentKey.
func (c *Catalog) UpdateWhatsApp(ctx context.Context, numero, mensagemTemplate string) error {
	if err := c.gw.UpdateWhatsApp(ctx, numero, mensagemTemplate); err != nil {
		return err
	}

	c.mu.Lock()
	c.content[content.KeyWhatsAppNumero] = numero
	c.content[content.KeyWhatsAppMensagem] = mensagemTemplate
	c.mu.Unlock()
	return nil
}

// CreatePlan validates the draft, strips blank benefit entries, and
// persists it. Validation failures are reported before the gateway is
// ever called.
func (c *Catalog) CreatePlan(ctx context.Context, draft model.PlanDraft) (model.Plan, error) {
	cleaned, verr := cleanPlanDraft(draft)
	if verr != nil {
		return model.Plan{}, verr
	}

	plan, err := c.gw.CreatePlan(ctx, cleaned)
	if err != nil {
		return model.Plan{}, err
	}

	c.mu.Lock()
	c.plans = append(c.plans, plan)
	c.mu.Unlock()
	return plan, nil
}

// UpdatePlan validates and persists the full draft for an existing
// plan, then merges the acknowledged record into the snapshot. There is
// no re-fetch after the write; under a single admin this matches the
// server state exactly.
func (c *Catalog) UpdatePlan(ctx context.Context, id string, draft model.PlanDraft) (model.Plan, error) {
	cleaned, verr := cleanPlanDraft(draft)
	if verr != nil {
		return model.Plan{}, verr
	}

	plan, err := c.gw.UpdatePlan(ctx, id, cleaned)
	if err != nil {
		return model.Plan{}, err
	}

	c.mu.Lock()
	for i := range c.plans {
		if c.plans[i].ID == id {
			c.plans[i] = plan
			break
		}
	}
	c.mu.Unlock()
	return plan, nil
}

// DeletePlan removes a plan, dropping it from the snapshot only after
// the remote delete acknowledges.
func (c *Catalog) DeletePlan(ctx context.Context, id string) error {
	if err := c.gw.DeletePlan(ctx, id); err != nil {
		return err
	}

	c.mu.Lock()
	for i := range c.plans {
		if c.plans[i].ID == id {
			c.plans = append(c.plans[:i], c.plans[i+1:]...)
			break
		}
	}
	c.mu.Unlock()
	return nil
}

// Plan looks up a plan by id in the committed snapshot.
func (c *Catalog) Plan(id string) (model.Plan, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, p := range c.plans {
		if p.ID == id {
			return p, true
		}
	}
	return model.Plan{}, false
}

// cleanPlanDraft strips blank descricao entries and validates the
// draft. A plan needs a name, a price, and at least one non-empty
// benefit line.
func cleanPlanDraft(draft model.PlanDraft) (model.PlanDraft, *model.ValidationError) {
	kept := make([]string, 0, len(draft.Descricao))
	for _, d := range draft.Descricao {
		if strings.TrimSpace(d) != "" {
			kept = append(kept, d)
		}
	}
	draft.Descricao = kept

	verr := model.Validate(draft)
	if len(kept) == 0 {
		if verr == nil {
			verr = &model.ValidationError{}
		}
		verr.MissingFields = append(verr.MissingFields, "descricao")
	}
	if verr != nil {
		return model.PlanDraft{}, verr
	}
	return draft, nil
}
