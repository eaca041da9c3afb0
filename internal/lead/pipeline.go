// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package lead implements the capture pipeline for public form
// submissions and the triage engine for the admin lead list.
package lead

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/alluz/alluz-web/internal/gateway"
	"github.com/alluz/alluz-web/internal/message"
	"github.com/alluz/alluz-web/internal/model"
)

// Submitter is the persistence surface the pipeline writes through.
type Submitter interface {
	CreateLead(ctx context.Context, draft model.LeadDraft) (model.Lead, error)
}

// Pipeline runs a submission through the honeypot gate, normalization,
// validation, persistence, and handoff-link construction, in that
// order. A stage failure stops the run; later stages never see input a
// prior stage rejected.
type Pipeline struct {
	submitter Submitter
	log       *slog.Logger
}

// Result is the outcome of an accepted submission. Trapped is set when
// the honeypot tripped: nothing was persisted, but the result still
// carries a fresh id and a rendered handoff link so the response is
// indistinguishable from a real one.
type Result struct {
	Lead        model.Lead
	WhatsAppURL string
	Trapped     bool
}

// NewPipeline creates a pipeline writing through submitter.
func NewPipeline(submitter Submitter, log *slog.Logger) *Pipeline {
	return &Pipeline{submitter: submitter, log: log}
}

// Submit processes one public submission. The whatsapp config is passed
// in by the caller from the committed content snapshot so that a
// submission and the template it renders with are consistent.
//
// A tripped honeypot short-circuits before validation and persistence
// and returns a success-shaped Result with Trapped set: bots get a
// response indistinguishable from a real one.
func (p *Pipeline) Submit(ctx context.Context, draft model.LeadDraft, wa model.WhatsAppConfig) (Result, error) {
	if draft.Honeypot != "" {
		p.log.Info("honeypot tripped, dropping submission")
		draft.Trim()
		return Result{
			Lead:        model.Lead{ID: uuid.NewString()},
			WhatsAppURL: handoffLink(draft, wa),
			Trapped:     true,
		}, nil
	}

	draft.Trim()
	if verr := model.Validate(&draft); verr != nil {
		return Result{}, verr
	}

	created, err := p.submitter.CreateLead(ctx, draft)
	if err != nil {
		if gateway.IsRateLimit(err) {
			p.log.Warn("lead submission rate limited")
		} else {
			p.log.Error("lead submission failed", "error", err)
		}
		return Result{}, err
	}

	return Result{
		Lead:        created,
		WhatsAppURL: handoffLink(draft, wa),
	}, nil
}

// handoffLink renders the outbound message for a draft and wraps it in
// a wa.me link. Both the real and the trapped path go through here so
// the two response shapes cannot drift.
func handoffLink(draft model.LeadDraft, wa model.WhatsAppConfig) string {
	mensagem := message.Render(wa.MensagemTemplate, message.LeadFields(
		draft.Nome,
		draft.Empresa,
		draft.Telefone,
		draft.Cidade,
		draft.Plano,
		draft.Potencia,
		draft.Concessionaria,
		draft.Observacoes,
	))
	return message.WhatsAppLink(wa.Numero, mensagem)
}
