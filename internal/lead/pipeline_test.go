// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package lead

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/alluz/alluz-web/internal/gateway"
	"github.com/alluz/alluz-web/internal/model"
)

type fakeSubmitter struct {
	created []model.LeadDraft
	err     error
}

func (f *fakeSubmitter) CreateLead(_ context.Context, draft model.LeadDraft) (model.Lead, error) {
	if f.err != nil {
		return model.Lead{}, f.err
	}
	f.created = append(f.created, draft)
	return model.Lead{
		ID:       "lead-1",
		Nome:     draft.Nome,
		Empresa:  draft.Empresa,
		Telefone: draft.Telefone,
		Cidade:   draft.Cidade,
		Plano:    draft.Plano,
		Status:   model.LeadStatusNovo,
	}, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func validDraft() model.LeadDraft {
	return model.LeadDraft{
		Nome:     "Ana",
		Empresa:  "Solar Ltda",
		Telefone: "(44) 99999-0000",
		Cidade:   "Maringá",
		Plano:    "Essencial",
	}
}

func testWhatsApp() model.WhatsAppConfig {
	return model.WhatsAppConfig{
		Numero:           "+55 (44) 98857-4869",
		MensagemTemplate: "Olá! Sou {nome} da {empresa}. Plano: {plano}. Potência: {kwp}. Obs: {obs}.",
	}
}

func TestSubmitHoneypotSilentDrop(t *testing.T) {
	sub := &fakeSubmitter{}
	p := NewPipeline(sub, discardLogger())

	draft := validDraft()
	draft.Honeypot = "http://spam.example"

	res, err := p.Submit(context.Background(), draft, testWhatsApp())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !res.Trapped {
		t.Error("Trapped = false, want true")
	}
	if len(sub.created) != 0 {
		t.Error("submitter called for a trapped submission")
	}

	// The trapped result still looks like a real one.
	if res.Lead.ID == "" {
		t.Error("trapped result missing lead id")
	}
	if !strings.HasPrefix(res.WhatsAppURL, "https://wa.me/5544988574869?text=") {
		t.Errorf("trapped WhatsAppURL = %q, want wa.me link", res.WhatsAppURL)
	}
}

// A trapped submission and a real one with the same fields must render
// the same handoff link; only the lead id differs.
func TestSubmitHoneypotMatchesRealShape(t *testing.T) {
	p := NewPipeline(&fakeSubmitter{}, discardLogger())

	real, err := p.Submit(context.Background(), validDraft(), testWhatsApp())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	trappedDraft := validDraft()
	trappedDraft.Honeypot = "gotcha"
	trapped, err := p.Submit(context.Background(), trappedDraft, testWhatsApp())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if trapped.WhatsAppURL != real.WhatsAppURL {
		t.Errorf("trapped URL %q != real URL %q", trapped.WhatsAppURL, real.WhatsAppURL)
	}
	if trapped.Lead.ID == real.Lead.ID {
		t.Error("trapped lead id collides with the persisted one")
	}
}

func TestSubmitHoneypotWhitespaceStillTrips(t *testing.T) {
	sub := &fakeSubmitter{}
	p := NewPipeline(sub, discardLogger())

	draft := validDraft()
	draft.Honeypot = "   "

	res, err := p.Submit(context.Background(), draft, testWhatsApp())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !res.Trapped {
		t.Error("whitespace honeypot did not trip")
	}
}

func TestSubmitMissingFields(t *testing.T) {
	sub := &fakeSubmitter{}
	p := NewPipeline(sub, discardLogger())

	draft := validDraft()
	draft.Cidade = "   "

	_, err := p.Submit(context.Background(), draft, testWhatsApp())
	var verr *model.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Submit error = %v, want ValidationError", err)
	}
	if len(verr.MissingFields) != 1 || verr.MissingFields[0] != "cidade" {
		t.Errorf("MissingFields = %v, want [cidade]", verr.MissingFields)
	}
	if len(sub.created) != 0 {
		t.Error("submitter called for an invalid draft")
	}
}

func TestSubmitRateLimited(t *testing.T) {
	sub := &fakeSubmitter{err: &gateway.RateLimitError{Op: "create lead"}}
	p := NewPipeline(sub, discardLogger())

	_, err := p.Submit(context.Background(), validDraft(), testWhatsApp())
	if !gateway.IsRateLimit(err) {
		t.Fatalf("Submit error = %v, want rate limit", err)
	}
}

func TestSubmitBuildsHandoffLink(t *testing.T) {
	sub := &fakeSubmitter{}
	p := NewPipeline(sub, discardLogger())

	draft := validDraft()
	draft.Nome = "  Ana  "
	draft.Observacoes = "ligar à tarde"

	res, err := p.Submit(context.Background(), draft, testWhatsApp())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if res.Lead.ID != "lead-1" {
		t.Errorf("Lead.ID = %q", res.Lead.ID)
	}
	if len(sub.created) != 1 || sub.created[0].Nome != "Ana" {
		t.Errorf("persisted draft not trimmed: %+v", sub.created)
	}

	if !strings.HasPrefix(res.WhatsAppURL, "https://wa.me/5544988574869?text=") {
		t.Errorf("WhatsAppURL = %q, want wa.me link with digits-only number", res.WhatsAppURL)
	}
	for _, want := range []string{"Ana", "Solar+Ltda", "Essencial"} {
		if !strings.Contains(res.WhatsAppURL, want) {
			t.Errorf("WhatsAppURL missing %q: %q", want, res.WhatsAppURL)
		}
	}
	// Optional fields fall back to their fixed literals.
	if !strings.Contains(res.WhatsAppURL, "N%C3%A3o+informado") {
		t.Errorf("WhatsAppURL missing kwp fallback: %q", res.WhatsAppURL)
	}
	if !strings.Contains(res.WhatsAppURL, "ligar+%C3%A0+tarde") {
		t.Errorf("WhatsAppURL missing observações: %q", res.WhatsAppURL)
	}
}
