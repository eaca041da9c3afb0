// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/alluz/alluz-web/internal/catalog"
	"github.com/alluz/alluz-web/internal/content"
	"github.com/alluz/alluz-web/internal/gateway"
	"github.com/alluz/alluz-web/internal/lead"
	"github.com/alluz/alluz-web/internal/message"
	"github.com/alluz/alluz-web/internal/model"
	"github.com/alluz/alluz-web/internal/render"
)

// maxLeadBodySize bounds the public submission payload.
const maxLeadBodySize = 64 * 1024

// PublicHandler serves the landing page and the lead submission endpoint.
type PublicHandler struct {
	catalog  *catalog.Catalog
	pipeline *lead.Pipeline
	renderer *render.Renderer
}

// NewPublicHandler creates a new PublicHandler.
func NewPublicHandler(cat *catalog.Catalog, pipeline *lead.Pipeline, renderer *render.Renderer) *PublicHandler {
	return &PublicHandler{
		catalog:  cat,
		pipeline: pipeline,
		renderer: renderer,
	}
}

// homeData is the landing page view model, assembled entirely from the
// committed catalog snapshot.
type homeData struct {
	HeroTitulo       string
	HeroSubtitulo    string
	HeroMicrocopy    string
	ProblemaTitulo   string
	ProblemaTexto    string
	ComoTitulo       string
	Passos           []content.Step
	NaoInclusoTitulo string
	NaoInclusoItens  []string
	FAQTitulo        string
	FAQItens         []content.FAQItem
	Plans            []model.Plan
	WhatsAppNumero   string
	FooterRazao      string
	FooterCNPJ       string
}

// Home renders the landing page.
func (h *PublicHandler) Home(w http.ResponseWriter, r *http.Request) {
	if !h.catalog.Loaded() {
		slog.Warn("catalog not loaded, serving registered defaults")
	}

	values := h.catalog.Content()

	data := homeData{
		HeroTitulo:       content.Value(values, content.KeyHeroTitulo),
		HeroSubtitulo:    content.Value(values, content.KeyHeroSubtitulo),
		HeroMicrocopy:    content.Value(values, content.KeyHeroMicrocopy),
		ProblemaTitulo:   content.Value(values, content.KeyProblemaTitulo),
		ProblemaTexto:    content.Value(values, content.KeyProblemaTexto),
		ComoTitulo:       content.Value(values, content.KeyComoFuncionaTitulo),
		Passos:           content.Steps(values),
		NaoInclusoTitulo: content.Value(values, content.KeyNaoInclusoTitulo),
		NaoInclusoItens:  content.ExcludedItems(values),
		FAQTitulo:        content.Value(values, content.KeyFAQTitulo),
		FAQItens:         content.FAQItems(values),
		Plans:            h.catalog.Plans(),
		WhatsAppNumero:   message.Digits(content.Value(values, content.KeyWhatsAppNumero)),
		FooterRazao:      content.Value(values, content.KeyFooterRazaoSocial),
		FooterCNPJ:       content.Value(values, content.KeyFooterCNPJ),
	}

	if err := h.renderer.Render(w, r, "public/home", render.TemplateData{
		Title: "Alluz Energia - Acompanhamento Solar",
		Data:  data,
	}); err != nil {
		logAndInternalError(w, "failed to render home", "error", err)
	}
}

// CreateLead accepts a public lead submission as JSON and answers with
// the WhatsApp handoff link. A trapped submission gets the same shape
// of response as a real one.
func (h *PublicHandler) CreateLead(w http.ResponseWriter, r *http.Request) {
	var draft model.LeadDraft
	body := http.MaxBytesReader(w, r.Body, maxLeadBodySize)
	if err := json.NewDecoder(body).Decode(&draft); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Corpo da requisição inválido", nil)
		return
	}

	// A trapped submission comes back success-shaped from the pipeline,
	// so real and trapped responses share this single write.
	result, err := h.pipeline.Submit(r.Context(), draft, h.catalog.WhatsApp())
	if err != nil {
		h.writeSubmitError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"lead_id":      result.Lead.ID,
		"redirect_url": result.WhatsAppURL,
	})
}

func (h *PublicHandler) writeSubmitError(w http.ResponseWriter, err error) {
	var verr *model.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSONError(w, http.StatusUnprocessableEntity, "Preencha todos os campos obrigatórios", map[string]any{
			"missing_fields": verr.MissingFields,
		})
	case gateway.IsRateLimit(err):
		writeJSONError(w, http.StatusTooManyRequests, "Muitas tentativas. Aguarde um momento e tente novamente.", nil)
	default:
		slog.Error("lead submission failed", "error", err)
		writeJSONError(w, http.StatusBadGateway, "Não foi possível enviar agora. Tente novamente em instantes.", nil)
	}
}
