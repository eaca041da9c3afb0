// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/alluz/alluz-web/internal/catalog"
	"github.com/alluz/alluz-web/internal/content"
	"github.com/alluz/alluz-web/internal/gateway"
	"github.com/alluz/alluz-web/internal/lead"
	"github.com/alluz/alluz-web/internal/model"
	"github.com/alluz/alluz-web/internal/render"
	"github.com/alluz/alluz-web/internal/session"
)

// LeadExporter is the remote CSV export operation.
type LeadExporter interface {
	ExportLeadsCSV(ctx context.Context) (string, error)
}

// AdminHandler serves the admin console: lead triage, content editing,
// plan management.
type AdminHandler struct {
	catalog  *catalog.Catalog
	triage   *lead.Triage
	exporter LeadExporter
	renderer *render.Renderer
	sessions *session.Manager
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(cat *catalog.Catalog, triage *lead.Triage, exporter LeadExporter, renderer *render.Renderer, sessions *session.Manager) *AdminHandler {
	return &AdminHandler{
		catalog:  cat,
		triage:   triage,
		exporter: exporter,
		renderer: renderer,
		sessions: sessions,
	}
}

// dashboardData is the lead triage view model.
type dashboardData struct {
	Leads    []model.Lead
	Counts   map[string]int
	Statuses []string
	Plans    []model.Plan

	// Active filters, echoed back into the form controls.
	FilterStatus string
	FilterPlano  string
	FilterSearch string
	FilterInicio string
	FilterFim    string

	// BackURL carries the filtered list URL through status-change forms.
	BackURL string
}

// Dashboard renders the lead list with the active filters applied.
// Status, plan, and date filters go to the API; the search box filters
// the fetched page locally.
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := gateway.LeadQuery{
		Status:     q.Get("status"),
		Plano:      q.Get("plano"),
		DataInicio: q.Get("data_inicio"),
		DataFim:    q.Get("data_fim"),
	}

	leads, err := h.triage.List(r.Context(), query)
	if err != nil {
		handleGatewayError(w, r, h.renderer, h.sessions, "/admin", err)
		return
	}

	search := q.Get("busca")
	filtered := lead.Filter(leads, lead.Criteria{Search: search})

	data := dashboardData{
		Leads:        filtered,
		Counts:       lead.CountByStatus(leads),
		Statuses:     model.LeadStatuses,
		Plans:        h.catalog.Plans(),
		FilterStatus: query.Status,
		FilterPlano:  query.Plano,
		FilterSearch: search,
		FilterInicio: query.DataInicio,
		FilterFim:    query.DataFim,
		BackURL:      r.URL.RequestURI(),
	}

	if err := h.renderer.Render(w, r, "admin/dashboard", render.TemplateData{
		Title:    "Leads - Alluz Admin",
		Data:     data,
		Username: h.sessions.Username(r.Context()),
	}); err != nil {
		logAndInternalError(w, "failed to render dashboard", "error", err)
	}
}

// UpdateLeadStatus handles a status change from the triage board.
func (h *AdminHandler) UpdateLeadStatus(w http.ResponseWriter, r *http.Request) {
	backURL := dashboardBackURL(r)

	if !parseFormOrRedirect(w, r, h.renderer, backURL) {
		return
	}

	id := chi.URLParam(r, "id")
	status := r.FormValue("status")

	if err := h.triage.UpdateStatus(r.Context(), id, status); err != nil {
		var verr *model.ValidationError
		if errors.As(err, &verr) {
			flashError(w, r, h.renderer, backURL, "Status inválido")
			return
		}
		handleGatewayError(w, r, h.renderer, h.sessions, backURL, err)
		return
	}

	flashSuccess(w, r, h.renderer, backURL, "Status atualizado")
}

// ExportCSV streams the lead export as a CSV download.
func (h *AdminHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	csv, err := h.exporter.ExportLeadsCSV(r.Context())
	if err != nil {
		handleGatewayError(w, r, h.renderer, h.sessions, "/admin", err)
		return
	}

	filename := fmt.Sprintf("leads-alluz-%s.csv", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	_, _ = w.Write([]byte(csv))
}

// contentData is the content editor view model.
type contentData struct {
	Entries []contentEntry
}

type contentEntry struct {
	Key   string
	Label string
	Value string
}

// ContentForm renders the plain-text content editor.
func (h *AdminHandler) ContentForm(w http.ResponseWriter, r *http.Request) {
	values := h.catalog.Content()

	data := contentData{}
	for _, key := range content.EditableKeys() {
		data.Entries = append(data.Entries, contentEntry{
			Key:   key,
			Label: content.Label(key),
			Value: content.Value(values, key),
		})
	}

	if err := h.renderer.Render(w, r, "admin/content", render.TemplateData{
		Title:    "Conteúdo - Alluz Admin",
		Data:     data,
		Username: h.sessions.Username(r.Context()),
	}); err != nil {
		logAndInternalError(w, "failed to render content editor", "error", err)
	}
}

// ContentUpdate persists one content key from the editor.
func (h *AdminHandler) ContentUpdate(w http.ResponseWriter, r *http.Request) {
	const backURL = "/admin/content"

	if !parseFormOrRedirect(w, r, h.renderer, backURL) {
		return
	}

	key := r.FormValue("key")
	if _, ok := content.Lookup(key); !ok {
		flashError(w, r, h.renderer, backURL, "Campo desconhecido")
		return
	}

	value := r.FormValue("value")
	if err := h.catalog.UpdateContentKey(r.Context(), key, value); err != nil {
		handleGatewayError(w, r, h.renderer, h.sessions, backURL, err)
		return
	}

	flashSuccess(w, r, h.renderer, backURL, content.Label(key)+" atualizado")
}

// whatsappData is the contact configuration view model.
type whatsappData struct {
	Numero   string
	Mensagem string
}

// WhatsAppForm renders the contact configuration editor.
func (h *AdminHandler) WhatsAppForm(w http.ResponseWriter, r *http.Request) {
	cfg := h.catalog.WhatsApp()

	if err := h.renderer.Render(w, r, "admin/whatsapp", render.TemplateData{
		Title:    "WhatsApp - Alluz Admin",
		Data:     whatsappData{Numero: cfg.Numero, Mensagem: cfg.MensagemTemplate},
		Username: h.sessions.Username(r.Context()),
	}); err != nil {
		logAndInternalError(w, "failed to render whatsapp form", "error", err)
	}
}

// WhatsAppUpdate persists the contact number and message template.
func (h *AdminHandler) WhatsAppUpdate(w http.ResponseWriter, r *http.Request) {
	const backURL = "/admin/whatsapp"

	if !parseFormOrRedirect(w, r, h.renderer, backURL) {
		return
	}

	numero := strings.TrimSpace(r.FormValue("numero"))
	mensagem := r.FormValue("mensagem_template")
	if numero == "" || mensagem == "" {
		flashError(w, r, h.renderer, backURL, "Preencha o número e a mensagem")
		return
	}

	if err := h.catalog.UpdateWhatsApp(r.Context(), numero, mensagem); err != nil {
		handleGatewayError(w, r, h.renderer, h.sessions, backURL, err)
		return
	}

	flashSuccess(w, r, h.renderer, backURL, "Configuração do WhatsApp atualizada")
}

// plansData is the plan list view model.
type plansData struct {
	Plans []model.Plan
}

// planFormData is the plan create/edit view model.
type planFormData struct {
	Plan      model.Plan
	Descricao string
	IsNew     bool
}

// PlansList renders the plan management page.
func (h *AdminHandler) PlansList(w http.ResponseWriter, r *http.Request) {
	if err := h.renderer.Render(w, r, "admin/plans", render.TemplateData{
		Title:    "Planos - Alluz Admin",
		Data:     plansData{Plans: h.catalog.Plans()},
		Username: h.sessions.Username(r.Context()),
	}); err != nil {
		logAndInternalError(w, "failed to render plan list", "error", err)
	}
}

// PlanNewForm renders the blank plan form.
func (h *AdminHandler) PlanNewForm(w http.ResponseWriter, r *http.Request) {
	h.renderPlanForm(w, r, planFormData{IsNew: true})
}

// PlanEditForm renders the form pre-filled with an existing plan.
func (h *AdminHandler) PlanEditForm(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	plan, ok := h.catalog.Plan(id)
	if !ok {
		flashError(w, r, h.renderer, "/admin/plans", "Plano não encontrado")
		return
	}

	h.renderPlanForm(w, r, planFormData{
		Plan:      plan,
		Descricao: strings.Join(plan.Descricao, "\n"),
	})
}

func (h *AdminHandler) renderPlanForm(w http.ResponseWriter, r *http.Request, data planFormData) {
	if err := h.renderer.Render(w, r, "admin/plan_form", render.TemplateData{
		Title:    "Plano - Alluz Admin",
		Data:     data,
		Username: h.sessions.Username(r.Context()),
	}); err != nil {
		logAndInternalError(w, "failed to render plan form", "error", err)
	}
}

// PlanCreate handles the new-plan form submission.
func (h *AdminHandler) PlanCreate(w http.ResponseWriter, r *http.Request) {
	const backURL = "/admin/plans/new"

	if !parseFormOrRedirect(w, r, h.renderer, backURL) {
		return
	}

	draft := planDraftFromForm(r)
	if _, err := h.catalog.CreatePlan(r.Context(), draft); err != nil {
		h.handlePlanWriteError(w, r, backURL, err)
		return
	}

	flashSuccess(w, r, h.renderer, "/admin/plans", "Plano criado")
}

// PlanUpdate handles the edit-plan form submission.
func (h *AdminHandler) PlanUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	backURL := "/admin/plans/" + id + "/edit"

	if !parseFormOrRedirect(w, r, h.renderer, backURL) {
		return
	}

	draft := planDraftFromForm(r)
	if _, err := h.catalog.UpdatePlan(r.Context(), id, draft); err != nil {
		h.handlePlanWriteError(w, r, backURL, err)
		return
	}

	flashSuccess(w, r, h.renderer, "/admin/plans", "Plano atualizado")
}

// PlanDelete removes a plan.
func (h *AdminHandler) PlanDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.catalog.DeletePlan(r.Context(), id); err != nil {
		handleGatewayError(w, r, h.renderer, h.sessions, "/admin/plans", err)
		return
	}

	flashSuccess(w, r, h.renderer, "/admin/plans", "Plano removido")
}

func (h *AdminHandler) handlePlanWriteError(w http.ResponseWriter, r *http.Request, backURL string, err error) {
	var verr *model.ValidationError
	if errors.As(err, &verr) {
		flashError(w, r, h.renderer, backURL, "Preencha os campos obrigatórios: "+strings.Join(verr.MissingFields, ", "))
		return
	}
	handleGatewayError(w, r, h.renderer, h.sessions, backURL, err)
}

// planDraftFromForm reads the plan form fields. The benefit list comes
// from a textarea, one entry per line; blank lines are dropped by the
// catalog.
func planDraftFromForm(r *http.Request) model.PlanDraft {
	ordem, _ := strconv.Atoi(r.FormValue("ordem"))
	descricao := strings.ReplaceAll(r.FormValue("descricao"), "\r\n", "\n")
	return model.PlanDraft{
		Nome:      strings.TrimSpace(r.FormValue("nome")),
		Preco:     strings.TrimSpace(r.FormValue("preco")),
		Descricao: strings.Split(descricao, "\n"),
		Ordem:     ordem,
		Destaque:  r.FormValue("destaque") == "on",
		Badge:     strings.TrimSpace(r.FormValue("badge")),
	}
}

// dashboardBackURL preserves the active filters when bouncing back to
// the lead list after a status change.
func dashboardBackURL(r *http.Request) string {
	if ref := r.FormValue("back"); strings.HasPrefix(ref, "/admin") {
		return ref
	}
	return "/admin"
}
