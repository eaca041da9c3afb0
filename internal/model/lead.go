// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines the domain types exchanged with the Alluz API.
// JSON tags mirror the wire contract exactly; field names stay in
// Portuguese to match the API and the admin vocabulary.
package model

import (
	"fmt"
	"strings"
	"time"
)

// Lead status values. The status field is a flat enum: any status is
// reachable from any other, there is no guarded transition machine.
const (
	LeadStatusNovo      = "novo"
	LeadStatusContatado = "contatado"
	LeadStatusFechado   = "fechado"
	LeadStatusPerdido   = "perdido"
)

// LeadStatuses lists all valid lead statuses in triage order.
var LeadStatuses = []string{
	LeadStatusNovo,
	LeadStatusContatado,
	LeadStatusFechado,
	LeadStatusPerdido,
}

// IsValidLeadStatus reports whether s is a known lead status.
func IsValidLeadStatus(s string) bool {
	for _, v := range LeadStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Lead is a captured prospect record. It is created once via the public
// form; only the status is mutable afterwards, and only by the admin.
// The plano field is a free-text snapshot of the plan name at submission
// time, not a foreign key.
type Lead struct {
	ID             string    `json:"id"`
	Nome           string    `json:"nome"`
	Empresa        string    `json:"empresa"`
	Telefone       string    `json:"telefone"`
	Cidade         string    `json:"cidade"`
	Plano          string    `json:"plano"`
	Potencia       string    `json:"potencia"`
	Concessionaria string    `json:"concessionaria"`
	Observacoes    string    `json:"observacoes"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}

// LeadDraft is the public submission payload. Honeypot is the hidden
// anti-spam field: a non-empty value means an automated submission.
type LeadDraft struct {
	Nome           string `json:"nome" validate:"required"`
	Empresa        string `json:"empresa" validate:"required"`
	Telefone       string `json:"telefone" validate:"required"`
	Cidade         string `json:"cidade" validate:"required"`
	Plano          string `json:"plano" validate:"required"`
	Potencia       string `json:"potencia,omitempty"`
	Concessionaria string `json:"concessionaria,omitempty"`
	Observacoes    string `json:"observacoes,omitempty"`
	Honeypot       string `json:"honeypot,omitempty"`
}

// Trim normalizes all submitted fields by trimming surrounding whitespace.
// The honeypot is deliberately left untouched: bots that pad it with
// spaces still trip it.
func (d *LeadDraft) Trim() {
	d.Nome = strings.TrimSpace(d.Nome)
	d.Empresa = strings.TrimSpace(d.Empresa)
	d.Telefone = strings.TrimSpace(d.Telefone)
	d.Cidade = strings.TrimSpace(d.Cidade)
	d.Plano = strings.TrimSpace(d.Plano)
	d.Potencia = strings.TrimSpace(d.Potencia)
	d.Concessionaria = strings.TrimSpace(d.Concessionaria)
	d.Observacoes = strings.TrimSpace(d.Observacoes)
}

// ValidationError reports client-detected invalid input. It is returned
// before any network call is made.
type ValidationError struct {
	MissingFields []string
}

func (e *ValidationError) Error() string {
	if len(e.MissingFields) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.MissingFields, ", "))
}
