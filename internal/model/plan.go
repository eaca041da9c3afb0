// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// Plan is a subscription tier shown on the public page and managed in
// the admin console. Ordem determines render order ascending; ties keep
// the original collection order.
type Plan struct {
	ID        string   `json:"id"`
	Nome      string   `json:"nome"`
	Preco     string   `json:"preco"`
	Descricao []string `json:"descricao"`
	Ordem     int      `json:"ordem"`
	Destaque  bool     `json:"destaque"`
	Badge     string   `json:"badge,omitempty"`
}

// PlanDraft is the create/update payload for a plan. The API echoes the
// full record back with the server-assigned id.
type PlanDraft struct {
	Nome      string   `json:"nome" validate:"required"`
	Preco     string   `json:"preco" validate:"required"`
	Descricao []string `json:"descricao"`
	Ordem     int      `json:"ordem"`
	Destaque  bool     `json:"destaque"`
	Badge     string   `json:"badge,omitempty"`
}

// User is the admin identity returned by the auth collaborator.
type User struct {
	Username string `json:"username"`
}

// WhatsAppConfig is the derived contact configuration: a phone number
// and the outbound message template. It is a view over two content
// keys, not a separately persisted record.
type WhatsAppConfig struct {
	Numero           string `json:"numero"`
	MensagemTemplate string `json:"mensagem_template"`
}
