// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package message renders the outbound WhatsApp message from the
// configurable template and builds the wa.me deep link. It is pure and
// does no I/O.
package message

import (
	"net/url"
	"strings"
)

// Placeholder tokens supported by the message template.
const (
	PlaceholderNome           = "{nome}"
	PlaceholderEmpresa        = "{empresa}"
	PlaceholderTelefone       = "{telefone}"
	PlaceholderCidade         = "{cidade}"
	PlaceholderPlano          = "{plano}"
	PlaceholderKwp            = "{kwp}"
	PlaceholderConcessionaria = "{concessionaria}"
	PlaceholderObs            = "{obs}"
)

// Fallback literals substituted for the optional placeholders when the
// corresponding field is empty.
const (
	FallbackKwp            = "Não informado"
	FallbackConcessionaria = "Não informada"
	FallbackObs            = "Nenhuma"
)

// placeholderOrder fixes the substitution order. Each placeholder is
// replaced exactly once, at its first occurrence only; a template that
// repeats a placeholder keeps the later occurrences verbatim. This
// mirrors the behavior the message templates were written against and
// must not be changed to global substitution without a product
// decision.
var placeholderOrder = []string{
	PlaceholderNome,
	PlaceholderEmpresa,
	PlaceholderTelefone,
	PlaceholderCidade,
	PlaceholderPlano,
	PlaceholderKwp,
	PlaceholderConcessionaria,
	PlaceholderObs,
}

// Fields maps placeholder tokens to their substitution values.
type Fields map[string]string

// Render substitutes the fields into the template. Placeholders with no
// entry in fields are left untouched.
func Render(template string, fields Fields) string {
	out := template
	for _, placeholder := range placeholderOrder {
		value, ok := fields[placeholder]
		if !ok {
			continue
		}
		out = strings.Replace(out, placeholder, value, 1)
	}
	return out
}

// LeadFields builds the substitution map for a lead submission.
// Required fields are passed through as-is; the optional ones fall back
// to their fixed literals when empty.
func LeadFields(nome, empresa, telefone, cidade, plano, potencia, concessionaria, observacoes string) Fields {
	return Fields{
		PlaceholderNome:           nome,
		PlaceholderEmpresa:        empresa,
		PlaceholderTelefone:       telefone,
		PlaceholderCidade:         cidade,
		PlaceholderPlano:          plano,
		PlaceholderKwp:            orFallback(potencia, FallbackKwp),
		PlaceholderConcessionaria: orFallback(concessionaria, FallbackConcessionaria),
		PlaceholderObs:            orFallback(observacoes, FallbackObs),
	}
}

// WhatsAppLink builds the wa.me deep link for the rendered message.
// The configured number is reduced to its digits and the message is
// percent-encoded as a query component.
func WhatsAppLink(numero, mensagem string) string {
	return "https://wa.me/" + Digits(numero) + "?text=" + url.QueryEscape(mensagem)
}

// Digits strips everything but ASCII digits from a phone number,
// yielding the E.164 digit string wa.me expects.
func Digits(numero string) string {
	var b strings.Builder
	b.Grow(len(numero))
	for _, r := range numero {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func orFallback(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
