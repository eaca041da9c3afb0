// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package content

import "testing"

func TestValueFallsBackToDefault(t *testing.T) {
	values := map[string]string{
		KeyHeroTitulo: "Título customizado",
		KeyFAQTitulo:  "",
	}

	if got := Value(values, KeyHeroTitulo); got != "Título customizado" {
		t.Errorf("Value(hero_titulo) = %q", got)
	}
	// Blank stored value falls back, same as absent.
	if got := Value(values, KeyFAQTitulo); got != "Perguntas Frequentes" {
		t.Errorf("Value(faq_titulo) = %q, want registered default", got)
	}
	if got := Value(values, KeyFooterCNPJ); got != "34.782.317/0001-49" {
		t.Errorf("Value(footer_cnpj) = %q, want registered default", got)
	}
	if got := Value(values, "unknown_key"); got != "" {
		t.Errorf("Value(unknown) = %q, want empty", got)
	}
}

func TestStepsParsesStoredList(t *testing.T) {
	values := map[string]string{
		KeyComoFuncionaPassos: `[{"numero":"1","titulo":"Só um passo","descricao":"pronto"}]`,
	}

	steps := Steps(values)
	if len(steps) != 1 || steps[0].Titulo != "Só um passo" {
		t.Errorf("Steps = %+v", steps)
	}
}

func TestListParsingFailSoft(t *testing.T) {
	values := map[string]string{
		KeyFAQItens:        `{not valid json`,
		KeyNaoInclusoItens: ``,
	}

	faq := FAQItems(values)
	if len(faq) != 6 {
		t.Errorf("malformed FAQ value: got %d items, want the 6 defaults", len(faq))
	}

	items := ExcludedItems(values)
	if len(items) != 4 {
		t.Errorf("blank nao_incluso value: got %d items, want the 4 defaults", len(items))
	}
}

func TestWhatsAppDerivedFromContent(t *testing.T) {
	cfg := WhatsApp(map[string]string{
		KeyWhatsAppNumero: "5511999990000",
	})

	if cfg.Numero != "5511999990000" {
		t.Errorf("Numero = %q", cfg.Numero)
	}
	if cfg.MensagemTemplate != DefaultMensagemTemplate {
		t.Errorf("MensagemTemplate = %q, want default", cfg.MensagemTemplate)
	}
}

func TestEditableKeysAreRegisteredAndPlain(t *testing.T) {
	for _, key := range EditableKeys() {
		entry, ok := Lookup(key)
		if !ok {
			t.Errorf("editable key %q not registered", key)
			continue
		}
		if entry.Kind != KindPlain {
			t.Errorf("editable key %q has kind %d, want KindPlain", key, entry.Kind)
		}
	}
}

func TestLabelFallsBackToKey(t *testing.T) {
	if got := Label(KeyHeroTitulo); got != "Título do Hero" {
		t.Errorf("Label(hero_titulo) = %q", got)
	}
	if got := Label("mystery"); got != "mystery" {
		t.Errorf("Label(mystery) = %q, want the key itself", got)
	}
}
