// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package content is the single source of truth for the editable
// content keys: their admin labels, fallback defaults, and value kind
// (plain text vs JSON-encoded list). Both the public renderer and the
// admin editor consume this registry, so the two surfaces cannot drift.
package content

import (
	"encoding/json"

	"github.com/alluz/alluz-web/internal/model"
)

// Kind tags how a content value is interpreted.
type Kind int

const (
	// KindPlain values render as-is.
	KindPlain Kind = iota
	// KindList values are JSON-encoded arrays. Parsing is fail-soft:
	// a malformed value yields the registered default, never an error.
	KindList
)

// Well-known content keys.
const (
	KeyHeroTitulo         = "hero_titulo"
	KeyHeroSubtitulo      = "hero_subtitulo"
	KeyHeroMicrocopy      = "hero_microcopy"
	KeyProblemaTitulo     = "problema_titulo"
	KeyProblemaTexto      = "problema_texto"
	KeyComoFuncionaTitulo = "como_funciona_titulo"
	KeyComoFuncionaPassos = "como_funciona_passos"
	KeyNaoInclusoTitulo   = "nao_incluso_titulo"
	KeyNaoInclusoItens    = "nao_incluso_itens"
	KeyFAQTitulo          = "faq_titulo"
	KeyFAQItens           = "faq_itens"
	KeyWhatsAppNumero     = "whatsapp_numero"
	KeyWhatsAppMensagem   = "whatsapp_mensagem"
	KeyFooterRazaoSocial  = "footer_razao_social"
	KeyFooterCNPJ         = "footer_cnpj"
)

// Entry describes a registered content key.
type Entry struct {
	Label   string
	Default string
	Kind    Kind
}

// Step is one item of the "como funciona" walkthrough.
type Step struct {
	Numero    string `json:"numero"`
	Titulo    string `json:"titulo"`
	Descricao string `json:"descricao"`
}

// FAQItem is one question/answer pair.
type FAQItem struct {
	Pergunta string `json:"pergunta"`
	Resposta string `json:"resposta"`
}

// DefaultMensagemTemplate is the fallback outbound message template.
const DefaultMensagemTemplate = "Olá! Sou {nome} da empresa {empresa}. " +
	"Telefone: {telefone}, Cidade: {cidade}. Tenho interesse no {plano}. " +
	"Potência: {kwp}. Concessionária: {concessionaria}. Observações: {obs}. " +
	"Quero assinar o plano de acompanhamento."

var defaultPassos = mustJSON([]Step{
	{Numero: "1", Titulo: "Preencha o formulário", Descricao: "Informe seus dados e o plano desejado"},
	{Numero: "2", Titulo: "Falamos pelo WhatsApp", Descricao: "Confirmamos seus dados e tiramos dúvidas"},
	{Numero: "3", Titulo: "Iniciamos o acompanhamento", Descricao: "Começamos o monitoramento mensal do seu sistema"},
	{Numero: "4", Titulo: "Receba orientações", Descricao: "Você recebe informativos e orientações periódicas"},
})

var defaultNaoIncluso = mustJSON([]string{
	"Não inclui deslocamento",
	"Não inclui manutenção corretiva presencial",
	"Manutenção avulsa: a negociar",
	"Garantia: quando a Alluz executar algum serviço presencial, a garantia será apenas sobre o serviço executado (prazo informado no orçamento)",
})

var defaultFAQ = mustJSON([]FAQItem{
	{Pergunta: "Isso serve para demanda contratada?", Resposta: "Sim, nosso acompanhamento atende tanto sistemas residenciais quanto comerciais com demanda contratada."},
	{Pergunta: "Até quantos kWp?", Resposta: "Atendemos sistemas de até 75 kWp."},
	{Pergunta: "Preciso ter acesso ao app?", Resposta: "Idealmente sim, mas podemos trabalhar com as faturas enviadas mensalmente caso não tenha acesso ao app do inversor."},
	{Pergunta: "Como vocês conferem créditos/excedente?", Resposta: "Analisamos suas faturas de energia mensalmente e comparamos com a geração do sistema para verificar se os créditos estão sendo aplicados corretamente."},
	{Pergunta: "Se der problema, vocês atendem?", Resposta: "Oferecemos orientação remota. Para serviços presenciais, fazemos orçamento à parte com desconto conforme seu plano."},
	{Pergunta: "Posso cancelar quando quiser?", Resposta: "Sim! Nossos planos são mensais e sem fidelidade. Você pode cancelar a qualquer momento."},
})

// registry maps every known content key to its entry. Unknown keys are
// tolerated at render time (they fall through Value with an empty
// default) but only registered keys appear in the admin editor.
var registry = map[string]Entry{
	KeyHeroTitulo:         {Label: "Título do Hero", Default: "Acompanhamento remoto do seu sistema solar"},
	KeyHeroSubtitulo:      {Label: "Subtítulo do Hero", Default: "Monitoramento mensal, excedente/créditos e orientação para você não ficar sem suporte"},
	KeyHeroMicrocopy:      {Label: "Microcopy do Hero", Default: "Sem deslocamento. Tudo remoto."},
	KeyProblemaTitulo:     {Label: "Título - Problema", Default: "Comprou solar e ficou sem suporte?"},
	KeyProblemaTexto:      {Label: "Texto - Problema", Default: "App offline, geração baixa, créditos que não batem? É comum empresas terem fechado e o cliente ficar órfão. A Alluz Energia está aqui para ajudar."},
	KeyComoFuncionaTitulo: {Label: "Título - Como Funciona", Default: "Como funciona"},
	KeyComoFuncionaPassos: {Label: "Passos - Como Funciona", Default: defaultPassos, Kind: KindList},
	KeyNaoInclusoTitulo:   {Label: "Título - Não Incluso", Default: "O que NÃO está incluso"},
	KeyNaoInclusoItens:    {Label: "Itens - Não Incluso", Default: defaultNaoIncluso, Kind: KindList},
	KeyFAQTitulo:          {Label: "Título - FAQ", Default: "Perguntas Frequentes"},
	KeyFAQItens:           {Label: "Itens - FAQ", Default: defaultFAQ, Kind: KindList},
	KeyWhatsAppNumero:     {Label: "Número do WhatsApp", Default: "5544988574869"},
	KeyWhatsAppMensagem:   {Label: "Mensagem do WhatsApp", Default: DefaultMensagemTemplate},
	KeyFooterRazaoSocial:  {Label: "Razão Social (Rodapé)", Default: "Alluz Energia Sustentável e Tecnologia da Informacao"},
	KeyFooterCNPJ:         {Label: "CNPJ (Rodapé)", Default: "34.782.317/0001-49"},
}

// editableKeys lists the plain-text keys shown in the admin content
// editor, in display order. List keys and the whatsapp pair have their
// own dedicated editors.
var editableKeys = []string{
	KeyHeroTitulo,
	KeyHeroSubtitulo,
	KeyHeroMicrocopy,
	KeyProblemaTitulo,
	KeyProblemaTexto,
	KeyComoFuncionaTitulo,
	KeyNaoInclusoTitulo,
	KeyFAQTitulo,
	KeyFooterRazaoSocial,
	KeyFooterCNPJ,
}

// Lookup returns the registry entry for a key.
func Lookup(key string) (Entry, bool) {
	entry, ok := registry[key]
	return entry, ok
}

// Label returns the admin label for a key, or the key itself when it is
// not registered.
func Label(key string) string {
	if entry, ok := registry[key]; ok {
		return entry.Label
	}
	return key
}

// EditableKeys returns the ordered list of plain-text keys for the
// admin content editor.
func EditableKeys() []string {
	keys := make([]string, len(editableKeys))
	copy(keys, editableKeys)
	return keys
}

// Value returns the stored value for key, falling back to the
// registered default when the key is absent or blank.
func Value(values map[string]string, key string) string {
	if v, ok := values[key]; ok && v != "" {
		return v
	}
	if entry, ok := registry[key]; ok {
		return entry.Default
	}
	return ""
}

// Steps parses the "como funciona" walkthrough, falling back to the
// default on absent or malformed values.
func Steps(values map[string]string) []Step {
	var steps []Step
	parseList(values, KeyComoFuncionaPassos, &steps)
	return steps
}

// ExcludedItems parses the "não incluso" list, falling back to the
// default on absent or malformed values.
func ExcludedItems(values map[string]string) []string {
	var items []string
	parseList(values, KeyNaoInclusoItens, &items)
	return items
}

// FAQItems parses the FAQ list, falling back to the default on absent
// or malformed values.
func FAQItems(values map[string]string) []FAQItem {
	var items []FAQItem
	parseList(values, KeyFAQItens, &items)
	return items
}

// WhatsApp derives the contact configuration from the content map.
func WhatsApp(values map[string]string) model.WhatsAppConfig {
	return model.WhatsAppConfig{
		Numero:           Value(values, KeyWhatsAppNumero),
		MensagemTemplate: Value(values, KeyWhatsAppMensagem),
	}
}

// parseList decodes the JSON list stored under key into out. The stored
// value is tried first; on any parse failure the registered default is
// decoded instead. Defaults are produced by mustJSON, so the second
// decode cannot fail.
func parseList(values map[string]string, key string, out any) {
	if raw, ok := values[key]; ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), out); err == nil {
			return
		}
	}
	_ = json.Unmarshal([]byte(registry[key].Default), out)
}

func mustJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(data)
}
