// Package matcher — fastpath.go implementa o Fast-Path: classificação
// determinística por palavras-chave, sem I/O.
//
// ============================================================
// Ordem de prioridade (fixa)
// ============================================================
//
//  1. Transação    → "gastei", "paguei", "recebi", ...
//  2. Meta         → "meta", "objetivo", "juntar", ...
//  3. Investimento → "investi", "aplicar", ...
//  4. Relatório / Análise (somente leitura, sempre completas)
//  5. Saudação / FAQ → UNKNOWN com resposta pronta
//
// Uma mensagem que bate em mais de um conjunto é classificada pelo
// primeiro. Exceção: pedido de relatório/análise sem valor passa na frente de
// meta e investimento ("resumo dos meus investimentos"). Se nenhum conjunto bate, o Fast-Path devolve "sem match" e a
// cascata segue para o Context Matcher.
//
// Política de confiança (igual para os três conjuntos de criação):
//
//	valor + descritor → 0.95, sem confirmação
//	só valor          → 0.80, pede o descritor
//	só descritor      → 0.70, pede o valor
//	nenhum            → 0.50, pede os dois
package matcher

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	chatdomain "github.com/saulomartins80/finnextho-bfa-go/internal/chat/domain"
	"github.com/saulomartins80/finnextho-bfa-go/internal/chat/entity"
)

// Confiança atribuída pelos matchers determinísticos.
const (
	ConfidenceFull          = 0.95
	ConfidenceAmountOnly    = 0.8
	ConfidenceDescriptor    = 0.7
	ConfidenceKeywordOnly   = 0.5
	ConfidenceCanned        = 0.9
	ConfidenceReadOnlyQuery = 0.9
)

// DefaultAccount é a conta usada quando a mensagem não diz qual.
const DefaultAccount = "Principal"

var (
	transactionKeywords = []string{
		"gastei", "paguei", "comprei", "recebi", "ganhei", "transferi",
		"transação", "transacao",
	}
	incomeKeywords   = []string{"recebi", "ganhei", "salário", "salario"}
	transferKeywords = []string{"transferi"}

	goalKeywords = []string{"meta", "objetivo", "juntar", "economizar", "poupar"}

	investmentKeywords = []string{"investi", "investir", "aplicar", "apliquei", "investimento"}

	reportKeywords   = []string{"relatório", "relatorio"}
	analysisKeywords = []string{
		"analis", "anális", "como estão minhas finanças", "como estao minhas financas",
		"resumo",
	}
)

var (
	// "no mercado", "de salário", "com uber"; para no primeiro dígito/pontuação.
	descriptionPattern = regexp.MustCompile(`(?:^|\s)(?:no|na|nos|nas|de|do|da|com|para)\s+([^\d,.!?;]+)`)

	goalNamePatterns = []*regexp.Regexp{
		regexp.MustCompile(`meta\s+(?:de|para)\s+([^\d,.!?;]+)`),
		regexp.MustCompile(`(?:^|\s)para\s+([^\d,.!?;]+)`),
	}

	investmentNamePattern = regexp.MustCompile(`(?:^|\s)(?:em|no|na)\s+([^\d,.!?;]+)`)

	greetingPattern = regexp.MustCompile(
		`^(?:oi|olá|ola|opa|e aí|e ai|bom dia|boa tarde|boa noite|hey|hello)(?:[\s!,.?]+(?:tudo bem|td bem|como vai)?)?[\s!,.?]*$`)
	faqPattern = regexp.MustCompile(
		`como (?:isso |você |voce |o app )?funciona|o que (?:você|voce) (?:faz|pode fazer)|preciso de ajuda|^ajuda[\s!?.]*$|^help[\s!?.]*$`)
)

// palavras que não são descrição ("de reais") e sufixos temporais a cortar.
var (
	nonDescriptors   = []string{"reais", "real", "r$"}
	trailingNoise    = []string{" hoje", " ontem", " agora", " reais"}
	goalNameStoppers = []string{" até ", " ate ", " em ", " daqui", " no próximo", " no proximo", " no final", " no fim"}
)

const (
	greetingReply = "Olá! Sou seu assistente financeiro. Posso registrar transações, criar metas, " +
		"cadastrar investimentos e analisar suas finanças. Como posso ajudar?"
	faqReply = "Funciona assim: me conte o que aconteceu com o seu dinheiro, por exemplo " +
		"\"gastei 50 reais no mercado\", \"quero juntar 6 mil para viagem\" ou \"investi 1000 em CDB\", " +
		"e eu registro para você. Também posso analisar suas finanças ou gerar um relatório."
)

// FastPath é o classificador determinístico. Seguro para uso concorrente.
type FastPath struct {
	now func() time.Time
}

// NewFastPath cria o Fast-Path. now pode ser nil (usa time.Now).
func NewFastPath(now func() time.Time) *FastPath {
	if now == nil {
		now = time.Now
	}
	return &FastPath{now: now}
}

// Match classifica a mensagem. ok=false significa "nenhum conjunto bateu".
func (f *FastPath) Match(message string) (*chatdomain.DetectedAction, bool) {
	lower := strings.ToLower(strings.TrimSpace(message))
	if lower == "" {
		return nil, false
	}

	// "analisar minhas metas" é consulta, não criação de meta
	_, hasAmount := entity.ParseAmount(lower)
	query := !hasAmount && (containsAny(lower, reportKeywords) || containsAny(lower, analysisKeywords))

	switch {
	case containsAny(lower, transactionKeywords):
		return f.transaction(lower), true
	case !query && containsAny(lower, goalKeywords):
		return f.goal(lower), true
	case !query && containsAny(lower, investmentKeywords):
		return f.investment(lower), true
	case containsAny(lower, reportKeywords):
		return readOnly(chatdomain.ReportPayload{ReportType: subjectOf(lower), Period: periodOf(lower)},
			"Vou gerar o seu relatório financeiro."), true
	case containsAny(lower, analysisKeywords):
		return readOnly(chatdomain.AnalysisPayload{AnalysisType: subjectOf(lower), Period: periodOf(lower)},
			"Vou analisar as suas finanças."), true
	case greetingPattern.MatchString(lower):
		return chatdomain.Unknown(ConfidenceCanned, greetingReply), true
	case faqPattern.MatchString(lower):
		return chatdomain.Unknown(ConfidenceCanned, faqReply), true
	}
	return nil, false
}

func (f *FastPath) transaction(lower string) *chatdomain.DetectedAction {
	amount, hasAmount := entity.ParseAmount(lower)
	desc := Description(lower)

	p := chatdomain.TransactionPayload{
		Amount:      amount,
		Description: desc,
		Kind:        TransactionKind(lower),
		Category:    entity.InferCategory(desc),
		Account:     DefaultAccount,
		Date:        entity.Today(f.now()),
	}

	var response string
	switch {
	case hasAmount && desc != "":
		response = fmt.Sprintf("Registrando %s de %s em %s (%s).", kindLabel(p.Kind), entity.FormatBRL(amount), desc, p.Category)
	case hasAmount:
		response = fmt.Sprintf("Entendi o valor de %s. Qual é a descrição dessa %s?", entity.FormatBRL(amount), kindLabel(p.Kind))
	case desc != "":
		response = fmt.Sprintf("Qual foi o valor da %s em %s?", kindLabel(p.Kind), desc)
	default:
		response = "Vamos registrar essa transação. Qual foi o valor e com o que foi?"
	}
	return tiered(p, hasAmount, desc != "", response)
}

func (f *FastPath) goal(lower string) *chatdomain.DetectedAction {
	amount, hasAmount := entity.ParseAmount(lower)
	name := GoalName(lower)

	p := chatdomain.GoalPayload{
		Name:         name,
		TargetAmount: amount,
		DueDate:      entity.ResolveDate(lower, f.now()),
		Category:     entity.InferGoalCategory(name),
	}

	var response string
	switch {
	case hasAmount && name != "":
		response = fmt.Sprintf("Criando a meta \"%s\" de %s até %s.", name, entity.FormatBRL(amount), p.DueDate)
	case hasAmount:
		response = fmt.Sprintf("Meta de %s anotada. Qual é o objetivo dessa meta?", entity.FormatBRL(amount))
	case name != "":
		response = fmt.Sprintf("Ótimo objetivo: %s. Qual valor você quer juntar?", name)
	default:
		response = "Legal, vamos criar uma meta! Qual é o objetivo e qual valor você quer juntar?"
	}
	return tiered(p, hasAmount, name != "", response)
}

func (f *FastPath) investment(lower string) *chatdomain.DetectedAction {
	amount, hasAmount := entity.ParseAmount(lower)
	name := InvestmentName(lower)

	kind, ok := entity.NormalizeInvestmentType(name)
	switch {
	case ok:
	case name != "":
		// classe desconhecida segue crua; o dispatcher rejeita
		kind = name
	default:
		kind = entity.DefaultInvestmentType
	}

	p := chatdomain.InvestmentPayload{
		Name:   name,
		Amount: amount,
		Kind:   kind,
		Date:   entity.Today(f.now()),
	}

	var response string
	switch {
	case hasAmount && name != "":
		response = fmt.Sprintf("Registrando investimento de %s em %s (%s).", entity.FormatBRL(amount), name, kind)
	case hasAmount:
		response = fmt.Sprintf("Investimento de %s anotado. Em qual ativo você aplicou?", entity.FormatBRL(amount))
	case name != "":
		response = fmt.Sprintf("Qual valor você investiu em %s?", name)
	default:
		response = "Vamos registrar esse investimento. Qual foi o valor e em qual ativo?"
	}
	return tiered(p, hasAmount, name != "", response)
}

// tiered aplica a política de confiança comum aos três conjuntos de criação.
// requiresConfirmation também considera a regra de completude do payload.
func tiered(p chatdomain.Payload, hasAmount, hasDescriptor bool, response string) *chatdomain.DetectedAction {
	var confidence float64
	switch {
	case hasAmount && hasDescriptor:
		confidence = ConfidenceFull
	case hasAmount:
		confidence = ConfidenceAmountOnly
	case hasDescriptor:
		confidence = ConfidenceDescriptor
	default:
		confidence = ConfidenceKeywordOnly
	}
	return &chatdomain.DetectedAction{
		Type:                 p.ActionType(),
		Payload:              p,
		Confidence:           confidence,
		RequiresConfirmation: !(hasAmount && hasDescriptor) || !chatdomain.Complete(p),
		Response:             response,
	}
}

// readOnly monta ANALYZE_DATA / GENERATE_REPORT, que nunca pedem confirmação.
func readOnly(p chatdomain.Payload, response string) *chatdomain.DetectedAction {
	return &chatdomain.DetectedAction{
		Type:       p.ActionType(),
		Payload:    p,
		Confidence: ConfidenceReadOnlyQuery,
		Response:   response,
	}
}

// ============================================================
// Extratores reaproveitados pelo Context Matcher e pelo CLI
// ============================================================

// TransactionKind infere receita/despesa/transferencia pelas palavras-chave.
func TransactionKind(lower string) string {
	switch {
	case containsAny(lower, transferKeywords):
		return "transferencia"
	case containsAny(lower, incomeKeywords):
		return "receita"
	default:
		return "despesa"
	}
}

// Description extrai o descritor de uma transação ("no mercado" → "mercado").
func Description(lower string) string {
	for _, m := range descriptionPattern.FindAllStringSubmatch(lower, -1) {
		d := cleanDescriptor(m[1])
		if d == "" || hasPrefixAny(d, nonDescriptors) {
			continue
		}
		return d
	}
	return ""
}

// GoalName extrai o nome da meta ("meta de viagem", "para viagem").
func GoalName(lower string) string {
	for _, re := range goalNamePatterns {
		if m := re.FindStringSubmatch(lower); m != nil {
			name := cutAtAny(" "+m[1]+" ", goalNameStoppers)
			if name = cleanDescriptor(name); name != "" {
				return name
			}
		}
	}
	return ""
}

// InvestmentName extrai o ativo ("em bitcoin" → "bitcoin").
func InvestmentName(lower string) string {
	for _, m := range investmentNamePattern.FindAllStringSubmatch(lower, -1) {
		d := cleanDescriptor(m[1])
		if d == "" || hasPrefixAny(d, nonDescriptors) {
			continue
		}
		return d
	}
	return ""
}

func cleanDescriptor(s string) string {
	s = strings.TrimSpace(s)
	for {
		trimmed := s
		for _, suffix := range trailingNoise {
			trimmed = strings.TrimSuffix(trimmed, suffix)
		}
		trimmed = strings.TrimSpace(trimmed)
		if trimmed == s {
			return s
		}
		s = trimmed
	}
}

func cutAtAny(s string, markers []string) string {
	cut := len(s)
	for _, m := range markers {
		if i := strings.Index(s, m); i >= 0 && i < cut {
			cut = i
		}
	}
	return s[:cut]
}

func subjectOf(lower string) string {
	switch {
	case strings.Contains(lower, "gasto") || strings.Contains(lower, "despesa"):
		return "gastos"
	case strings.Contains(lower, "investimento"):
		return "investimentos"
	case strings.Contains(lower, "meta"):
		return "metas"
	default:
		return "geral"
	}
}

func periodOf(lower string) string {
	switch {
	case strings.Contains(lower, "semana"):
		return "semanal"
	case strings.Contains(lower, "mês") || strings.Contains(lower, "mes ") || strings.Contains(lower, "mensal"):
		return "mensal"
	case strings.Contains(lower, "ano") || strings.Contains(lower, "anual"):
		return "anual"
	default:
		return "geral"
	}
}

func kindLabel(kind string) string {
	switch kind {
	case "receita":
		return "receita"
	case "transferencia":
		return "transferência"
	default:
		return "despesa"
	}
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func hasPrefixAny(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
