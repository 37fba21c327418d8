package matcher

import (
	"fmt"
	"strings"
	"time"

	chatdomain "github.com/saulomartins80/finnextho-bfa-go/internal/chat/domain"
	"github.com/saulomartins80/finnextho-bfa-go/internal/chat/entity"
)

// Confiança do Context Matcher.
const (
	ConfidenceContextAmount   = 0.8
	ConfidenceContextNoAmount = 0.6
)

// ContextWindow é quantos turnos recentes o Context Matcher olha.
const ContextWindow = 3

var (
	continuationMarkers = []string{"valor", "reais", "é uma despesa"}
	startMarkers        = []string{"transação", "transacao", "gastei", "recebi"}
)

// ContextMatcher resolve continuações curtas ("o valor é 250 reais") usando
// os últimos turnos da conversa. Não faz I/O.
type ContextMatcher struct {
	now func() time.Time
}

// NewContextMatcher cria o matcher. now pode ser nil (usa time.Now).
func NewContextMatcher(now func() time.Time) *ContextMatcher {
	if now == nil {
		now = time.Now
	}
	return &ContextMatcher{now: now}
}

// Match só emite CREATE_TRANSACTION quando a mensagem atual tem um marcador de
// continuação E algum dos últimos turnos começou uma transação.
func (c *ContextMatcher) Match(message string, history []chatdomain.ConversationTurn) (*chatdomain.DetectedAction, bool) {
	if len(history) == 0 {
		return nil, false
	}
	lower := strings.ToLower(strings.TrimSpace(message))
	if !containsAny(lower, continuationMarkers) {
		return nil, false
	}

	start := ""
	recent := RecentTurns(history, ContextWindow)
	for i := len(recent) - 1; i >= 0; i-- {
		t := strings.ToLower(recent[i].Content)
		if containsAny(t, startMarkers) {
			start = t
			break
		}
	}
	if start == "" {
		return nil, false
	}

	amount, hasAmount := entity.ParseAmount(lower)

	// o tipo vem só da mensagem atual; o turno que abriu a transação não conta
	kind := "receita"
	if strings.Contains(lower, "despesa") {
		kind = "despesa"
	}

	desc := Description(lower)
	if desc == "" {
		desc = Description(start)
	}

	p := chatdomain.TransactionPayload{
		Amount:      amount,
		Description: desc,
		Kind:        kind,
		Category:    entity.InferCategory(desc),
		Account:     DefaultAccount,
		Date:        entity.Today(c.now()),
	}

	confidence := ConfidenceContextNoAmount
	var response string
	switch {
	case hasAmount && desc != "":
		confidence = ConfidenceContextAmount
		response = fmt.Sprintf("Entendi: %s de %s em %s.", kindLabel(kind), entity.FormatBRL(amount), desc)
	case hasAmount:
		confidence = ConfidenceContextAmount
		response = fmt.Sprintf("Entendi, %s de %s. Qual é a descrição?", kindLabel(kind), entity.FormatBRL(amount))
	default:
		response = "Qual foi o valor dessa transação?"
	}

	return &chatdomain.DetectedAction{
		Type:                 chatdomain.ActionCreateTransaction,
		Payload:              p,
		Confidence:           confidence,
		RequiresConfirmation: !hasAmount || !chatdomain.Complete(p),
		Response:             response,
	}, true
}

// RecentTurns devolve no máximo n turnos do fim do histórico.
func RecentTurns(history []chatdomain.ConversationTurn, n int) []chatdomain.ConversationTurn {
	if n <= 0 || len(history) <= n {
		return history
	}
	return history[len(history)-n:]
}
