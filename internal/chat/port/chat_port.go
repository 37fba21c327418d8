// Package port — chat_port.go define as interfaces (ports) que a cascata de
// classificação consome.
//
// Seguindo a arquitetura hexagonal, o ChatService depende dessas interfaces
// e NÃO dos clients concretos (agent HTTP, LLM via eino). Isso facilita
// testes e troca de implementação.
package port

//go:generate mockgen -destination=mocks/chat_port_mock.go -package=mocks github.com/saulomartins80/finnextho-bfa-go/internal/chat/port SemanticClassifier,ReplyGenerator,ConversationContextStore

import (
	"context"
	"time"

	chatdomain "github.com/saulomartins80/finnextho-bfa-go/internal/chat/domain"
	maindomain "github.com/saulomartins80/finnextho-bfa-go/internal/domain"
)

// SemanticClassifier é o classificador externo (estágio 4 da cascata).
//
// Recebe o prompt já composto (instruções + snapshot + histórico + mensagem)
// e devolve intent, entidades, confiança e resposta. Pode ser lento ou estar
// fora do ar: quem chama SEMPRE aplica timeout.
type SemanticClassifier interface {
	Classify(ctx context.Context, prompt string) (*chatdomain.ClassifierResult, error)
}

// ReplyGenerator produz a resposta de conversa comum (confiança baixa),
// usando o snapshot completo do usuário e não só a mensagem.
type ReplyGenerator interface {
	Reply(ctx context.Context, req *chatdomain.ReplyRequest) (string, error)
}

// ConversationContextStore guarda o contexto de conversa por chatId.
// É separado do Intent Cache: vive mais, expira por TTL e pode ser
// compartilhado entre processos.
type ConversationContextStore interface {
	SetConversationContext(ctx context.Context, chatID string, conv *chatdomain.ConversationContext, ttl time.Duration) error
	GetConversationContext(ctx context.Context, chatID string) (*chatdomain.ConversationContext, error)
}

// FinanceAnalyzer agrega os dados do usuário para ANALYZE_DATA e GENERATE_REPORT.
type FinanceAnalyzer interface {
	Analyze(ctx context.Context, userID, analysisType, period string) (*maindomain.FinancialAnalysis, error)
	Report(ctx context.Context, userID, reportType, period string) (*maindomain.FinancialReport, error)
}

// SnapshotProvider monta o UserSnapshot quando o frontend não o envia.
// User confirma que o usuário existe mesmo quando o snapshot veio pronto.
type SnapshotProvider interface {
	Snapshot(ctx context.Context, userID string) (*maindomain.UserSnapshot, error)
	User(ctx context.Context, userID string) (*maindomain.User, error)
}
