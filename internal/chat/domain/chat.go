// Package domain — chat.go define os contratos de entrada e saída das rotas
// POST /v1/chat/detect e POST /v1/chat/actions/confirm.
//
// O fluxo completo:
//  1. Frontend manda a mensagem + histórico recente (+ snapshot opcional)
//  2. BFA roda a cascata: Intent Cache → Fast-Path → Contexto → Classificador
//  3. Confidence Gate decide: executar, pedir confirmação ou conversar
//  4. BFA devolve o envelope ACTION_DETECTED ou TEXT_RESPONSE
package domain

import (
	"encoding/json"
	"time"

	maindomain "github.com/saulomartins80/finnextho-bfa-go/internal/domain"
)

// ============================================================
// Histórico de conversa
// ============================================================

// Sender identifica quem escreveu um turno da conversa.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// ConversationTurn é uma mensagem anterior da conversa.
type ConversationTurn struct {
	Sender  Sender `json:"sender"`
	Content string `json:"content"`
}

// ============================================================
// Detect — Request/Response
// ============================================================

// DetectRequest é o body do POST /v1/chat/detect.
//
// UserContext é opcional: quando vem nil, o BFA monta o snapshot a partir
// dos stores. ChatID é opcional e liga a mensagem ao contexto de conversa
// guardado no store externo.
type DetectRequest struct {
	Message             string                   `json:"message"`
	UserContext         *maindomain.UserSnapshot `json:"userContext,omitempty"`
	ConversationHistory []ConversationTurn       `json:"conversationHistory,omitempty"`
	ChatID              string                   `json:"chatId,omitempty"`
}

// Tipos de resposta do envelope.
const (
	ResponseActionDetected = "ACTION_DETECTED"
	ResponseText           = "TEXT_RESPONSE"
)

// DetectResponse é o envelope devolvido pelo POST /v1/chat/detect.
type DetectResponse struct {
	Success         bool             `json:"success"`
	Type            string           `json:"type"`
	Text            string           `json:"text"`
	AutomatedAction *AutomatedAction `json:"automatedAction,omitempty"`
	MessageID       string           `json:"messageId,omitempty"`
}

// ============================================================
// Confirm — Request/Response
// ============================================================

// ConfirmRequest é o body do POST /v1/chat/actions/confirm.
type ConfirmRequest struct {
	Action  ActionType      `json:"action"`
	Payload json.RawMessage `json:"payload"`
	ChatID  string          `json:"chatId,omitempty"`
}

// ConfirmResponse é a resposta da confirmação explícita.
type ConfirmResponse struct {
	Success              bool     `json:"success"`
	Message              string   `json:"message"`
	Result               any      `json:"result,omitempty"`
	MissingFields        []string `json:"missingFields,omitempty"`
	RequiresConfirmation bool     `json:"requiresConfirmation"`
}

// ============================================================
// Classificador semântico — contrato de fronteira
// ============================================================

// ClassifierResult é o que o classificador semântico devolve.
// Entities é um mapa livre porque cada intent tem campos diferentes;
// o BFA normaliza os valores antes de montar o payload.
type ClassifierResult struct {
	Intent               string         `json:"intent"`
	Entities             map[string]any `json:"entities"`
	Confidence           float64        `json:"confidence"`
	Response             string         `json:"response"`
	RequiresConfirmation bool           `json:"requiresConfirmation"`
	Usage                TokenUsage     `json:"usage,omitempty"`
}

// TokenUsage é o consumo de tokens informado pelo classificador, quando houver.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

// ReplyRequest alimenta o caminho de conversa comum (confiança baixa).
type ReplyRequest struct {
	UserID   string                   `json:"user_id"`
	Message  string                   `json:"message"`
	Snapshot *maindomain.UserSnapshot `json:"user_context"`
	History  []ConversationTurn       `json:"conversation_history,omitempty"`
	// Hint é a pergunta de esclarecimento que a cascata já tinha, se houver.
	Hint string `json:"hint,omitempty"`
}

// ============================================================
// Contexto de conversa (store externo com TTL)
// ============================================================

// ConversationContext é o que fica guardado por chatId entre mensagens.
type ConversationContext struct {
	ChatID        string             `json:"chat_id"`
	UserID        string             `json:"user_id"`
	Turns         []ConversationTurn `json:"turns"`
	PendingAction *DetectedAction    `json:"pending_action,omitempty"`
	UpdatedAt     time.Time          `json:"updated_at"`
}
