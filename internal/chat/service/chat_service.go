// Package service — chat_service.go implementa o ChatService.
//
// ============================================================
// ARQUITETURA — Confidence Gate
// ============================================================
//
// O ChatService é o orquestrador central da rota POST /v1/chat/detect.
//
// Fluxo completo:
//  1. Handler recebe {"message", "userContext", "conversationHistory", "chatId"}
//  2. Sem userContext → monta o snapshot a partir dos stores
//  3. Sem histórico mas com chatId → usa os turnos guardados no store de contexto
//  4. Roda a cascata (cache → fast-path → contexto → classificador)
//  5. O Confidence Gate decide:
//     confiança > 0.85 → executa pelo Dispatcher
//     confiança > 0.7  → devolve a ação para confirmação
//     senão            → conversa comum (ReplyGenerator → resposta do estágio → saudação)
//  6. Guarda os turnos e a ação pendente no store de contexto (chatId)
//
// Falha de execução NUNCA vira 500: volta executed=false com um erro legível.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/saulomartins80/finnextho-bfa-go/internal/chat/cascade"
	chatdomain "github.com/saulomartins80/finnextho-bfa-go/internal/chat/domain"
	"github.com/saulomartins80/finnextho-bfa-go/internal/chat/matcher"
	chatport "github.com/saulomartins80/finnextho-bfa-go/internal/chat/port"
	maindomain "github.com/saulomartins80/finnextho-bfa-go/internal/domain"
	"github.com/saulomartins80/finnextho-bfa-go/internal/infra/observability"
)

// Limiares do Confidence Gate. Fazem parte do contrato, não são configuráveis.
const (
	ExecuteThreshold = 0.85
	ConfirmThreshold = 0.7
)

// Resultados do gate, usados como label de métrica.
const (
	OutcomeExecuted        = "executed"
	OutcomeExecutionFailed = "execution_failed"
	OutcomeConfirmation    = "confirmation"
	OutcomeConversation    = "conversation"
	OutcomeCanned          = "canned"
)

// maxStoredTurns limita os turnos guardados por chatId.
const maxStoredTurns = 10

const greetingFallback = "Olá! Sou seu assistente financeiro. Posso registrar gastos e receitas, " +
	"criar metas, cadastrar investimentos e analisar suas finanças. Como posso ajudar?"

// Deps agrupa as dependências do ChatService.
// Snapshots, Replies e Conversations são opcionais.
type Deps struct {
	Pipeline        *cascade.Pipeline
	Dispatcher      *Dispatcher
	Snapshots       chatport.SnapshotProvider
	Replies         chatport.ReplyGenerator
	Conversations   chatport.ConversationContextStore
	ConversationTTL time.Duration
	ReplyTimeout    time.Duration
	HistoryWindow   int
	Metrics         *observability.Metrics
	Logger          *zap.Logger
}

// ChatService é o serviço principal do chat financeiro.
type ChatService struct {
	Deps
	newID func() string
}

// NewChatService cria o ChatService com as dependências injetadas.
func NewChatService(d Deps) *ChatService {
	if d.HistoryWindow <= 0 {
		d.HistoryWindow = matcher.ContextWindow
	}
	return &ChatService{Deps: d, newID: func() string { return uuid.New().String() }}
}

// ============================================================
// Detect — POST /v1/chat/detect
// ============================================================

// Detect classifica a mensagem, passa pelo Confidence Gate e devolve o envelope.
func (s *ChatService) Detect(ctx context.Context, userID string, req *chatdomain.DetectRequest) (*chatdomain.DetectResponse, error) {
	ctx, span := chatTracer.Start(ctx, "ChatService.Detect")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	start := time.Now()
	defer func() { s.Metrics.RecordRequestDuration("chat_detect", time.Since(start)) }()

	msg := strings.TrimSpace(req.Message)
	if msg == "" {
		s.Metrics.IncrRequest("error")
		return nil, &maindomain.ErrValidation{Field: "message", Message: "message is required"}
	}

	snapshot, err := s.resolveSnapshot(ctx, userID, req.UserContext)
	if err != nil {
		s.Metrics.IncrRequest("error")
		return nil, err
	}

	conv := s.loadConversation(ctx, req.ChatID, userID)
	history := req.ConversationHistory
	if len(history) == 0 && conv != nil {
		history = conv.Turns
	}

	res := s.Pipeline.Detect(ctx, &cascade.Input{
		UserID:   userID,
		Message:  msg,
		Snapshot: snapshot,
		History:  history,
	})

	resp := s.gate(ctx, userID, msg, snapshot, history, res.Action)
	resp.MessageID = s.newID()

	s.saveConversation(ctx, req.ChatID, userID, history, msg, resp)
	s.Metrics.IncrRequest("success")

	s.Logger.Info("chat message processed",
		zap.String("user_id", userID),
		zap.String("stage", res.Stage),
		zap.String("action", string(res.Action.Type)),
		zap.Float64("confidence", res.Action.Confidence),
		zap.String("response_type", resp.Type),
	)
	return resp, nil
}

// gate aplica os dois limiares.
func (s *ChatService) gate(
	ctx context.Context,
	userID, msg string,
	snapshot *maindomain.UserSnapshot,
	history []chatdomain.ConversationTurn,
	a *chatdomain.DetectedAction,
) *chatdomain.DetectResponse {
	switch {
	case a.Confidence > ExecuteThreshold:
		if a.Type == chatdomain.ActionUnknown {
			return s.canned(ctx, userID, msg, snapshot, history, a)
		}
		return s.execute(ctx, userID, a)
	case a.Confidence > ConfirmThreshold:
		if a.Type == chatdomain.ActionUnknown {
			return s.canned(ctx, userID, msg, snapshot, history, a)
		}
		return s.askConfirmation(a)
	default:
		return s.converse(ctx, userID, msg, snapshot, history, a)
	}
}

func (s *ChatService) execute(ctx context.Context, userID string, a *chatdomain.DetectedAction) *chatdomain.DetectResponse {
	aa := &chatdomain.AutomatedAction{DetectedAction: *a}

	out, err := s.Dispatcher.Execute(ctx, userID, a.Type, a.Payload)
	executed := err == nil
	aa.Executed = &executed

	if err != nil {
		s.Metrics.IncrGateOutcome(OutcomeExecutionFailed)
		s.Logger.Warn("high-confidence action not executed",
			zap.String("user_id", userID),
			zap.String("action", string(a.Type)),
			zap.Error(err),
		)
		aa.Error = userSafeError(err)
		text := a.ErrorMessage
		if text == "" {
			text = "Não consegui concluir essa ação: " + aa.Error + " Confira os dados e tente novamente."
		}
		return &chatdomain.DetectResponse{
			Success:         true,
			Type:            chatdomain.ResponseActionDetected,
			Text:            text,
			AutomatedAction: aa,
		}
	}

	s.Metrics.IncrGateOutcome(OutcomeExecuted)
	aa.Result = out.Result
	if aa.SuccessMessage == "" {
		aa.SuccessMessage = out.Message
	}
	return &chatdomain.DetectResponse{
		Success:         true,
		Type:            chatdomain.ResponseActionDetected,
		Text:            aa.SuccessMessage,
		AutomatedAction: aa,
	}
}

func (s *ChatService) askConfirmation(a *chatdomain.DetectedAction) *chatdomain.DetectResponse {
	s.Metrics.IncrGateOutcome(OutcomeConfirmation)

	aa := &chatdomain.AutomatedAction{DetectedAction: *a}
	aa.RequiresConfirmation = true

	text := a.SuccessMessage
	if text == "" {
		text = a.Response
	}
	if text == "" {
		text = "Posso registrar isso para você? Confirme para eu continuar."
	}
	return &chatdomain.DetectResponse{
		Success:         true,
		Type:            chatdomain.ResponseActionDetected,
		Text:            text,
		AutomatedAction: aa,
	}
}

// canned responde UNKNOWN confiante (saudação, FAQ) com a própria resposta.
func (s *ChatService) canned(
	ctx context.Context,
	userID, msg string,
	snapshot *maindomain.UserSnapshot,
	history []chatdomain.ConversationTurn,
	a *chatdomain.DetectedAction,
) *chatdomain.DetectResponse {
	if strings.TrimSpace(a.Response) == "" {
		return s.converse(ctx, userID, msg, snapshot, history, a)
	}
	s.Metrics.IncrGateOutcome(OutcomeCanned)
	return &chatdomain.DetectResponse{Success: true, Type: chatdomain.ResponseText, Text: a.Response}
}

// converse é o caminho de confiança baixa: ReplyGenerator com o snapshot
// completo; se falhar, a resposta do estágio; por fim a saudação fixa.
func (s *ChatService) converse(
	ctx context.Context,
	userID, msg string,
	snapshot *maindomain.UserSnapshot,
	history []chatdomain.ConversationTurn,
	a *chatdomain.DetectedAction,
) *chatdomain.DetectResponse {
	s.Metrics.IncrGateOutcome(OutcomeConversation)

	text := ""
	if s.Replies != nil {
		rctx := ctx
		if s.ReplyTimeout > 0 {
			var cancel context.CancelFunc
			rctx, cancel = context.WithTimeout(ctx, s.ReplyTimeout)
			defer cancel()
		}
		reply, err := s.Replies.Reply(rctx, &chatdomain.ReplyRequest{
			UserID:   userID,
			Message:  msg,
			Snapshot: snapshot,
			History:  matcher.RecentTurns(history, s.HistoryWindow),
			Hint:     a.Response,
		})
		if err != nil {
			s.Metrics.IncrExternalError("reply")
			s.Logger.Warn("contextual reply failed", zap.String("user_id", userID), zap.Error(err))
		} else {
			text = strings.TrimSpace(reply)
		}
	}
	if text == "" {
		text = strings.TrimSpace(a.Response)
	}
	if text == "" {
		text = greeting(snapshot)
	}
	return &chatdomain.DetectResponse{Success: true, Type: chatdomain.ResponseText, Text: text}
}

// resolveSnapshot usa o snapshot enviado pelo frontend, mas o usuário precisa
// existir de qualquer forma.
func (s *ChatService) resolveSnapshot(ctx context.Context, userID string, supplied *maindomain.UserSnapshot) (*maindomain.UserSnapshot, error) {
	if s.Snapshots == nil {
		return supplied, nil
	}
	if supplied == nil {
		return s.Snapshots.Snapshot(ctx, userID)
	}
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	return supplied, nil
}

func (s *ChatService) requireUser(ctx context.Context, userID string) error {
	if s.Snapshots == nil {
		return nil
	}
	if _, err := s.Snapshots.User(ctx, userID); err != nil {
		return fmt.Errorf("user lookup: %w", err)
	}
	return nil
}

func greeting(snapshot *maindomain.UserSnapshot) string {
	if snapshot != nil && snapshot.Name != "" {
		return strings.Replace(greetingFallback, "Olá!", "Olá, "+snapshot.Name+"!", 1)
	}
	return greetingFallback
}

// ============================================================
// Confirm — POST /v1/chat/actions/confirm
// ============================================================

// Confirm executa uma ação confirmada pelo usuário. Campos faltantes não são
// erro: voltam em MissingFields com requiresConfirmation=true.
func (s *ChatService) Confirm(ctx context.Context, userID string, req *chatdomain.ConfirmRequest) (*chatdomain.ConfirmResponse, error) {
	ctx, span := chatTracer.Start(ctx, "ChatService.Confirm")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID), attribute.String("action.type", string(req.Action)))

	t := chatdomain.ParseActionType(string(req.Action))
	if !t.Executable() {
		return nil, &maindomain.ErrValidation{Field: "action", Message: fmt.Sprintf("unsupported action %q", req.Action)}
	}
	p, err := chatdomain.DecodePayload(t, req.Payload)
	if err != nil {
		return nil, &maindomain.ErrValidation{Field: "payload", Message: "invalid payload for " + string(t)}
	}

	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	conv := s.loadConversation(ctx, req.ChatID, userID)
	if conv != nil && conv.PendingAction != nil && conv.PendingAction.Type == t {
		p = chatdomain.MergePayload(p, conv.PendingAction.Payload)
	}

	if missing := chatdomain.MissingFields(p); len(missing) > 0 {
		return &chatdomain.ConfirmResponse{
			Success:              false,
			Message:              "Faltam informações para concluir: " + strings.Join(missing, ", ") + ".",
			MissingFields:        missing,
			RequiresConfirmation: true,
		}, nil
	}

	out, err := s.Dispatcher.Execute(ctx, userID, t, p)
	if err != nil {
		s.Logger.Warn("confirmed action failed",
			zap.String("user_id", userID),
			zap.String("action", string(t)),
			zap.Error(err),
		)
		return &chatdomain.ConfirmResponse{
			Success:              false,
			Message:              userSafeError(err),
			RequiresConfirmation: true,
		}, nil
	}

	if conv != nil && conv.PendingAction != nil {
		conv.PendingAction = nil
		s.storeConversation(ctx, conv)
	}
	return &chatdomain.ConfirmResponse{Success: true, Message: out.Message, Result: out.Result}, nil
}

// ============================================================
// Contexto de conversa
// ============================================================

func (s *ChatService) loadConversation(ctx context.Context, chatID, userID string) *chatdomain.ConversationContext {
	if chatID == "" || s.Conversations == nil {
		return nil
	}
	conv, err := s.Conversations.GetConversationContext(ctx, chatID)
	if err != nil {
		s.Logger.Warn("conversation context read failed", zap.String("chat_id", chatID), zap.Error(err))
		return nil
	}
	if conv == nil || (conv.UserID != "" && conv.UserID != userID) {
		return nil
	}
	return conv
}

func (s *ChatService) saveConversation(
	ctx context.Context,
	chatID, userID string,
	history []chatdomain.ConversationTurn,
	msg string,
	resp *chatdomain.DetectResponse,
) {
	if chatID == "" || s.Conversations == nil {
		return
	}

	turns := make([]chatdomain.ConversationTurn, 0, len(history)+2)
	turns = append(turns, history...)
	turns = append(turns,
		chatdomain.ConversationTurn{Sender: chatdomain.SenderUser, Content: msg},
		chatdomain.ConversationTurn{Sender: chatdomain.SenderBot, Content: resp.Text},
	)
	if len(turns) > maxStoredTurns {
		turns = turns[len(turns)-maxStoredTurns:]
	}

	conv := &chatdomain.ConversationContext{
		ChatID:    chatID,
		UserID:    userID,
		Turns:     turns,
		UpdatedAt: time.Now().UTC(),
	}
	if aa := resp.AutomatedAction; aa != nil && (aa.Executed == nil || !*aa.Executed) {
		pending := aa.DetectedAction
		conv.PendingAction = &pending
	}
	s.storeConversation(ctx, conv)
}

func (s *ChatService) storeConversation(ctx context.Context, conv *chatdomain.ConversationContext) {
	if err := s.Conversations.SetConversationContext(ctx, conv.ChatID, conv, s.ConversationTTL); err != nil {
		s.Logger.Warn("conversation context write failed", zap.String("chat_id", conv.ChatID), zap.Error(err))
	}
}

// userSafeError converte o erro de execução em texto seguro para o usuário.
func userSafeError(err error) string {
	var (
		validation *maindomain.ErrValidation
		missing    *maindomain.ErrMissingFields
		notFound   *maindomain.ErrNotFound
		open       *maindomain.ErrCircuitOpen
		timeout    *maindomain.ErrTimeout
		external   *maindomain.ErrExternalService
	)
	switch {
	case errors.As(err, &validation):
		return validation.Message
	case errors.As(err, &missing):
		return "faltam os campos " + strings.Join(missing.Fields, ", ") + "."
	case errors.As(err, &notFound):
		return "não encontrei o registro necessário."
	case errors.As(err, &open), errors.As(err, &timeout), errors.As(err, &external):
		return "o serviço de dados está indisponível no momento."
	default:
		return "ocorreu um erro ao salvar seus dados."
	}
}
