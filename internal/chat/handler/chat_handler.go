// Package handler — chat_handler.go implementa os handlers das rotas
// POST /v1/chat/detect e POST /v1/chat/actions/confirm.
//
// ============================================================
// AS DUAS ENTRADAS DO CHAT FINANCEIRO
// ============================================================
//
// POST /v1/chat/detect           →  mensagem livre do usuário
//   - Body: {"message", "userContext"?, "conversationHistory"?, "chatId"?}
//   - Roda a cascata + Confidence Gate no ChatService
//   - Resposta: envelope ACTION_DETECTED ou TEXT_RESPONSE
//
// POST /v1/chat/actions/confirm  →  usuário confirmou uma ação sugerida
//   - Body: {"action", "payload", "chatId"?}
//   - Campos faltantes voltam com 200 e success=false
//
// As duas rotas exigem JWT: o userId vem do token, nunca do body.
// Os handlers são finos; toda a regra fica no ChatService.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/saulomartins80/finnextho-bfa-go/internal/chat/domain"
	maindomain "github.com/saulomartins80/finnextho-bfa-go/internal/domain"
)

// tracer é o tracer OpenTelemetry para o módulo chat/handler.
var tracer = otel.Tracer("chat/handler")

// maxBodyBytes limita o tamanho do body aceito.
const maxBodyBytes = 64 << 10

// ChatService é o que os handlers precisam do service layer.
type ChatService interface {
	Detect(ctx context.Context, userID string, req *domain.DetectRequest) (*domain.DetectResponse, error)
	Confirm(ctx context.Context, userID string, req *domain.ConfirmRequest) (*domain.ConfirmResponse, error)
}

// UserIDFunc extrai o usuário autenticado do contexto da request.
type UserIDFunc func(ctx context.Context) string

// ============================================================
// DetectHandler — POST /v1/chat/detect
// ============================================================

// DetectHandler retorna o http.HandlerFunc da rota POST /v1/chat/detect.
//
// Request:
//
//	{"message": "gastei 50 reais no uber", "chatId": "c-123"}
//
// Response (200 OK):
//
//	{"success": true, "type": "ACTION_DETECTED", "text": "...", "automatedAction": {...}, "messageId": "..."}
func DetectHandler(chatSvc ChatService, userIDFrom UserIDFunc, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/chat/detect")
		defer span.End()

		userID := userIDFrom(ctx)
		if userID == "" {
			writeError(w, http.StatusUnauthorized, "Token de autenticação não fornecido")
			return
		}
		span.SetAttributes(attribute.String("user.id", userID))

		var req domain.DetectRequest
		if err := decodeBody(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, `invalid request body: expected {"message": "..."}`)
			return
		}

		resp, err := chatSvc.Detect(ctx, userID, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		span.SetAttributes(attribute.String("response.type", resp.Type))
		writeJSON(w, http.StatusOK, resp)
	}
}

// ============================================================
// ConfirmHandler — POST /v1/chat/actions/confirm
// ============================================================

// ConfirmHandler retorna o http.HandlerFunc da rota POST /v1/chat/actions/confirm.
//
// Request:
//
//	{"action": "CREATE_GOAL", "payload": {"meta": "viagem", "valor_total": 6000}}
//
// Response (200 OK), inclusive quando faltam campos:
//
//	{"success": false, "message": "...", "missingFields": ["valor_total"], "requiresConfirmation": true}
func ConfirmHandler(chatSvc ChatService, userIDFrom UserIDFunc, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/chat/actions/confirm")
		defer span.End()

		userID := userIDFrom(ctx)
		if userID == "" {
			writeError(w, http.StatusUnauthorized, "Token de autenticação não fornecido")
			return
		}

		var req domain.ConfirmRequest
		if err := decodeBody(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, `invalid request body: expected {"action": "...", "payload": {...}}`)
			return
		}
		span.SetAttributes(
			attribute.String("user.id", userID),
			attribute.String("action.type", string(req.Action)),
		)

		resp, err := chatSvc.Confirm(ctx, userID, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// ============================================================
// Helpers — funções utilitárias do chat handler
// ============================================================

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
}

// writeJSON serializa data como JSON e escreve na response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError escreve uma resposta de erro padronizada.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// handleServiceError mapeia erros de domínio para HTTP status codes.
func handleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	var (
		validation   *maindomain.ErrValidation
		notFound     *maindomain.ErrNotFound
		unauthorized *maindomain.ErrUnauthorized
		circuitOpen  *maindomain.ErrCircuitOpen
		timeout      *maindomain.ErrTimeout
		external     *maindomain.ErrExternalService
	)
	switch {
	case errors.As(err, &validation):
		logger.Debug("validation error", zap.String("error", err.Error()))
		writeError(w, http.StatusBadRequest, validation.Message)
	case errors.As(err, &notFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &unauthorized):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.As(err, &circuitOpen):
		logger.Error("circuit breaker open", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "service temporarily unavailable")
	case errors.As(err, &timeout):
		logger.Error("request timeout", zap.Error(err))
		writeError(w, http.StatusGatewayTimeout, "request timed out")
	case errors.As(err, &external):
		logger.Error("external service error", zap.String("service", external.Service), zap.Error(external.Err))
		writeError(w, http.StatusBadGateway, "external service unavailable: "+external.Service)
	default:
		logger.Error("unexpected error in chat handler", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
