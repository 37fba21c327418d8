// Package service — dispatcher.go implementa o Action Dispatcher.
//
// ============================================================
// ARQUITETURA — Strategy Pattern por ActionType
// ============================================================
//
// Cada tipo executável tem um ActionHandler registrado. O Dispatcher:
//  1. Recusa UNKNOWN e payloads que não batem com o tipo
//  2. Aplica a regra de completude ANTES de qualquer I/O
//  3. Entrega para o primeiro handler que aceita o tipo
//
// Handlers disponíveis (action_handlers.go):
//   - CREATE_TRANSACTION → persiste com timestamp do servidor
//   - CREATE_INVESTMENT  → normaliza o tipo e valida valor mínimo
//   - CREATE_GOAL        → valor_atual 0, prioridade "media"
//   - ANALYZE_DATA       → agregação somente leitura
//   - GENERATE_REPORT    → análise + id + timestamp
package service

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	chatdomain "github.com/saulomartins80/finnextho-bfa-go/internal/chat/domain"
	maindomain "github.com/saulomartins80/finnextho-bfa-go/internal/domain"
	"github.com/saulomartins80/finnextho-bfa-go/internal/infra/observability"
)

// chatTracer é o tracer OpenTelemetry para o módulo de chat.
var chatTracer = otel.Tracer("chat/service")

// ActionHandler define o contrato de execução de um tipo de ação.
//
// CanHandle: diz se o handler sabe executar o tipo
// Handle:    executa o payload (já validado pela regra de completude)
type ActionHandler interface {
	CanHandle(t chatdomain.ActionType) bool
	Handle(ctx context.Context, userID string, p chatdomain.Payload) (*Outcome, error)
}

// Outcome é o resultado de uma execução bem-sucedida.
type Outcome struct {
	Result  any
	Message string
}

// Dispatcher roteia ações para o ActionHandler correspondente.
type Dispatcher struct {
	handlers []ActionHandler
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// NewDispatcher cria o Dispatcher. A ordem dos handlers importa: o primeiro
// que aceita o tipo ganha.
func NewDispatcher(handlers []ActionHandler, metrics *observability.Metrics, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{handlers: handlers, metrics: metrics, logger: logger}
}

// Execute valida e executa a ação para o usuário.
func (d *Dispatcher) Execute(ctx context.Context, userID string, t chatdomain.ActionType, p chatdomain.Payload) (*Outcome, error) {
	ctx, span := chatTracer.Start(ctx, "Dispatcher.Execute")
	defer span.End()
	span.SetAttributes(attribute.String("action.type", string(t)))

	if !t.Executable() || p == nil || p.ActionType() != t {
		d.metrics.IncrDispatch(string(t), "rejected")
		return nil, &maindomain.ErrValidation{Field: "type", Message: "Essa ação não pode ser executada."}
	}
	if missing := chatdomain.MissingFields(p); len(missing) > 0 {
		d.metrics.IncrDispatch(string(t), "rejected")
		return nil, &maindomain.ErrMissingFields{Action: string(t), Fields: missing}
	}

	for _, h := range d.handlers {
		if !h.CanHandle(t) {
			continue
		}
		out, err := h.Handle(ctx, userID, p)
		if err != nil {
			d.metrics.IncrDispatch(string(t), dispatchStatus(err))
			d.logger.Warn("action dispatch failed",
				zap.String("user_id", userID),
				zap.String("action", string(t)),
				zap.Error(err),
			)
			return nil, err
		}
		d.metrics.IncrDispatch(string(t), "success")
		return out, nil
	}

	d.metrics.IncrDispatch(string(t), "rejected")
	return nil, fmt.Errorf("no handler registered for %s", t)
}

func dispatchStatus(err error) string {
	var v *maindomain.ErrValidation
	if errors.As(err, &v) {
		return "rejected"
	}
	return "error"
}
