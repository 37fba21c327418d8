package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/saulomartins80/finnextho-bfa-go/internal/chat/domain"
	maindomain "github.com/saulomartins80/finnextho-bfa-go/internal/domain"
	"github.com/saulomartins80/finnextho-bfa-go/internal/infra/resilience"
)

// tracer é o tracer OpenTelemetry para o módulo chat/infra.
var tracer = otel.Tracer("chat/infra")

// ============================================================
// AgentClient — classificador semântico via agent HTTP
// ============================================================
//
// O agent expõe duas rotas:
//
//	POST /v1/classify  {"prompt": "..."}  → {"intent": ..., "entities": {...}, "confidence": 0.9, ...}
//	POST /v1/chat      ReplyRequest       → {"answer": "...", "tokens_used": 120}
//
// As duas passam pelo mesmo circuit breaker, retry com backoff e bulkhead:
// quando o agent cai, o breaker abre e a cascata segue para o estágio padrão
// sem esperar o timeout em toda mensagem.

// AgentClient implementa SemanticClassifier e ReplyGenerator.
type AgentClient struct {
	http     *resty.Client
	cb       *gobreaker.CircuitBreaker
	bulkhead *resilience.Bulkhead
	cfg      resilience.Config
}

// NewAgentClient cria o client. baseURL é a URL do agent sem o path.
func NewAgentClient(baseURL string, timeout time.Duration, cb *gobreaker.CircuitBreaker, cfg resilience.Config) *AgentClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &AgentClient{
		http:     client,
		cb:       cb,
		bulkhead: resilience.NewBulkhead(cfg.MaxConcurrency),
		cfg:      cfg,
	}
}

type classifyRequest struct {
	Prompt string `json:"prompt"`
}

type chatReply struct {
	Answer     string `json:"answer"`
	TokensUsed int    `json:"tokens_used"`
}

// Classify envia o prompt composto e decodifica a classificação.
func (c *AgentClient) Classify(ctx context.Context, prompt string) (*domain.ClassifierResult, error) {
	ctx, span := tracer.Start(ctx, "AgentClient.Classify")
	defer span.End()
	span.SetAttributes(attribute.Int("prompt.length", len(prompt)))

	var out *domain.ClassifierResult
	err := c.call(ctx, "/v1/classify", classifyRequest{Prompt: prompt}, func(body []byte) error {
		res, err := ParseClassifierOutput(string(body))
		if err != nil {
			return err
		}
		out = res
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.String("classifier.intent", out.Intent))
	return out, nil
}

// Reply pede ao agent a resposta de conversa comum.
func (c *AgentClient) Reply(ctx context.Context, req *domain.ReplyRequest) (string, error) {
	ctx, span := tracer.Start(ctx, "AgentClient.Reply")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", req.UserID))

	var out chatReply
	err := c.call(ctx, "/v1/chat", req, func(body []byte) error {
		if err := json.Unmarshal(body, &out); err != nil {
			return fmt.Errorf("decode chat reply: %w", err)
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return "", err
	}
	return out.Answer, nil
}

// call faz o POST protegido. Respostas 4xx e corpos ilegíveis não são
// repetidos; 5xx e falhas de rede passam pelo retry.
func (c *AgentClient) call(ctx context.Context, path string, body any, decode func([]byte) error) error {
	err := c.bulkhead.Do(ctx, func() error {
		return resilience.Protect(ctx, c.cb, c.cfg, "chat-agent", func() error {
			resp, err := c.http.R().
				SetContext(ctx).
				SetBody(body).
				Post(path)
			if err != nil {
				return fmt.Errorf("http call to agent: %w", err)
			}

			status := resp.StatusCode()
			switch {
			case status >= http.StatusInternalServerError:
				return fmt.Errorf("agent %s returned status %d", path, status)
			case status != http.StatusOK:
				return resilience.Permanent(fmt.Errorf("agent %s returned status %d", path, status))
			}
			return resilience.Permanent(decode(resp.Body()))
		})
	})
	if err == nil {
		return nil
	}
	switch err.(type) {
	case *maindomain.ErrCircuitOpen, *maindomain.ErrTimeout:
		return err
	}
	return &maindomain.ErrExternalService{Service: "chat-agent", Err: err}
}
