package infra

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/deepseek"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel/attribute"

	"github.com/saulomartins80/finnextho-bfa-go/internal/chat/domain"
	maindomain "github.com/saulomartins80/finnextho-bfa-go/internal/domain"
	"github.com/saulomartins80/finnextho-bfa-go/internal/infra/resilience"
)

// ============================================================
// LLMClassifier — classificador semântico direto no modelo
// ============================================================
//
// Alternativa ao AgentClient: fala com o provedor de LLM (OpenAI ou DeepSeek)
// via eino. O prompt da cascata já traz as instruções de formato; aqui só
// entra uma mensagem de sistema curta e a resposta passa pelo
// ParseClassifierOutput.

// ChatModel é o pedaço do modelo eino que o classificador usa.
type ChatModel interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error)
}

// ModelConfig configura o modelo do provedor.
type ModelConfig struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
	Timeout   time.Duration
}

// NewOpenAIModel cria um ChatModel OpenAI (ou compatível, via BaseURL).
func NewOpenAIModel(ctx context.Context, cfg ModelConfig) (ChatModel, error) {
	maxTokens := cfg.MaxTokens
	m, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:    cfg.APIKey,
		BaseURL:   cfg.BaseURL,
		Model:     cfg.Model,
		MaxTokens: &maxTokens,
		Timeout:   cfg.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("create openai model: %w", err)
	}
	return m, nil
}

// NewDeepSeekModel cria um ChatModel DeepSeek.
func NewDeepSeekModel(ctx context.Context, cfg ModelConfig) (ChatModel, error) {
	m, err := deepseek.NewChatModel(ctx, &deepseek.ChatModelConfig{
		APIKey:    cfg.APIKey,
		BaseURL:   cfg.BaseURL,
		Model:     cfg.Model,
		MaxTokens: cfg.MaxTokens,
		Timeout:   cfg.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("create deepseek model: %w", err)
	}
	return m, nil
}

const classifierSystem = "Você classifica mensagens de um assistente financeiro. Responda apenas com o objeto JSON pedido."

const replySystem = `Você é o Finn, assistente financeiro pessoal da Finnextho.
Responda em português, de forma curta e prática, usando os dados do usuário quando ajudarem.
Não invente números que não estejam nos dados.`

// LLMClassifier implementa SemanticClassifier e ReplyGenerator sobre um ChatModel.
type LLMClassifier struct {
	model    ChatModel
	provider string
	cb       *gobreaker.CircuitBreaker
	bulkhead *resilience.Bulkhead
	cfg      resilience.Config
}

// NewLLMClassifier cria o classificador. provider é usado em spans e erros.
func NewLLMClassifier(m ChatModel, provider string, cb *gobreaker.CircuitBreaker, cfg resilience.Config) *LLMClassifier {
	return &LLMClassifier{
		model:    m,
		provider: provider,
		cb:       cb,
		bulkhead: resilience.NewBulkhead(cfg.MaxConcurrency),
		cfg:      cfg,
	}
}

// Classify manda o prompt composto e interpreta o JSON devolvido.
func (l *LLMClassifier) Classify(ctx context.Context, prompt string) (*domain.ClassifierResult, error) {
	ctx, span := tracer.Start(ctx, "LLMClassifier.Classify")
	defer span.End()
	span.SetAttributes(attribute.String("llm.provider", l.provider))

	msg, err := l.generate(ctx, []*schema.Message{
		schema.SystemMessage(classifierSystem),
		schema.UserMessage(prompt),
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	res, err := ParseClassifierOutput(msg.Content)
	if err != nil {
		span.RecordError(err)
		return nil, &maindomain.ErrExternalService{Service: l.provider, Err: err}
	}
	res.Usage = usageOf(msg)
	span.SetAttributes(attribute.String("classifier.intent", res.Intent))
	return res, nil
}

// Reply gera a resposta de conversa com o snapshot e o histórico.
func (l *LLMClassifier) Reply(ctx context.Context, req *domain.ReplyRequest) (string, error) {
	ctx, span := tracer.Start(ctx, "LLMClassifier.Reply")
	defer span.End()
	span.SetAttributes(attribute.String("llm.provider", l.provider))

	msg, err := l.generate(ctx, ReplyMessages(req))
	if err != nil {
		span.RecordError(err)
		return "", err
	}
	return strings.TrimSpace(msg.Content), nil
}

func (l *LLMClassifier) generate(ctx context.Context, input []*schema.Message) (*schema.Message, error) {
	var out *schema.Message
	err := l.bulkhead.Do(ctx, func() error {
		return resilience.Protect(ctx, l.cb, l.cfg, l.provider, func() error {
			msg, err := l.model.Generate(ctx, input)
			if err != nil {
				return err
			}
			if msg == nil {
				return resilience.Permanent(fmt.Errorf("%s returned no message", l.provider))
			}
			out = msg
			return nil
		})
	})
	if err == nil {
		return out, nil
	}
	switch err.(type) {
	case *maindomain.ErrCircuitOpen, *maindomain.ErrTimeout:
		return nil, err
	}
	return nil, &maindomain.ErrExternalService{Service: l.provider, Err: err}
}

// ReplyMessages monta a conversa enviada ao modelo no caminho de resposta comum.
func ReplyMessages(req *domain.ReplyRequest) []*schema.Message {
	var sys strings.Builder
	sys.WriteString(replySystem)
	if s := req.Snapshot; s != nil {
		sys.WriteString("\n\nDados do usuário:\n")
		if s.Name != "" {
			fmt.Fprintf(&sys, "- nome: %s\n", s.Name)
		}
		if s.SubscriptionPlan != "" {
			fmt.Fprintf(&sys, "- plano: %s\n", s.SubscriptionPlan)
		}
		for _, line := range []string{s.ResumoTransacoes, s.ResumoInvestimentos, s.ResumoMetas} {
			if line != "" {
				fmt.Fprintf(&sys, "- %s\n", line)
			}
		}
	}
	if req.Hint != "" {
		fmt.Fprintf(&sys, "\nSe fizer sentido, pergunte: %s\n", req.Hint)
	}

	msgs := make([]*schema.Message, 0, len(req.History)+2)
	msgs = append(msgs, schema.SystemMessage(sys.String()))
	for _, t := range req.History {
		if t.Sender == domain.SenderBot {
			msgs = append(msgs, schema.AssistantMessage(t.Content, nil))
			continue
		}
		msgs = append(msgs, schema.UserMessage(t.Content))
	}
	return append(msgs, schema.UserMessage(req.Message))
}

func usageOf(msg *schema.Message) domain.TokenUsage {
	if msg.ResponseMeta == nil || msg.ResponseMeta.Usage == nil {
		return domain.TokenUsage{}
	}
	return domain.TokenUsage{
		PromptTokens:     msg.ResponseMeta.Usage.PromptTokens,
		CompletionTokens: msg.ResponseMeta.Usage.CompletionTokens,
	}
}
