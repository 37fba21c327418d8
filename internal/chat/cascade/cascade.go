// Package cascade — cascade.go compõe os estágios de classificação em um
// pipeline ordenado "primeiro match vence".
//
// ============================================================
// Intent Cache → Fast-Path → Contexto → Classificador
// ============================================================
//
// Cada estágio devolve (action, true) quando reconhece a mensagem ou
// (nil, false) para passar adiante. O Pipeline:
//
//  1. Consulta o Intent Cache pela chave (mensagem, nome, plano)
//  2. Roda os estágios na ordem até o primeiro match
//  3. Se ninguém reconhece, usa o fallback (UNKNOWN padrão)
//  4. Grava o resultado no cache ANTES de devolver, inclusive o fallback
//
// Assim, a mesma entrada nunca roda a cascata duas vezes.
package cascade

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	chatdomain "github.com/saulomartins80/finnextho-bfa-go/internal/chat/domain"
	maindomain "github.com/saulomartins80/finnextho-bfa-go/internal/domain"
	"github.com/saulomartins80/finnextho-bfa-go/internal/infra/observability"
)

var tracer = otel.Tracer("chat/cascade")

// Nomes dos estágios, usados como label de métrica.
const (
	StageCache    = "cache"
	StageFastPath = "fast_path"
	StageContext  = "context"
	StageSemantic = "semantic"
	StageDefault  = "default"
)

// Input é tudo que a cascata sabe sobre uma mensagem.
type Input struct {
	UserID   string
	Message  string
	Snapshot *maindomain.UserSnapshot
	History  []chatdomain.ConversationTurn
}

// Stage é um estágio da cascata.
type Stage interface {
	Name() string
	Run(ctx context.Context, in *Input) (*chatdomain.DetectedAction, bool)
}

// StageFunc adapta uma função a Stage.
type StageFunc struct {
	StageName string
	Fn        func(ctx context.Context, in *Input) (*chatdomain.DetectedAction, bool)
}

func (s StageFunc) Name() string { return s.StageName }

func (s StageFunc) Run(ctx context.Context, in *Input) (*chatdomain.DetectedAction, bool) {
	return s.Fn(ctx, in)
}

// Result é a saída do pipeline: a ação e o estágio que a produziu.
type Result struct {
	Action *chatdomain.DetectedAction
	Stage  string
}

// Pipeline executa os estágios em ordem. Seguro para uso concorrente se os
// estágios forem.
type Pipeline struct {
	cache    *IntentCache
	stages   []Stage
	fallback func(in *Input) *chatdomain.DetectedAction
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// NewPipeline monta o pipeline. cache pode ser nil (sem memoização).
// fallback nil usa DefaultUnknown.
func NewPipeline(
	cache *IntentCache,
	stages []Stage,
	fallback func(in *Input) *chatdomain.DetectedAction,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *Pipeline {
	if fallback == nil {
		fallback = func(*Input) *chatdomain.DetectedAction { return DefaultUnknown() }
	}
	return &Pipeline{
		cache:    cache,
		stages:   stages,
		fallback: fallback,
		metrics:  metrics,
		logger:   logger,
	}
}

// Detect roda a cascata e devolve exatamente um DetectedAction.
func (p *Pipeline) Detect(ctx context.Context, in *Input) Result {
	ctx, span := tracer.Start(ctx, "Cascade.Detect")
	defer span.End()

	key := KeyFor(in)
	if p.cache != nil {
		if a, ok := p.cache.Get(key); ok {
			p.metrics.IncrCacheHit("intent")
			return p.done(span, Result{Action: a, Stage: StageCache})
		}
		p.metrics.IncrCacheMiss("intent")
	}

	for _, s := range p.stages {
		a, ok := s.Run(ctx, in)
		if !ok || a == nil {
			continue
		}
		p.remember(key, a)
		return p.done(span, Result{Action: a, Stage: s.Name()})
	}

	a := p.fallback(in)
	p.remember(key, a)
	return p.done(span, Result{Action: a, Stage: StageDefault})
}

func (p *Pipeline) remember(key string, a *chatdomain.DetectedAction) {
	if p.cache != nil {
		p.cache.Set(key, a)
	}
}

func (p *Pipeline) done(span trace.Span, r Result) Result {
	p.metrics.IncrStage(r.Stage)
	span.SetAttributes(
		attribute.String("cascade.stage", r.Stage),
		attribute.String("action.type", string(r.Action.Type)),
		attribute.Float64("action.confidence", r.Action.Confidence),
	)
	p.logger.Debug("cascade resolved",
		zap.String("stage", r.Stage),
		zap.String("type", string(r.Action.Type)),
		zap.Float64("confidence", r.Action.Confidence),
	)
	return r
}

// DefaultResponse é a resposta genérica quando nada foi reconhecido.
const DefaultResponse = "Não consegui identificar uma ação nessa mensagem. " +
	"Você pode me dizer, por exemplo, \"gastei 50 reais no mercado\" ou \"quero criar uma meta\"."

// DefaultUnknown é o UNKNOWN sintetizado quando todos os estágios passam.
func DefaultUnknown() *chatdomain.DetectedAction {
	return chatdomain.Unknown(0, DefaultResponse)
}
