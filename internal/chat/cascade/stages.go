package cascade

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	chatdomain "github.com/saulomartins80/finnextho-bfa-go/internal/chat/domain"
	"github.com/saulomartins80/finnextho-bfa-go/internal/chat/entity"
	"github.com/saulomartins80/finnextho-bfa-go/internal/chat/matcher"
	"github.com/saulomartins80/finnextho-bfa-go/internal/chat/port"
	"github.com/saulomartins80/finnextho-bfa-go/internal/infra/observability"
)

// ============================================================
// Fast-Path / Contexto
// ============================================================

// FastPathStage adapta o matcher.FastPath a Stage.
func FastPathStage(fp *matcher.FastPath) Stage {
	return StageFunc{
		StageName: StageFastPath,
		Fn: func(_ context.Context, in *Input) (*chatdomain.DetectedAction, bool) {
			return fp.Match(in.Message)
		},
	}
}

// ContextStage adapta o matcher.ContextMatcher a Stage.
func ContextStage(cm *matcher.ContextMatcher) Stage {
	return StageFunc{
		StageName: StageContext,
		Fn: func(_ context.Context, in *Input) (*chatdomain.DetectedAction, bool) {
			return cm.Match(in.Message, in.History)
		},
	}
}

// ============================================================
// Classificador semântico
// ============================================================

// SemanticStage consulta o classificador externo. Erro, timeout ou um UNKNOWN
// com confiança zero contam como "sem match".
type SemanticStage struct {
	classifier port.SemanticClassifier
	timeout    time.Duration
	window     int
	now        func() time.Time
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NewSemanticStage cria o estágio. timeout <= 0 não limita a chamada além
// do contexto recebido.
func NewSemanticStage(
	classifier port.SemanticClassifier,
	timeout time.Duration,
	window int,
	now func() time.Time,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *SemanticStage {
	if now == nil {
		now = time.Now
	}
	return &SemanticStage{
		classifier: classifier,
		timeout:    timeout,
		window:     window,
		now:        now,
		metrics:    metrics,
		logger:     logger,
	}
}

func (s *SemanticStage) Name() string { return StageSemantic }

func (s *SemanticStage) Run(ctx context.Context, in *Input) (*chatdomain.DetectedAction, bool) {
	if s.classifier == nil {
		return nil, false
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	now := s.now()
	start := time.Now()
	res, err := s.classifier.Classify(ctx, BuildPrompt(in, s.window, now))
	s.metrics.RecordRequestDuration("classifier", time.Since(start))
	if err != nil {
		s.metrics.IncrClassifierCall("error")
		s.metrics.IncrExternalError("classifier")
		s.logger.Warn("semantic classifier failed", zap.Error(err))
		return nil, false
	}
	if res == nil {
		s.metrics.IncrClassifierCall("empty")
		return nil, false
	}
	s.metrics.IncrClassifierCall("success")
	s.metrics.RecordTokens(res.Usage.PromptTokens, res.Usage.CompletionTokens)

	a := FromClassifier(res, in.Message, now)
	if a.Type == chatdomain.ActionUnknown && a.Confidence == 0 {
		return nil, false
	}
	return a, true
}

// FromClassifier converte a resposta do classificador em DetectedAction,
// normalizando as entidades pelas mesmas regras do Fast-Path. message é
// usada para inferir o que o classificador não informou.
func FromClassifier(res *chatdomain.ClassifierResult, message string, now time.Time) *chatdomain.DetectedAction {
	t := chatdomain.ParseActionType(strings.ToUpper(strings.TrimSpace(res.Intent)))
	confidence := clamp(res.Confidence)
	e := res.Entities
	lower := strings.ToLower(message)

	var p chatdomain.Payload
	switch t {
	case chatdomain.ActionCreateTransaction:
		amount, _ := entity.AmountFromAny(first(e, "valor", "amount"))
		desc := str(e, "descricao", "description")
		cat := str(e, "categoria", "category")
		if cat == "" {
			cat = entity.InferCategory(desc)
		}
		account := str(e, "conta", "account")
		if account == "" {
			account = matcher.DefaultAccount
		}
		p = chatdomain.TransactionPayload{
			Amount:      amount,
			Description: desc,
			Kind:        transactionKind(str(e, "tipo", "kind"), lower),
			Category:    cat,
			Account:     account,
			Date:        isoOr(str(e, "data", "date"), entity.Today(now)),
		}
	case chatdomain.ActionCreateInvestment:
		amount, _ := entity.AmountFromAny(first(e, "valor", "amount"))
		name := str(e, "nome", "name")
		kind := str(e, "tipo", "kind")
		if n, ok := entity.NormalizeInvestmentType(kind); ok {
			kind = n
		} else if n, ok := entity.NormalizeInvestmentType(name); ok && kind == "" {
			kind = n
		}
		p = chatdomain.InvestmentPayload{
			Name:        name,
			Amount:      amount,
			Kind:        kind,
			Date:        isoOr(str(e, "data", "date"), entity.Today(now)),
			Institution: str(e, "instituicao", "institution"),
		}
	case chatdomain.ActionCreateGoal:
		amount, _ := entity.AmountFromAny(first(e, "valor_total", "valor", "amount"))
		name := str(e, "meta", "nome", "name")
		due := str(e, "data_conclusao", "prazo", "dueDate")
		if _, err := time.Parse(entity.ISODate, due); err != nil {
			phrase := due
			if phrase == "" {
				phrase = lower
			}
			due = entity.ResolveDate(phrase, now)
		}
		cat := str(e, "categoria", "category")
		if cat == "" {
			cat = entity.InferGoalCategory(name)
		}
		p = chatdomain.GoalPayload{Name: name, TargetAmount: amount, DueDate: due, Category: cat}
	case chatdomain.ActionAnalyzeData:
		p = chatdomain.AnalysisPayload{AnalysisType: str(e, "analysisType", "tipo"), Period: str(e, "period", "periodo")}
	case chatdomain.ActionGenerateReport:
		p = chatdomain.ReportPayload{ReportType: str(e, "reportType", "tipo"), Period: str(e, "period", "periodo")}
	default:
		return chatdomain.Unknown(confidence, strings.TrimSpace(res.Response))
	}

	return &chatdomain.DetectedAction{
		Type:                 t,
		Payload:              p,
		Confidence:           confidence,
		RequiresConfirmation: res.RequiresConfirmation || !chatdomain.Complete(p),
		Response:             strings.TrimSpace(res.Response),
	}
}

func transactionKind(raw, lower string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "receita", "income", "entrada":
		return "receita"
	case "despesa", "expense", "saida", "saída", "gasto":
		return "despesa"
	case "transferencia", "transferência", "transfer":
		return "transferencia"
	}
	if lower == "" {
		return ""
	}
	return matcher.TransactionKind(lower)
}

func first(e map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := e[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func str(e map[string]any, keys ...string) string {
	switch v := first(e, keys...).(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

func isoOr(s, fallback string) string {
	if _, err := time.Parse(entity.ISODate, s); err == nil {
		return s
	}
	return fallback
}

// clamp limita a confiança a [0,1]; valores não finitos viram 0.
func clamp(c float64) float64 {
	switch {
	case math.IsNaN(c), math.IsInf(c, 0), c < 0:
		return 0
	case c > 1:
		return 1
	default:
		return c
	}
}
