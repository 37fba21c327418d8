package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	chatdomain "github.com/saulomartins80/finnextho-bfa-go/internal/chat/domain"
	"github.com/saulomartins80/finnextho-bfa-go/internal/chat/entity"
	"github.com/saulomartins80/finnextho-bfa-go/internal/chat/matcher"
	chatport "github.com/saulomartins80/finnextho-bfa-go/internal/chat/port"
	maindomain "github.com/saulomartins80/finnextho-bfa-go/internal/domain"
	"github.com/saulomartins80/finnextho-bfa-go/internal/port"
)

// MinInvestmentAmount é o menor valor aceito em CREATE_INVESTMENT.
var MinInvestmentAmount = decimal.RequireFromString("0.01")

// DefaultHandlers registra um handler por tipo executável.
func DefaultHandlers(store port.FinanceStore, analyzer chatport.FinanceAnalyzer, now func() time.Time) []ActionHandler {
	if now == nil {
		now = time.Now
	}
	return []ActionHandler{
		&TransactionHandler{store: store, now: now},
		&InvestmentHandler{store: store, now: now},
		&GoalHandler{store: store, now: now},
		&AnalysisHandler{analyzer: analyzer},
		&ReportHandler{analyzer: analyzer},
	}
}

// ============================================================
// CREATE_TRANSACTION
// ============================================================

// TransactionHandler persiste a transação como veio, preenchendo só os
// campos opcionais vazios.
type TransactionHandler struct {
	store port.TransactionStore
	now   func() time.Time
}

func (h *TransactionHandler) CanHandle(t chatdomain.ActionType) bool {
	return t == chatdomain.ActionCreateTransaction
}

func (h *TransactionHandler) Handle(ctx context.Context, userID string, p chatdomain.Payload) (*Outcome, error) {
	tx := p.(chatdomain.TransactionPayload)
	now := h.now()

	rec := &maindomain.TransactionRecord{
		UserID:      userID,
		Amount:      tx.Amount,
		Description: tx.Description,
		Kind:        tx.Kind,
		Category:    orDefault(tx.Category, entity.InferCategory(tx.Description)),
		Account:     orDefault(tx.Account, matcher.DefaultAccount),
		Date:        orDefault(tx.Date, entity.Today(now)),
		CreatedAt:   now.UTC(),
	}
	saved, err := h.store.CreateTransaction(ctx, rec)
	if err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}
	return &Outcome{
		Result: saved,
		Message: fmt.Sprintf("Transação registrada: %s de %s em %s (%s).",
			kindLabel(saved.Kind), entity.FormatBRL(saved.Amount), saved.Description, saved.Category),
	}, nil
}

// ============================================================
// CREATE_INVESTMENT
// ============================================================

// InvestmentHandler normaliza o tipo e recusa tipos fora da lista ou
// valores abaixo do mínimo.
type InvestmentHandler struct {
	store port.InvestmentStore
	now   func() time.Time
}

func (h *InvestmentHandler) CanHandle(t chatdomain.ActionType) bool {
	return t == chatdomain.ActionCreateInvestment
}

func (h *InvestmentHandler) Handle(ctx context.Context, userID string, p chatdomain.Payload) (*Outcome, error) {
	inv := p.(chatdomain.InvestmentPayload)

	kind, ok := entity.NormalizeInvestmentType(inv.Kind)
	if !ok {
		return nil, &maindomain.ErrValidation{
			Field: "tipo",
			Message: fmt.Sprintf("Tipo de investimento inválido: %q. Tipos aceitos: %s.",
				inv.Kind, strings.Join(entity.InvestmentTypes, ", ")),
		}
	}
	if inv.Amount.LessThan(MinInvestmentAmount) {
		return nil, &maindomain.ErrValidation{Field: "valor", Message: "O valor mínimo de um investimento é R$ 0,01."}
	}

	now := h.now()
	rec := &maindomain.InvestmentRecord{
		UserID:      userID,
		Name:        inv.Name,
		Amount:      inv.Amount,
		Kind:        kind,
		Date:        orDefault(inv.Date, entity.Today(now)),
		Institution: inv.Institution,
		CreatedAt:   now.UTC(),
	}
	saved, err := h.store.CreateInvestment(ctx, rec)
	if err != nil {
		return nil, fmt.Errorf("create investment: %w", err)
	}
	return &Outcome{
		Result: saved,
		Message: fmt.Sprintf("Investimento registrado: %s em %s (%s).",
			entity.FormatBRL(saved.Amount), saved.Name, saved.Kind),
	}, nil
}

// ============================================================
// CREATE_GOAL
// ============================================================

// GoalHandler cria a meta com valor_atual 0 e prioridade "media".
type GoalHandler struct {
	store port.GoalStore
	now   func() time.Time
}

func (h *GoalHandler) CanHandle(t chatdomain.ActionType) bool {
	return t == chatdomain.ActionCreateGoal
}

func (h *GoalHandler) Handle(ctx context.Context, userID string, p chatdomain.Payload) (*Outcome, error) {
	g := p.(chatdomain.GoalPayload)
	now := h.now()

	due := g.DueDate
	if _, err := time.Parse(entity.ISODate, due); err != nil {
		due = entity.ResolveDate(due, now)
	}

	rec := &maindomain.GoalRecord{
		UserID:        userID,
		Name:          g.Name,
		TargetAmount:  g.TargetAmount,
		CurrentAmount: decimal.Zero,
		DueDate:       due,
		Category:      orDefault(g.Category, entity.InferGoalCategory(g.Name)),
		Priority:      maindomain.DefaultGoalPriority,
		CreatedAt:     now.UTC(),
	}
	saved, err := h.store.CreateGoal(ctx, rec)
	if err != nil {
		return nil, fmt.Errorf("create goal: %w", err)
	}
	return &Outcome{
		Result: saved,
		Message: fmt.Sprintf("Meta criada: %s, juntar %s até %s.",
			saved.Name, entity.FormatBRL(saved.TargetAmount), saved.DueDate),
	}, nil
}

// ============================================================
// ANALYZE_DATA / GENERATE_REPORT
// ============================================================

// AnalysisHandler executa a agregação somente leitura.
type AnalysisHandler struct {
	analyzer chatport.FinanceAnalyzer
}

func (h *AnalysisHandler) CanHandle(t chatdomain.ActionType) bool {
	return t == chatdomain.ActionAnalyzeData
}

func (h *AnalysisHandler) Handle(ctx context.Context, userID string, p chatdomain.Payload) (*Outcome, error) {
	a := p.(chatdomain.AnalysisPayload)
	res, err := h.analyzer.Analyze(ctx, userID, a.AnalysisType, a.Period)
	if err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}
	return &Outcome{Result: res, Message: summarize(res)}, nil
}

// ReportHandler embrulha a análise com id e timestamp.
type ReportHandler struct {
	analyzer chatport.FinanceAnalyzer
}

func (h *ReportHandler) CanHandle(t chatdomain.ActionType) bool {
	return t == chatdomain.ActionGenerateReport
}

func (h *ReportHandler) Handle(ctx context.Context, userID string, p chatdomain.Payload) (*Outcome, error) {
	r := p.(chatdomain.ReportPayload)
	res, err := h.analyzer.Report(ctx, userID, r.ReportType, r.Period)
	if err != nil {
		return nil, fmt.Errorf("report: %w", err)
	}
	return &Outcome{Result: res, Message: "Relatório gerado. " + summarize(res.Analysis)}, nil
}

func summarize(a *maindomain.FinancialAnalysis) string {
	if a == nil {
		return ""
	}
	return fmt.Sprintf("Receitas %s, despesas %s, saldo %s.",
		entity.FormatBRL(a.TotalIncome), entity.FormatBRL(a.TotalExpenses), signedBRL(a.Balance))
}

func signedBRL(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-" + entity.FormatBRL(d)
	}
	return entity.FormatBRL(d)
}

func kindLabel(kind string) string {
	switch kind {
	case maindomain.KindIncome:
		return "receita"
	case maindomain.KindTransfer:
		return "transferência"
	default:
		return "despesa"
	}
}

func orDefault(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
