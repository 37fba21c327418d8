package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/saulomartins80/finnextho-bfa-go/internal/domain"
	"github.com/saulomartins80/finnextho-bfa-go/internal/infra/observability"
	"github.com/saulomartins80/finnextho-bfa-go/internal/port"
)

var tracer = otel.Tracer("service/finance")

// Analysis periods understood by Analyze. Anything else means "all time".
const (
	PeriodWeekly  = "semanal"
	PeriodMonthly = "mensal"
	PeriodYearly  = "anual"
)

var hundred = decimal.NewFromInt(100)

// Analysis aggregates a user's transactions, investments and goals.
type Analysis struct {
	store   port.FinanceStore
	metrics *observability.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

// NewAnalysis creates the analysis service. now may be nil.
func NewAnalysis(store port.FinanceStore, metrics *observability.Metrics, logger *zap.Logger, now func() time.Time) *Analysis {
	if now == nil {
		now = time.Now
	}
	return &Analysis{store: store, metrics: metrics, logger: logger, now: now}
}

// userRecords holds the three independent reads behind an analysis or snapshot.
type userRecords struct {
	transactions []domain.TransactionRecord
	investments  []domain.InvestmentRecord
	goals        []domain.GoalRecord
}

// fetchAll reads the three collections concurrently. Any failure fails the
// whole call; a partial summary is never returned.
func fetchAll(ctx context.Context, store port.FinanceStore, userID string, metrics *observability.Metrics, logger *zap.Logger) (*userRecords, error) {
	var recs userRecords
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		t, err := store.ListTransactions(gCtx, userID)
		if err != nil {
			logger.Error("failed to list transactions", zap.String("user_id", userID), zap.Error(err))
			metrics.IncrExternalError("transactions")
			return fmt.Errorf("transactions fetch: %w", err)
		}
		recs.transactions = t
		return nil
	})

	g.Go(func() error {
		inv, err := store.ListInvestments(gCtx, userID)
		if err != nil {
			logger.Error("failed to list investments", zap.String("user_id", userID), zap.Error(err))
			metrics.IncrExternalError("investments")
			return fmt.Errorf("investments fetch: %w", err)
		}
		recs.investments = inv
		return nil
	})

	g.Go(func() error {
		goals, err := store.ListGoals(gCtx, userID)
		if err != nil {
			logger.Error("failed to list goals", zap.String("user_id", userID), zap.Error(err))
			metrics.IncrExternalError("goals")
			return fmt.Errorf("goals fetch: %w", err)
		}
		recs.goals = goals
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &recs, nil
}

// Analyze builds the financial analysis for ANALYZE_DATA. period filters
// transactions by date; investments and goals are always taken whole.
func (a *Analysis) Analyze(ctx context.Context, userID, analysisType, period string) (*domain.FinancialAnalysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "Analysis.Analyze")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID), attribute.String("analysis.period", period))

	start := time.Now()
	defer func() { a.metrics.RecordRequestDuration("analysis", time.Since(start)) }()

	recs, err := fetchAll(ctx, a.store, userID, a.metrics, a.logger)
	if err != nil {
		return nil, err
	}

	out := &domain.FinancialAnalysis{
		AnalysisType: analysisType,
		Period:       period,
		Goals:        []domain.GoalProgress{},
	}

	since := periodStart(period, a.now())
	expenses := map[string]*domain.CategoryTotal{}
	for _, t := range recs.transactions {
		if !inPeriod(t.Date, since) {
			continue
		}
		out.TransactionCount++
		switch t.Kind {
		case domain.KindIncome:
			out.TotalIncome = out.TotalIncome.Add(t.Amount)
		case domain.KindExpense:
			out.TotalExpenses = out.TotalExpenses.Add(t.Amount)
			addTo(expenses, t.Category, t.Amount)
		}
	}
	out.Balance = out.TotalIncome.Sub(out.TotalExpenses)
	out.ExpenseByCategory = sortedTotals(expenses)
	if out.TotalIncome.IsPositive() {
		out.SavingsRatePercent = out.Balance.Div(out.TotalIncome).Mul(hundred).Round(2)
	}

	invested := map[string]*domain.CategoryTotal{}
	for _, inv := range recs.investments {
		out.InvestmentCount++
		out.TotalInvested = out.TotalInvested.Add(inv.Amount)
		addTo(invested, inv.Kind, inv.Amount)
	}
	out.InvestedByType = sortedTotals(invested)

	for _, g := range recs.goals {
		out.GoalCount++
		out.Goals = append(out.Goals, progressOf(g))
	}

	return out, nil
}

// Report wraps Analyze for GENERATE_REPORT.
func (a *Analysis) Report(ctx context.Context, userID, reportType, period string) (*domain.FinancialReport, error) {
	ctx, span := tracer.Start(ctx, "Analysis.Report")
	defer span.End()

	analysis, err := a.Analyze(ctx, userID, reportType, period)
	if err != nil {
		return nil, err
	}
	return &domain.FinancialReport{
		ID:          uuid.New().String(),
		ReportType:  reportType,
		GeneratedAt: a.now().UTC(),
		Analysis:    analysis,
	}, nil
}

func periodStart(period string, now time.Time) time.Time {
	switch period {
	case PeriodWeekly:
		return now.AddDate(0, 0, -7)
	case PeriodMonthly:
		return now.AddDate(0, -1, 0)
	case PeriodYearly:
		return now.AddDate(-1, 0, 0)
	default:
		return time.Time{}
	}
}

// inPeriod keeps records whose date cannot be parsed.
func inPeriod(date string, since time.Time) bool {
	if since.IsZero() {
		return true
	}
	d, err := time.Parse(time.DateOnly, date)
	if err != nil {
		return true
	}
	day := time.Date(since.Year(), since.Month(), since.Day(), 0, 0, 0, 0, time.UTC)
	return !d.Before(day)
}

func addTo(m map[string]*domain.CategoryTotal, label string, amount decimal.Decimal) {
	if label == "" {
		label = "Outros"
	}
	ct, ok := m[label]
	if !ok {
		ct = &domain.CategoryTotal{Category: label}
		m[label] = ct
	}
	ct.Total = ct.Total.Add(amount)
	ct.Count++
}

func sortedTotals(m map[string]*domain.CategoryTotal) []domain.CategoryTotal {
	out := make([]domain.CategoryTotal, 0, len(m))
	for _, ct := range m {
		out = append(out, *ct)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Total.Cmp(out[j].Total); c != 0 {
			return c > 0
		}
		return out[i].Category < out[j].Category
	})
	return out
}

func progressOf(g domain.GoalRecord) domain.GoalProgress {
	p := domain.GoalProgress{
		Name:          g.Name,
		TargetAmount:  g.TargetAmount,
		CurrentAmount: g.CurrentAmount,
		DueDate:       g.DueDate,
	}
	if g.TargetAmount.IsPositive() {
		p.ProgressPercent = g.CurrentAmount.Div(g.TargetAmount).Mul(hundred).Round(2)
	}
	return p
}
