package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/saulomartins80/finnextho-bfa-go/internal/domain"
	"github.com/saulomartins80/finnextho-bfa-go/internal/infra/observability"
	"github.com/saulomartins80/finnextho-bfa-go/internal/port"
)

// Snapshots builds the UserSnapshot sent to the classifier when the client
// does not provide one.
type Snapshots struct {
	store   port.FinanceStore
	users   port.Cache[*domain.User]
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewSnapshots creates the snapshot aggregator. users caches GetUser lookups.
func NewSnapshots(store port.FinanceStore, users port.Cache[*domain.User], metrics *observability.Metrics, logger *zap.Logger) *Snapshots {
	return &Snapshots{store: store, users: users, metrics: metrics, logger: logger}
}

// User returns the user, from cache when possible.
func (s *Snapshots) User(ctx context.Context, userID string) (*domain.User, error) {
	cacheKey := "user:" + userID
	if s.users != nil {
		if u, ok := s.users.Get(cacheKey); ok {
			s.metrics.IncrCacheHit("user")
			return u, nil
		}
		s.metrics.IncrCacheMiss("user")
	}

	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if s.users != nil {
		s.users.Set(cacheKey, u)
	}
	return u, nil
}

// Snapshot resolves the user and summarizes their records. An unknown user
// is an ErrNotFound.
func (s *Snapshots) Snapshot(ctx context.Context, userID string) (*domain.UserSnapshot, error) {
	ctx, span := tracer.Start(ctx, "Snapshots.Snapshot")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	u, err := s.User(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("user lookup: %w", err)
	}

	recs, err := fetchAll(ctx, s.store, userID, s.metrics, s.logger)
	if err != nil {
		return nil, err
	}

	snap := &domain.UserSnapshot{
		Name:               u.Name,
		SubscriptionPlan:   u.SubscriptionPlan,
		TotalTransacoes:    len(recs.transactions),
		TotalInvestimentos: len(recs.investments),
		TotalMetas:         len(recs.goals),
		HasTransactions:    len(recs.transactions) > 0,
		HasInvestments:     len(recs.investments) > 0,
		HasGoals:           len(recs.goals) > 0,
	}

	if snap.HasTransactions {
		var income, expenses decimal.Decimal
		for _, t := range recs.transactions {
			switch t.Kind {
			case domain.KindIncome:
				income = income.Add(t.Amount)
			case domain.KindExpense:
				expenses = expenses.Add(t.Amount)
			}
		}
		snap.ResumoTransacoes = fmt.Sprintf("%d transações; receitas %s; despesas %s",
			len(recs.transactions), income.StringFixed(2), expenses.StringFixed(2))
	}
	if snap.HasInvestments {
		var total decimal.Decimal
		for _, inv := range recs.investments {
			total = total.Add(inv.Amount)
		}
		snap.ResumoInvestimentos = fmt.Sprintf("%d investimentos; total %s", len(recs.investments), total.StringFixed(2))
	}
	if snap.HasGoals {
		names := make([]string, 0, len(recs.goals))
		for _, g := range recs.goals {
			names = append(names, g.Name)
		}
		snap.ResumoMetas = fmt.Sprintf("%d metas: %s", len(recs.goals), joinMax(names, 5))
	}
	return snap, nil
}

func joinMax(items []string, n int) string {
	out := ""
	for i, it := range items {
		if i == n {
			return out + ", ..."
		}
		if i > 0 {
			out += ", "
		}
		out += it
	}
	return out
}
