// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
package port

//go:generate mockgen -destination=mocks/ports_mock.go -package=mocks github.com/saulomartins80/finnextho-bfa-go/internal/port FinanceStore

import (
	"context"

	"github.com/saulomartins80/finnextho-bfa-go/internal/domain"
)

// UserStore resolves the owner of a chat session.
type UserStore interface {
	GetUser(ctx context.Context, userID string) (*domain.User, error)
}

// TransactionStore persists and lists transactions by user.
type TransactionStore interface {
	CreateTransaction(ctx context.Context, tx *domain.TransactionRecord) (*domain.TransactionRecord, error)
	ListTransactions(ctx context.Context, userID string) ([]domain.TransactionRecord, error)
}

// InvestmentStore persists and lists investments by user.
type InvestmentStore interface {
	CreateInvestment(ctx context.Context, inv *domain.InvestmentRecord) (*domain.InvestmentRecord, error)
	ListInvestments(ctx context.Context, userID string) ([]domain.InvestmentRecord, error)
}

// GoalStore persists and lists savings goals by user.
type GoalStore interface {
	CreateGoal(ctx context.Context, goal *domain.GoalRecord) (*domain.GoalRecord, error)
	ListGoals(ctx context.Context, userID string) ([]domain.GoalRecord, error)
}

// FinanceStore is the full persistence layer.
// Implemented by the Supabase adapter and the SQLite adapter.
type FinanceStore interface {
	UserStore
	TransactionStore
	InvestmentStore
	GoalStore
}

// Cache provides generic caching.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}
