package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ============================================================
// Usuário e registros financeiros persistidos
// ============================================================

// User é o dono dos registros financeiros.
type User struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	SubscriptionPlan string `json:"subscription_plan"`
}

// TransactionRecord é uma transação persistida.
// Kind é "receita", "despesa" ou "transferencia".
type TransactionRecord struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	Amount      decimal.Decimal `json:"valor"`
	Description string          `json:"descricao"`
	Kind        string          `json:"tipo"`
	Category    string          `json:"categoria"`
	Account     string          `json:"conta"`
	Date        string          `json:"data"`
	CreatedAt   time.Time       `json:"created_at"`
}

// InvestmentRecord é um investimento persistido.
type InvestmentRecord struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	Name        string          `json:"nome"`
	Amount      decimal.Decimal `json:"valor"`
	Kind        string          `json:"tipo"`
	Date        string          `json:"data"`
	Institution string          `json:"instituicao,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// GoalRecord é uma meta de economia persistida.
type GoalRecord struct {
	ID            string          `json:"id"`
	UserID        string          `json:"user_id"`
	Name          string          `json:"meta"`
	TargetAmount  decimal.Decimal `json:"valor_total"`
	CurrentAmount decimal.Decimal `json:"valor_atual"`
	DueDate       string          `json:"data_conclusao"`
	Category      string          `json:"categoria"`
	Priority      string          `json:"prioridade"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Transaction kinds.
const (
	KindIncome   = "receita"
	KindExpense  = "despesa"
	KindTransfer = "transferencia"
)

// DefaultGoalPriority is assigned to every goal created through the chat.
const DefaultGoalPriority = "media"

// ============================================================
// UserSnapshot — visão resumida consumida pelo classificador
// ============================================================

// UserSnapshot is the read-only financial snapshot of the user sent with a chat message.
type UserSnapshot struct {
	Name                string `json:"name"`
	SubscriptionPlan    string `json:"subscriptionPlan"`
	TotalTransacoes     int    `json:"totalTransacoes"`
	TotalInvestimentos  int    `json:"totalInvestimentos"`
	TotalMetas          int    `json:"totalMetas"`
	HasTransactions     bool   `json:"hasTransactions"`
	HasInvestments      bool   `json:"hasInvestments"`
	HasGoals            bool   `json:"hasGoals"`
	ResumoTransacoes    string `json:"resumoTransacoes,omitempty"`
	ResumoInvestimentos string `json:"resumoInvestimentos,omitempty"`
	ResumoMetas         string `json:"resumoMetas,omitempty"`
}
