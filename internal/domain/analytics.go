package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ============================================================
// Análise financeira e relatórios
// ============================================================

// FinancialAnalysis is the read-only aggregation behind ANALYZE_DATA.
type FinancialAnalysis struct {
	AnalysisType       string          `json:"analysisType,omitempty"`
	Period             string          `json:"period,omitempty"`
	TotalIncome        decimal.Decimal `json:"totalReceitas"`
	TotalExpenses      decimal.Decimal `json:"totalDespesas"`
	Balance            decimal.Decimal `json:"saldo"`
	TransactionCount   int             `json:"totalTransacoes"`
	ExpenseByCategory  []CategoryTotal `json:"despesasPorCategoria"`
	TotalInvested      decimal.Decimal `json:"totalInvestido"`
	InvestedByType     []CategoryTotal `json:"investimentosPorTipo"`
	InvestmentCount    int             `json:"totalInvestimentos"`
	Goals              []GoalProgress  `json:"metas"`
	GoalCount          int             `json:"totalMetas"`
	SavingsRatePercent decimal.Decimal `json:"taxaEconomia"`
}

// CategoryTotal is a summed amount per label, sorted descending by Total.
type CategoryTotal struct {
	Category string          `json:"categoria"`
	Total    decimal.Decimal `json:"total"`
	Count    int             `json:"quantidade"`
}

// GoalProgress reports how far a goal is from its target.
type GoalProgress struct {
	Name            string          `json:"meta"`
	TargetAmount    decimal.Decimal `json:"valor_total"`
	CurrentAmount   decimal.Decimal `json:"valor_atual"`
	ProgressPercent decimal.Decimal `json:"progresso"`
	DueDate         string          `json:"data_conclusao"`
}

// FinancialReport wraps an analysis with an identifier and generation time (GENERATE_REPORT).
type FinancialReport struct {
	ID          string             `json:"id"`
	ReportType  string             `json:"reportType,omitempty"`
	GeneratedAt time.Time          `json:"generatedAt"`
	Analysis    *FinancialAnalysis `json:"analysis"`
}
