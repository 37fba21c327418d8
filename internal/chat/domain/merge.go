package domain

// MergePayload preenche os campos vazios de base com os valores de fallback.
// Só funde payloads do mesmo tipo; caso contrário devolve base intacto.
func MergePayload(base, fallback Payload) Payload {
	if base == nil {
		return fallback
	}
	if fallback == nil || base.ActionType() != fallback.ActionType() {
		return base
	}

	switch b := base.(type) {
	case TransactionPayload:
		f := fallback.(TransactionPayload)
		if !b.Amount.IsPositive() {
			b.Amount = f.Amount
		}
		// a categoria pendente foi inferida da descrição pendente; descrição
		// nova sem categoria fica sem categoria para ser inferida de novo
		if blank(b.Description) {
			b.Category = orElse(b.Category, f.Category)
		}
		b.Description = orElse(b.Description, f.Description)
		b.Kind = orElse(b.Kind, f.Kind)
		b.Account = orElse(b.Account, f.Account)
		b.Date = orElse(b.Date, f.Date)
		return b
	case InvestmentPayload:
		f := fallback.(InvestmentPayload)
		if !b.Amount.IsPositive() {
			b.Amount = f.Amount
		}
		b.Name = orElse(b.Name, f.Name)
		b.Kind = orElse(b.Kind, f.Kind)
		b.Date = orElse(b.Date, f.Date)
		b.Institution = orElse(b.Institution, f.Institution)
		return b
	case GoalPayload:
		f := fallback.(GoalPayload)
		if !b.TargetAmount.IsPositive() {
			b.TargetAmount = f.TargetAmount
		}
		b.Name = orElse(b.Name, f.Name)
		b.DueDate = orElse(b.DueDate, f.DueDate)
		b.Category = orElse(b.Category, f.Category)
		return b
	case AnalysisPayload:
		f := fallback.(AnalysisPayload)
		b.AnalysisType = orElse(b.AnalysisType, f.AnalysisType)
		b.Period = orElse(b.Period, f.Period)
		return b
	case ReportPayload:
		f := fallback.(ReportPayload)
		b.ReportType = orElse(b.ReportType, f.ReportType)
		b.Period = orElse(b.Period, f.Period)
		return b
	default:
		return base
	}
}

func orElse(v, fallback string) string {
	if blank(v) {
		return fallback
	}
	return v
}
