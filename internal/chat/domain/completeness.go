package domain

import "strings"

// MissingFields applies the completeness rule for a payload and returns the
// JSON names of the required fields that are empty or zero, in a fixed order.
//
//	CREATE_TRANSACTION → valor > 0, descricao, tipo
//	CREATE_INVESTMENT  → valor > 0, nome, tipo
//	CREATE_GOAL        → valor_total > 0, meta
//	ANALYZE_DATA / GENERATE_REPORT → always complete
//
// UNKNOWN has nothing to execute and is reported as missing "type".
func MissingFields(p Payload) []string {
	var missing []string
	switch v := p.(type) {
	case TransactionPayload:
		if !v.Amount.IsPositive() {
			missing = append(missing, "valor")
		}
		if blank(v.Description) {
			missing = append(missing, "descricao")
		}
		if blank(v.Kind) {
			missing = append(missing, "tipo")
		}
	case InvestmentPayload:
		if !v.Amount.IsPositive() {
			missing = append(missing, "valor")
		}
		if blank(v.Name) {
			missing = append(missing, "nome")
		}
		if blank(v.Kind) {
			missing = append(missing, "tipo")
		}
	case GoalPayload:
		if !v.TargetAmount.IsPositive() {
			missing = append(missing, "valor_total")
		}
		if blank(v.Name) {
			missing = append(missing, "meta")
		}
	case AnalysisPayload, ReportPayload:
	default:
		missing = append(missing, "type")
	}
	return missing
}

// Complete reports whether the payload satisfies its completeness rule.
func Complete(p Payload) bool {
	return len(MissingFields(p)) == 0
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }
