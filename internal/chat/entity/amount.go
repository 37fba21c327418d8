// Package entity turns free-text fragments of a chat message into typed
// values: currency amounts, natural-language due dates and categories.
//
// Every function here is pure and never fails loudly: when nothing can be
// extracted it returns the documented default (or ok=false).
package entity

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// currency marker before, number, optional magnitude word, optional currency word after.
	// RE2 has no lookahead, so the magnitude word must be followed by a separator or the end.
	amountPattern = regexp.MustCompile(
		`(r\$|rs\b|\$)?\s*(\d+(?:[.,]\d+)*)(?:\s*(milhões|milhoes|milhão|milhao|mil)(?:[\s!,.?;]|$))?(?:\s*(reais|real)\b)?`)

	thousandsDots   = regexp.MustCompile(`^\d{1,3}(?:\.\d{3})+$`)
	thousandsCommas = regexp.MustCompile(`^\d{1,3}(?:,\d{3}){2,}$`)

	// "6 meses", "2 anos", "15 dias": numbers that measure time, not money.
	timeUnitAfter = regexp.MustCompile(`^\s*(?:mes|mês|meses|ano|anos|dia|dias|semana|semanas|h|horas?|x|vezes|%)(?:[\s!,.?;]|$)`)
)

var (
	thousand = decimal.NewFromInt(1_000)
	million  = decimal.NewFromInt(1_000_000)
)

// ParseAmount extracts the first monetary amount in text.
//
// Accepted forms: "100", "r$ 100", "100 reais", "1.500,50", "10,5", "6 mil",
// "1,5 milhão". A match carrying a currency marker or magnitude word wins
// over a bare number found earlier. ok is false when no positive amount exists.
func ParseAmount(text string) (amount decimal.Decimal, ok bool) {
	text = strings.ToLower(text)

	var fallback *decimal.Decimal
	for _, m := range amountPattern.FindAllStringSubmatchIndex(text, -1) {
		// m: [full, prefix, number, magnitude, suffix] start/end pairs
		num := text[m[4]:m[5]]
		if timeUnitAfter.MatchString(text[m[5]:]) && m[6] < 0 {
			continue
		}

		v, err := parseNumber(num)
		if err != nil {
			continue
		}
		if m[6] >= 0 {
			v = v.Mul(magnitude(text[m[6]:m[7]]))
		}
		if !v.IsPositive() {
			continue
		}

		marked := m[2] >= 0 || m[6] >= 0 || m[8] >= 0
		if marked {
			return v, true
		}
		if fallback == nil {
			f := v
			fallback = &f
		}
	}
	if fallback != nil {
		return *fallback, true
	}
	return decimal.Zero, false
}

// parseNumber normalizes pt-BR and en-US separators to a plain decimal.
func parseNumber(s string) (decimal.Decimal, error) {
	hasDot := strings.Contains(s, ".")
	hasComma := strings.Contains(s, ",")

	switch {
	case hasDot && hasComma:
		// the separator that appears last is the decimal one
		if strings.LastIndex(s, ",") > strings.LastIndex(s, ".") {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case hasComma:
		if thousandsCommas.MatchString(s) {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.Replace(s, ",", ".", 1)
			s = strings.ReplaceAll(s, ",", "")
		}
	case hasDot:
		if thousandsDots.MatchString(s) {
			s = strings.ReplaceAll(s, ".", "")
		}
	}
	return decimal.NewFromString(s)
}

func magnitude(word string) decimal.Decimal {
	if strings.HasPrefix(word, "milh") {
		return million
	}
	return thousand
}

// AmountFromAny converts a loosely typed value (e.g. a JSON entity from the
// semantic classifier) into a non-negative amount.
func AmountFromAny(v any) (decimal.Decimal, bool) {
	switch x := v.(type) {
	case nil:
		return decimal.Zero, false
	case float64:
		d := decimal.NewFromFloat(x)
		return nonNegative(d)
	case float32:
		return nonNegative(decimal.NewFromFloat32(x))
	case int:
		return nonNegative(decimal.NewFromInt(int64(x)))
	case int64:
		return nonNegative(decimal.NewFromInt(x))
	case decimal.Decimal:
		return nonNegative(x)
	case string:
		return ParseAmount(x)
	default:
		return decimal.Zero, false
	}
}

func nonNegative(d decimal.Decimal) (decimal.Decimal, bool) {
	if d.IsNegative() {
		return decimal.Zero, false
	}
	return d, d.IsPositive()
}

// FormatBRL renders an amount as "R$ 1.500,50".
func FormatBRL(d decimal.Decimal) string {
	s := d.Abs().StringFixed(2)
	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	sign := ""
	if d.IsNegative() {
		sign = "-"
	}
	return sign + "R$ " + b.String() + "," + frac
}
