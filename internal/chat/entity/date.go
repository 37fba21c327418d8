package entity

import (
	"strings"
	"time"
)

// ISODate is the layout used for every date field in payloads.
const ISODate = "2006-01-02"

// DefaultGoalHorizonYears is how far ahead the due date lands when a goal
// phrase names no recognizable deadline.
const DefaultGoalHorizonYears = 1

type datePhrase struct {
	phrase  string
	resolve func(now time.Time) time.Time
}

// datePhrases is checked in order; first containment match wins.
var datePhrases = []datePhrase{
	{"final de dezembro", endOfYear},
	{"final do ano", endOfYear},
	{"fim do ano", endOfYear},
	{"próximo ano", func(now time.Time) time.Time { return now.AddDate(1, 0, 0) }},
	{"proximo ano", func(now time.Time) time.Time { return now.AddDate(1, 0, 0) }},
	{"6 meses", func(now time.Time) time.Time { return now.AddDate(0, 6, 0) }},
	{"seis meses", func(now time.Time) time.Time { return now.AddDate(0, 6, 0) }},
	{"3 meses", func(now time.Time) time.Time { return now.AddDate(0, 3, 0) }},
	{"três meses", func(now time.Time) time.Time { return now.AddDate(0, 3, 0) }},
}

func endOfYear(now time.Time) time.Time {
	return time.Date(now.Year(), time.December, 31, 0, 0, 0, 0, now.Location())
}

// ResolveDate maps a natural-language deadline to an ISO date relative to now.
// Unmapped input falls back to DefaultDueDate.
func ResolveDate(phrase string, now time.Time) string {
	p := strings.ToLower(phrase)
	for _, d := range datePhrases {
		if strings.Contains(p, d.phrase) {
			return d.resolve(now).Format(ISODate)
		}
	}
	return DefaultDueDate(now)
}

// DefaultDueDate is now plus DefaultGoalHorizonYears.
func DefaultDueDate(now time.Time) string {
	return now.AddDate(DefaultGoalHorizonYears, 0, 0).Format(ISODate)
}

// Today formats now as the default transaction/investment date.
func Today(now time.Time) string {
	return now.Format(ISODate)
}
