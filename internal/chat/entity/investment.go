package entity

import (
	"slices"
	"strings"
)

// Investment classes accepted for persistence.
var InvestmentTypes = []string{
	"Tesouro Direto",
	"Ações",
	"Fundos Imobiliários",
	"Criptomoedas",
	"Previdência Privada",
	"ETF",
	"CDB",
	"LCI",
	"LCA",
	"Debêntures",
	"Renda Fixa",
	"Poupança",
	"Fundos de Investimento",
}

// DefaultInvestmentType is used by the fast path when the message names no class.
const DefaultInvestmentType = "Renda Fixa"

type synonym struct {
	canonical string
	words     []string
}

// investmentSynonyms is checked in order; more specific words come first
// ("fundo imobiliário" before "fundo", "cripto" before anything containing "cri").
var investmentSynonyms = []synonym{
	{"Tesouro Direto", []string{"tesouro", "selic", "ipca+", "prefixado"}},
	{"Fundos Imobiliários", []string{"fundo imobiliário", "fundos imobiliários", "fundo imobiliario", "fundos imobiliarios", "fii"}},
	{"Criptomoedas", []string{"bitcoin", "btc", "ethereum", "cripto"}},
	{"Previdência Privada", []string{"previdência", "previdencia", "pgbl", "vgbl"}},
	{"Ações", []string{"ações", "acoes", "bolsa", "b3"}},
	{"ETF", []string{"etf"}},
	{"CDB", []string{"cdb"}},
	{"LCI", []string{"lci"}},
	{"LCA", []string{"lca"}},
	{"Debêntures", []string{"debênture", "debenture"}},
	{"Poupança", []string{"poupança", "poupanca"}},
	{"Renda Fixa", []string{"renda fixa"}},
	{"Fundos de Investimento", []string{"fundo de investimento", "fundos de investimento", "fundo", "multimercado"}},
}

// NormalizeInvestmentType maps a free-text investment class to one of
// InvestmentTypes. ok is false when nothing maps (e.g. "moeda estrangeira").
func NormalizeInvestmentType(s string) (string, bool) {
	t := strings.ToLower(strings.TrimSpace(s))
	if t == "" {
		return "", false
	}
	for _, it := range InvestmentTypes {
		if strings.ToLower(it) == t {
			return it, true
		}
	}
	for _, syn := range investmentSynonyms {
		for _, w := range syn.words {
			if strings.Contains(t, w) {
				return syn.canonical, true
			}
		}
	}
	return "", false
}

// IsInvestmentType reports whether s is already a canonical class.
func IsInvestmentType(s string) bool {
	return slices.Contains(InvestmentTypes, s)
}
