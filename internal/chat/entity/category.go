package entity

import "strings"

// DefaultCategory is returned when no keyword list matches.
const DefaultCategory = "Outros"

type keywordCategory struct {
	category string
	keywords []string
}

// transactionCategories is checked in order; first containment match wins.
var transactionCategories = []keywordCategory{
	{"Alimentação", []string{"mercado", "supermercado", "restaurante", "lanche", "comida", "padaria",
		"ifood", "almoço", "almoco", "jantar", "café", "pizza", "feira", "açougue", "acougue"}},
	{"Transporte", []string{"uber", "táxi", "taxi", "ônibus", "onibus", "metrô", "metro ", "gasolina",
		"combustível", "combustivel", "estacionamento", "pedágio", "pedagio"}},
	{"Moradia", []string{"aluguel", "condomínio", "condominio", "conta de luz", "energia", "conta de água",
		"conta de agua", "internet", "iptu"}},
	{"Saúde", []string{"farmácia", "farmacia", "remédio", "remedio", "médico", "medico", "consulta",
		"hospital", "dentista", "plano de saúde", "academia"}},
	{"Educação", []string{"escola", "faculdade", "curso", "livro", "mensalidade"}},
	{"Lazer", []string{"cinema", "show", "netflix", "spotify", "festa", "viagem", "passeio"}},
	{"Vestuário", []string{"roupa", "sapato", "tênis", "tenis", "camisa"}},
	{"Salário", []string{"salário", "salario", "pagamento do trabalho"}},
}

// goalCategories classifies a goal name.
var goalCategories = []keywordCategory{
	{"Viagem", []string{"viagem", "viajar", "férias", "ferias", "intercâmbio", "intercambio"}},
	{"Reserva de Emergência", []string{"emergência", "emergencia", "reserva"}},
	{"Moradia", []string{"casa", "apartamento", "imóvel", "imovel", "reforma"}},
	{"Veículo", []string{"carro", "moto", "veículo", "veiculo"}},
	{"Educação", []string{"curso", "faculdade", "estudo", "mestrado", "intercâmbio"}},
}

// InferCategory guesses a transaction category from its description.
func InferCategory(description string) string {
	return match(transactionCategories, description)
}

// InferGoalCategory guesses a goal category from its name.
func InferGoalCategory(name string) string {
	return match(goalCategories, name)
}

func match(table []keywordCategory, text string) string {
	t := strings.ToLower(text)
	if strings.TrimSpace(t) == "" {
		return DefaultCategory
	}
	// pad so trailing-space keywords ("metro ") still match at the end
	t += " "
	for _, c := range table {
		for _, kw := range c.keywords {
			if strings.Contains(t, kw) {
				return c.category
			}
		}
	}
	return DefaultCategory
}
