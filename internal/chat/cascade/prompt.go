package cascade

import (
	"fmt"
	"strings"
	"time"

	chatdomain "github.com/saulomartins80/finnextho-bfa-go/internal/chat/domain"
	"github.com/saulomartins80/finnextho-bfa-go/internal/chat/matcher"
)

// classifierInstructions é o cabeçalho fixo do prompt do classificador.
const classifierInstructions = `Você é o classificador de intenções de um assistente financeiro pessoal em português.
Responda SOMENTE com JSON cru, sem markdown e sem explicação.

Intenções suportadas:
- "CREATE_TRANSACTION": entidades valor, descricao, tipo (receita|despesa|transferencia), categoria, conta, data (YYYY-MM-DD)
- "CREATE_INVESTMENT": entidades nome, valor, tipo, data, instituicao
- "CREATE_GOAL": entidades meta, valor_total, data_conclusao (YYYY-MM-DD ou frase como "final do ano"), categoria
- "ANALYZE_DATA": entidades analysisType, period
- "GENERATE_REPORT": entidades reportType, period
- "UNKNOWN": conversa, dúvida ou pedido fora do escopo

Formato:
{"intent": "...", "entities": {...}, "confidence": 0.0-1.0, "response": "resposta curta ao usuário", "requiresConfirmation": true|false}

Regras:
- Use null para o que o usuário não disse. NUNCA invente valores.
- confidence acima de 0.85 só quando todos os campos obrigatórios estiverem na mensagem.
- Para UNKNOWN, escreva em "response" uma resposta útil e curta.`

// BuildPrompt monta o prompt do classificador: instruções, resumo do usuário,
// as últimas window trocas da conversa e a mensagem atual.
func BuildPrompt(in *Input, window int, now time.Time) string {
	var b strings.Builder
	b.WriteString(classifierInstructions)
	fmt.Fprintf(&b, "\n\nData de hoje: %s\n", now.Format(time.DateOnly))

	if s := in.Snapshot; s != nil {
		b.WriteString("\nUsuário:\n")
		if s.Name != "" {
			fmt.Fprintf(&b, "- nome: %s\n", s.Name)
		}
		if s.SubscriptionPlan != "" {
			fmt.Fprintf(&b, "- plano: %s\n", s.SubscriptionPlan)
		}
		fmt.Fprintf(&b, "- transações: %d, investimentos: %d, metas: %d\n",
			s.TotalTransacoes, s.TotalInvestimentos, s.TotalMetas)
	}

	if turns := matcher.RecentTurns(in.History, window); len(turns) > 0 {
		b.WriteString("\nConversa recente:\n")
		for _, t := range turns {
			fmt.Fprintf(&b, "%s: %s\n", speaker(t.Sender), t.Content)
		}
	}

	fmt.Fprintf(&b, "\nMensagem do usuário:\n%s", in.Message)
	return b.String()
}

func speaker(s chatdomain.Sender) string {
	if s == chatdomain.SenderBot {
		return "assistente"
	}
	return "usuário"
}
