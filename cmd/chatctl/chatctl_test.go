package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	chatdomain "github.com/saulomartins80/finnextho-bfa-go/internal/chat/domain"
	chatservice "github.com/saulomartins80/finnextho-bfa-go/internal/chat/service"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

type printed struct {
	Stage    string   `json:"stage"`
	Decision string   `json:"decision"`
	Missing  []string `json:"missingFields"`
	Action   struct {
		Type       string          `json:"type"`
		Confidence float64         `json:"confidence"`
		Payload    json.RawMessage `json:"payload"`
	} `json:"action"`
}

func TestDetect_FastPath(t *testing.T) {
	out, err := run(t, "detect", "gastei 100 reais no mercado", "--today", "2026-10-16")
	require.NoError(t, err)

	var got printed
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "fast_path", got.Stage)
	assert.Equal(t, chatservice.OutcomeExecuted, got.Decision)
	assert.Equal(t, string(chatdomain.ActionCreateTransaction), got.Action.Type)
	assert.Empty(t, got.Missing)

	var p map[string]any
	require.NoError(t, json.Unmarshal(got.Action.Payload, &p))
	assert.Equal(t, "2026-10-16", p["data"])
	assert.Equal(t, float64(100), p["valor"])
}

func TestDetect_ContextFromHistory(t *testing.T) {
	out, err := run(t, "detect", "o valor é 250 reais e é uma despesa",
		"--history", "user:gastei no mercado hoje",
		"--history", "bot:Qual foi o valor?")
	require.NoError(t, err)

	var got printed
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "context", got.Stage)
	assert.Equal(t, chatservice.OutcomeConfirmation, got.Decision)
}

func TestDetect_NothingMatches(t *testing.T) {
	out, err := run(t, "detect", "qual a previsão do tempo")
	require.NoError(t, err)

	var got printed
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "default", got.Stage)
	assert.Equal(t, chatservice.OutcomeConversation, got.Decision)
	assert.Equal(t, string(chatdomain.ActionUnknown), got.Action.Type)
}

func TestDetect_InvalidFlags(t *testing.T) {
	_, err := run(t, "detect", "oi", "--history", "alguem:oi")
	assert.ErrorContains(t, err, "want user or bot")

	_, err = run(t, "detect", "oi", "--today", "16/10/2026")
	assert.ErrorContains(t, err, "invalid --today")
}

func TestGateDecision(t *testing.T) {
	tests := []struct {
		name string
		a    chatdomain.DetectedAction
		want string
	}{
		{"execute", chatdomain.DetectedAction{Type: chatdomain.ActionCreateGoal, Confidence: 0.95}, chatservice.OutcomeExecuted},
		{"threshold is exclusive", chatdomain.DetectedAction{Type: chatdomain.ActionCreateGoal, Confidence: 0.85}, chatservice.OutcomeConfirmation},
		{"confirm", chatdomain.DetectedAction{Type: chatdomain.ActionCreateGoal, Confidence: 0.8}, chatservice.OutcomeConfirmation},
		{"low", chatdomain.DetectedAction{Type: chatdomain.ActionCreateGoal, Confidence: 0.7}, chatservice.OutcomeConversation},
		{"canned", chatdomain.DetectedAction{Type: chatdomain.ActionUnknown, Confidence: 0.9, Response: "Olá!"}, chatservice.OutcomeCanned},
		{"confident unknown without text", chatdomain.DetectedAction{Type: chatdomain.ActionUnknown, Confidence: 0.9}, chatservice.OutcomeConversation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, gateDecision(&tt.a))
		})
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"normalize", "amount", "quero", "juntar", "6", "mil"}, "6000.00\tR$ 6.000,00"},
		{[]string{"normalize", "category", "uber"}, "Transporte"},
		{[]string{"normalize", "investment", "cdb"}, "CDB"},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args[1:], " "), func(t *testing.T) {
			out, err := run(t, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, strings.TrimSpace(out))
		})
	}
}

func TestNormalize_Rejects(t *testing.T) {
	_, err := run(t, "normalize", "amount", "sem valor")
	assert.ErrorContains(t, err, "no amount")

	_, err = run(t, "normalize", "investment", "moeda estrangeira")
	assert.ErrorContains(t, err, "not a supported investment type")
}

func TestToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "chatctl-test")

	out, err := run(t, "token", "u-7")
	require.NoError(t, err)

	claims := jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(strings.TrimSpace(out), claims, func(*jwt.Token) (any, error) {
		return []byte("chatctl-test"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "u-7", claims["sub"])
}
