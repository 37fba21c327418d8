package infra

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/saulomartins80/finnextho-bfa-go/internal/chat/domain"
)

var errNoJSONObject = errors.New("classifier output has no JSON object")

// ParseClassifierOutput lê a saída do classificador. Modelos de linguagem
// às vezes embrulham o JSON em cerca de markdown ou texto; o primeiro objeto
// JSON do texto é o que vale. Confiança fora de [0,1] é limitada, e
// confiança em texto ("0.9") é aceita; "inf" e "nan" viram 0.
func ParseClassifierOutput(text string) (*domain.ClassifierResult, error) {
	raw, err := extractObject(text)
	if err != nil {
		return nil, err
	}

	var wire struct {
		Intent               string            `json:"intent"`
		Entities             map[string]any    `json:"entities"`
		Confidence           json.RawMessage   `json:"confidence"`
		Response             string            `json:"response"`
		RequiresConfirmation bool              `json:"requiresConfirmation"`
		Usage                domain.TokenUsage `json:"usage"`
	}
	if err := json.Unmarshal([]byte(raw), &wire); err != nil {
		return nil, fmt.Errorf("decode classifier output: %w", err)
	}

	return &domain.ClassifierResult{
		Intent:               strings.ToUpper(strings.TrimSpace(wire.Intent)),
		Entities:             wire.Entities,
		Confidence:           clamp(parseConfidence(wire.Confidence)),
		Response:             strings.TrimSpace(wire.Response),
		RequiresConfirmation: wire.RequiresConfirmation,
		Usage:                wire.Usage,
	}, nil
}

func extractObject(text string) (string, error) {
	s := strings.TrimSpace(text)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimPrefix(s, "json")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < start {
		return "", errNoJSONObject
	}
	return s[start : end+1], nil
}

func parseConfidence(raw json.RawMessage) float64 {
	s := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	if s == "" || s == "null" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func clamp(f float64) float64 {
	switch {
	case math.IsNaN(f), f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}
