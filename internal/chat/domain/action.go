// Package domain — action.go define o DetectedAction, a saída única da cascata
// de classificação do chat financeiro.
//
// ============================================================
// DetectedAction — tagged union
// ============================================================
//
// Cada mensagem do usuário vira exatamente um DetectedAction:
//
//	Type    → discriminante (CREATE_TRANSACTION, CREATE_GOAL, ...)
//	Payload → um dos cinco formatos abaixo (ou UnknownPayload)
//
// O Payload é uma interface selada: só os tipos deste pacote a implementam,
// e cada um sabe qual ActionType representa. Quem recebe um DetectedAction
// faz type switch no Payload sem precisar checar Type de novo.
package domain

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

func init() {
	// Valores monetários saem como número JSON para o frontend.
	decimal.MarshalJSONWithoutQuotes = true
}

// ActionType é o discriminante do DetectedAction.
type ActionType string

const (
	ActionCreateTransaction ActionType = "CREATE_TRANSACTION"
	ActionCreateInvestment  ActionType = "CREATE_INVESTMENT"
	ActionCreateGoal        ActionType = "CREATE_GOAL"
	ActionAnalyzeData       ActionType = "ANALYZE_DATA"
	ActionGenerateReport    ActionType = "GENERATE_REPORT"
	ActionUnknown           ActionType = "UNKNOWN"
)

// ExecutableActions são os tipos que o Action Dispatcher executa, em ordem fixa.
var ExecutableActions = []ActionType{
	ActionCreateTransaction,
	ActionCreateInvestment,
	ActionCreateGoal,
	ActionAnalyzeData,
	ActionGenerateReport,
}

// ParseActionType converte uma string (ex: vinda do classificador) no ActionType.
// Qualquer valor fora do conjunto vira UNKNOWN.
func ParseActionType(s string) ActionType {
	switch t := ActionType(s); t {
	case ActionCreateTransaction, ActionCreateInvestment, ActionCreateGoal,
		ActionAnalyzeData, ActionGenerateReport:
		return t
	default:
		return ActionUnknown
	}
}

// Executable reports whether the Action Dispatcher has a routine for this type.
func (t ActionType) Executable() bool {
	return t != ActionUnknown && ParseActionType(string(t)) == t
}

// ============================================================
// Payloads
// ============================================================

// Payload é a interface selada implementada pelos cinco formatos de payload.
type Payload interface {
	ActionType() ActionType
}

// TransactionPayload — CREATE_TRANSACTION.
type TransactionPayload struct {
	Amount      decimal.Decimal `json:"valor"`
	Description string          `json:"descricao"`
	Kind        string          `json:"tipo"`
	Category    string          `json:"categoria"`
	Account     string          `json:"conta"`
	Date        string          `json:"data"`
}

// InvestmentPayload — CREATE_INVESTMENT.
type InvestmentPayload struct {
	Name        string          `json:"nome"`
	Amount      decimal.Decimal `json:"valor"`
	Kind        string          `json:"tipo"`
	Date        string          `json:"data"`
	Institution string          `json:"instituicao,omitempty"`
}

// GoalPayload — CREATE_GOAL.
type GoalPayload struct {
	Name         string          `json:"meta"`
	TargetAmount decimal.Decimal `json:"valor_total"`
	DueDate      string          `json:"data_conclusao"`
	Category     string          `json:"categoria"`
}

// AnalysisPayload — ANALYZE_DATA.
type AnalysisPayload struct {
	AnalysisType string `json:"analysisType,omitempty"`
	Period       string `json:"period,omitempty"`
}

// ReportPayload — GENERATE_REPORT.
type ReportPayload struct {
	ReportType string `json:"reportType,omitempty"`
	Period     string `json:"period,omitempty"`
}

// UnknownPayload é o objeto vazio de UNKNOWN.
type UnknownPayload struct{}

func (TransactionPayload) ActionType() ActionType { return ActionCreateTransaction }
func (InvestmentPayload) ActionType() ActionType  { return ActionCreateInvestment }
func (GoalPayload) ActionType() ActionType        { return ActionCreateGoal }
func (AnalysisPayload) ActionType() ActionType    { return ActionAnalyzeData }
func (ReportPayload) ActionType() ActionType      { return ActionGenerateReport }
func (UnknownPayload) ActionType() ActionType     { return ActionUnknown }

// DecodePayload decodifica o JSON cru no formato correspondente ao tipo.
// Um raw vazio ou "null" produz o payload zero daquele tipo.
func DecodePayload(t ActionType, raw json.RawMessage) (Payload, error) {
	var p Payload
	switch t {
	case ActionCreateTransaction:
		var v TransactionPayload
		if err := decodeInto(raw, &v); err != nil {
			return nil, err
		}
		p = v
	case ActionCreateInvestment:
		var v InvestmentPayload
		if err := decodeInto(raw, &v); err != nil {
			return nil, err
		}
		p = v
	case ActionCreateGoal:
		var v GoalPayload
		if err := decodeInto(raw, &v); err != nil {
			return nil, err
		}
		p = v
	case ActionAnalyzeData:
		var v AnalysisPayload
		if err := decodeInto(raw, &v); err != nil {
			return nil, err
		}
		p = v
	case ActionGenerateReport:
		var v ReportPayload
		if err := decodeInto(raw, &v); err != nil {
			return nil, err
		}
		p = v
	case ActionUnknown:
		p = UnknownPayload{}
	default:
		return nil, fmt.Errorf("unknown action type %q", t)
	}
	return p, nil
}

func decodeInto(raw json.RawMessage, v any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	return nil
}

// ============================================================
// DetectedAction
// ============================================================

// DetectedAction é o resultado da cascata. É criado uma vez por mensagem
// (ou lido do Intent Cache) e não é alterado depois; a execução produz um
// AutomatedAction separado.
type DetectedAction struct {
	Type                 ActionType `json:"type"`
	Payload              Payload    `json:"payload"`
	Confidence           float64    `json:"confidence"`
	RequiresConfirmation bool       `json:"requiresConfirmation"`
	SuccessMessage       string     `json:"successMessage"`
	ErrorMessage         string     `json:"errorMessage"`
	Response             string     `json:"response"`
	FollowUpQuestions    []string   `json:"followUpQuestions,omitempty"`
}

// UnmarshalJSON resolve o payload pelo discriminante "type".
func (a *DetectedAction) UnmarshalJSON(data []byte) error {
	var wire struct {
		Type                 string          `json:"type"`
		Payload              json.RawMessage `json:"payload"`
		Confidence           float64         `json:"confidence"`
		RequiresConfirmation bool            `json:"requiresConfirmation"`
		SuccessMessage       string          `json:"successMessage"`
		ErrorMessage         string          `json:"errorMessage"`
		Response             string          `json:"response"`
		FollowUpQuestions    []string        `json:"followUpQuestions"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	t := ParseActionType(wire.Type)
	payload, err := DecodePayload(t, wire.Payload)
	if err != nil {
		return err
	}

	*a = DetectedAction{
		Type:                 t,
		Payload:              payload,
		Confidence:           wire.Confidence,
		RequiresConfirmation: wire.RequiresConfirmation,
		SuccessMessage:       wire.SuccessMessage,
		ErrorMessage:         wire.ErrorMessage,
		Response:             wire.Response,
		FollowUpQuestions:    wire.FollowUpQuestions,
	}
	return nil
}

// Unknown builds an UNKNOWN action carrying only a conversational reply.
func Unknown(confidence float64, response string) *DetectedAction {
	return &DetectedAction{
		Type:       ActionUnknown,
		Payload:    UnknownPayload{},
		Confidence: confidence,
		Response:   response,
	}
}

// AutomatedAction é o DetectedAction acompanhado do resultado da tentativa
// de execução. Executed é nil quando nenhuma execução foi tentada.
type AutomatedAction struct {
	DetectedAction
	Executed *bool  `json:"executed,omitempty"`
	Result   any    `json:"result,omitempty"`
	Error    string `json:"error,omitempty"`
}

// UnmarshalJSON evita que o UnmarshalJSON promovido do DetectedAction
// descarte os campos de execução.
func (a *AutomatedAction) UnmarshalJSON(data []byte) error {
	if err := a.DetectedAction.UnmarshalJSON(data); err != nil {
		return err
	}
	var extra struct {
		Executed *bool `json:"executed"`
		Result   any    `json:"result"`
		Error    string `json:"error"`
	}
	if err := json.Unmarshal(data, &extra); err != nil {
		return err
	}
	a.Executed = extra.Executed
	a.Result = extra.Result
	a.Error = extra.Error
	return nil
}
