package service_test

import (
	"context"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	chatdomain "github.com/saulomartins80/finnextho-bfa-go/internal/chat/domain"
	"github.com/saulomartins80/finnextho-bfa-go/internal/chat/service"
	maindomain "github.com/saulomartins80/finnextho-bfa-go/internal/domain"
	"github.com/saulomartins80/finnextho-bfa-go/internal/infra/observability"
	"github.com/saulomartins80/finnextho-bfa-go/internal/port/mocks"
	mainservice "github.com/saulomartins80/finnextho-bfa-go/internal/service"
)

func newDispatcher(t *testing.T) (*service.Dispatcher, *mocks.MockFinanceStore) {
	t.Helper()
	ctrl := gomock.NewController(t)
	store := mocks.NewMockFinanceStore(ctrl)
	metrics := observability.NewMetrics()
	analysis := mainservice.NewAnalysis(store, metrics, zap.NewNop(), nowFn)
	return service.NewDispatcher(service.DefaultHandlers(store, analysis, nowFn), metrics, zap.NewNop()), store
}

func TestDispatcher_RejectsUnknown(t *testing.T) {
	d, _ := newDispatcher(t)

	_, err := d.Execute(context.Background(), "u1", chatdomain.ActionUnknown, chatdomain.UnknownPayload{})

	var v *maindomain.ErrValidation
	require.ErrorAs(t, err, &v)
}

func TestDispatcher_RejectsMismatchedPayload(t *testing.T) {
	d, _ := newDispatcher(t)

	_, err := d.Execute(context.Background(), "u1", chatdomain.ActionCreateGoal, chatdomain.TransactionPayload{})

	var v *maindomain.ErrValidation
	require.ErrorAs(t, err, &v)
}

func TestDispatcher_IncompletePayloadNeverReachesStore(t *testing.T) {
	d, _ := newDispatcher(t)

	_, err := d.Execute(context.Background(), "u1", chatdomain.ActionCreateTransaction, chatdomain.TransactionPayload{
		Amount: decimal.NewFromInt(10),
		Kind:   "despesa",
	})

	var missing *maindomain.ErrMissingFields
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{"descricao"}, missing.Fields)
}

func TestDispatcher_TransactionKeepsExplicitCategory(t *testing.T) {
	d, store := newDispatcher(t)

	var saved *maindomain.TransactionRecord
	store.EXPECT().CreateTransaction(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, r *maindomain.TransactionRecord) (*maindomain.TransactionRecord, error) {
			saved = r
			return r, nil
		})

	_, err := d.Execute(context.Background(), "u1", chatdomain.ActionCreateTransaction, chatdomain.TransactionPayload{
		Amount:      decimal.NewFromInt(30),
		Description: "padaria",
		Kind:        "despesa",
		Category:    "Outros",
	})
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, "Outros", saved.Category)
	assert.Equal(t, "padaria", saved.Description)
}

func TestDispatcher_InvestmentNormalizesType(t *testing.T) {
	d, store := newDispatcher(t)

	var saved *maindomain.InvestmentRecord
	store.EXPECT().CreateInvestment(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, r *maindomain.InvestmentRecord) (*maindomain.InvestmentRecord, error) {
			saved = r
			return r, nil
		})

	out, err := d.Execute(context.Background(), "u1", chatdomain.ActionCreateInvestment, chatdomain.InvestmentPayload{
		Name:   "bitcoin",
		Amount: decimal.NewFromInt(200),
		Kind:   "cripto",
	})
	require.NoError(t, err)
	assert.Equal(t, "Criptomoedas", saved.Kind)
	assert.Equal(t, "2025-03-10", saved.Date)
	assert.Contains(t, out.Message, "R$ 200,00")
}

func TestDispatcher_InvestmentBelowMinimum(t *testing.T) {
	d, _ := newDispatcher(t)

	_, err := d.Execute(context.Background(), "u1", chatdomain.ActionCreateInvestment, chatdomain.InvestmentPayload{
		Name:   "cdb banco x",
		Amount: decimal.RequireFromString("0.001"),
		Kind:   "CDB",
	})

	var v *maindomain.ErrValidation
	require.ErrorAs(t, err, &v)
	assert.Equal(t, "valor", v.Field)
}

func TestDispatcher_ReportWrapsAnalysis(t *testing.T) {
	d, store := newDispatcher(t)
	store.EXPECT().ListTransactions(gomock.Any(), "u1").Return(nil, nil)
	store.EXPECT().ListInvestments(gomock.Any(), "u1").Return(nil, nil)
	store.EXPECT().ListGoals(gomock.Any(), "u1").Return(nil, nil)

	out, err := d.Execute(context.Background(), "u1", chatdomain.ActionGenerateReport, chatdomain.ReportPayload{ReportType: "geral"})
	require.NoError(t, err)

	report, ok := out.Result.(*maindomain.FinancialReport)
	require.True(t, ok)
	assert.NotEmpty(t, report.ID)
	assert.Equal(t, fixedNow, report.GeneratedAt)
	assert.Equal(t, 0, report.Analysis.TransactionCount)
}
