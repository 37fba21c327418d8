package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/saulomartins80/finnextho-bfa-go/internal/chat/cascade"
	chatdomain "github.com/saulomartins80/finnextho-bfa-go/internal/chat/domain"
	"github.com/saulomartins80/finnextho-bfa-go/internal/chat/matcher"
	chatmocks "github.com/saulomartins80/finnextho-bfa-go/internal/chat/port/mocks"
	"github.com/saulomartins80/finnextho-bfa-go/internal/chat/service"
	maindomain "github.com/saulomartins80/finnextho-bfa-go/internal/domain"
	"github.com/saulomartins80/finnextho-bfa-go/internal/infra/cache"
	"github.com/saulomartins80/finnextho-bfa-go/internal/infra/observability"
	"github.com/saulomartins80/finnextho-bfa-go/internal/port/mocks"
	mainservice "github.com/saulomartins80/finnextho-bfa-go/internal/service"
)

var fixedNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func nowFn() time.Time { return fixedNow }

var snapshot = &maindomain.UserSnapshot{Name: "Ana", SubscriptionPlan: "pro"}

type fixture struct {
	store   *mocks.MockFinanceStore
	replies *chatmocks.MockReplyGenerator
	conv    *cache.ConversationStore
	svc     *service.ChatService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	metrics := observability.NewMetrics()
	logger := zap.NewNop()
	store := mocks.NewMockFinanceStore(ctrl)
	store.EXPECT().GetUser(gomock.Any(), "u1").Return(&maindomain.User{ID: "u1", Name: "Ana", SubscriptionPlan: "pro"}, nil).AnyTimes()
	replies := chatmocks.NewMockReplyGenerator(ctrl)
	conv := cache.NewConversationStore(time.Minute)
	t.Cleanup(conv.Close)

	pipeline := cascade.NewPipeline(
		cascade.NewIntentCache(nil),
		[]cascade.Stage{
			cascade.FastPathStage(matcher.NewFastPath(nowFn)),
			cascade.ContextStage(matcher.NewContextMatcher(nowFn)),
		},
		nil, metrics, logger,
	)
	analysis := mainservice.NewAnalysis(store, metrics, logger, nowFn)
	dispatcher := service.NewDispatcher(service.DefaultHandlers(store, analysis, nowFn), metrics, logger)

	svc := service.NewChatService(service.Deps{
		Pipeline:        pipeline,
		Dispatcher:      dispatcher,
		Snapshots:       mainservice.NewSnapshots(store, nil, metrics, logger),
		Replies:         replies,
		Conversations:   conv,
		ConversationTTL: time.Minute,
		ReplyTimeout:    time.Second,
		Metrics:         metrics,
		Logger:          logger,
	})
	return &fixture{store: store, replies: replies, conv: conv, svc: svc}
}

func echoTransaction(_ context.Context, r *maindomain.TransactionRecord) (*maindomain.TransactionRecord, error) {
	r.ID = "tx-1"
	return r, nil
}

func TestDetect_HighConfidenceExecutes(t *testing.T) {
	f := newFixture(t)

	var saved *maindomain.TransactionRecord
	f.store.EXPECT().CreateTransaction(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, r *maindomain.TransactionRecord) (*maindomain.TransactionRecord, error) {
			saved = r
			return echoTransaction(ctx, r)
		})

	resp, err := f.svc.Detect(context.Background(), "u1", &chatdomain.DetectRequest{
		Message:     "gastei 100 reais no mercado",
		UserContext: snapshot,
	})
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.Equal(t, chatdomain.ResponseActionDetected, resp.Type)
	require.NotNil(t, resp.AutomatedAction)
	require.NotNil(t, resp.AutomatedAction.Executed)
	assert.True(t, *resp.AutomatedAction.Executed)
	assert.InDelta(t, 0.95, resp.AutomatedAction.Confidence, 1e-9)
	assert.False(t, resp.AutomatedAction.RequiresConfirmation)
	assert.Contains(t, resp.Text, "R$ 100,00")

	require.NotNil(t, saved)
	assert.Equal(t, "u1", saved.UserID)
	assert.Equal(t, "despesa", saved.Kind)
	assert.Equal(t, "Alimentação", saved.Category)
	assert.Contains(t, saved.Description, "mercado")
	assert.True(t, saved.Amount.Equal(decimal.NewFromInt(100)))
	assert.False(t, saved.CreatedAt.IsZero())
	assert.Equal(t, saved, resp.AutomatedAction.Result)
}

func TestDetect_InvalidInvestmentTypeIsNotExecuted(t *testing.T) {
	f := newFixture(t)

	resp, err := f.svc.Detect(context.Background(), "u1", &chatdomain.DetectRequest{
		Message:     "investi 1000 em moeda estrangeira",
		UserContext: snapshot,
	})
	require.NoError(t, err)

	require.NotNil(t, resp.AutomatedAction)
	require.NotNil(t, resp.AutomatedAction.Executed)
	assert.False(t, *resp.AutomatedAction.Executed)
	assert.Contains(t, resp.AutomatedAction.Error, "Tipo de investimento inválido")
	assert.Contains(t, resp.Text, "tente novamente")
	assert.True(t, resp.Success)
}

func TestDetect_PersistenceFailureIsNotExecuted(t *testing.T) {
	f := newFixture(t)
	f.store.EXPECT().CreateTransaction(gomock.Any(), gomock.Any()).
		Return(nil, &maindomain.ErrExternalService{Service: "supabase", Err: errors.New("boom")})

	resp, err := f.svc.Detect(context.Background(), "u1", &chatdomain.DetectRequest{
		Message:     "gastei 100 reais no mercado",
		UserContext: snapshot,
	})
	require.NoError(t, err)
	assert.False(t, *resp.AutomatedAction.Executed)
	assert.Equal(t, "o serviço de dados está indisponível no momento.", resp.AutomatedAction.Error)
	assert.NotContains(t, resp.Text, "boom")
}

func TestDetect_MediumConfidenceAsksConfirmation(t *testing.T) {
	f := newFixture(t)

	resp, err := f.svc.Detect(context.Background(), "u1", &chatdomain.DetectRequest{
		Message:     "gastei 100 reais",
		UserContext: snapshot,
		ChatID:      "chat-1",
	})
	require.NoError(t, err)

	assert.Equal(t, chatdomain.ResponseActionDetected, resp.Type)
	require.NotNil(t, resp.AutomatedAction)
	assert.Nil(t, resp.AutomatedAction.Executed)
	assert.True(t, resp.AutomatedAction.RequiresConfirmation)
	assert.InDelta(t, 0.8, resp.AutomatedAction.Confidence, 1e-9)
	assert.Contains(t, resp.Text, "descrição")

	conv, err := f.conv.GetConversationContext(context.Background(), "chat-1")
	require.NoError(t, err)
	require.NotNil(t, conv)
	require.NotNil(t, conv.PendingAction)
	assert.Equal(t, chatdomain.ActionCreateTransaction, conv.PendingAction.Type)
	assert.Len(t, conv.Turns, 2)
}

func TestDetect_LowConfidenceUsesReplyGenerator(t *testing.T) {
	f := newFixture(t)
	f.replies.EXPECT().Reply(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req *chatdomain.ReplyRequest) (string, error) {
			assert.Equal(t, "Ana", req.Snapshot.Name)
			assert.Contains(t, req.Hint, "vamos criar uma meta")
			return "Claro, Ana! Qual é o objetivo da meta?", nil
		})

	resp, err := f.svc.Detect(context.Background(), "u1", &chatdomain.DetectRequest{
		Message:     "quero criar uma meta",
		UserContext: snapshot,
	})
	require.NoError(t, err)

	assert.Equal(t, chatdomain.ResponseText, resp.Type)
	assert.Equal(t, "Claro, Ana! Qual é o objetivo da meta?", resp.Text)
	assert.NotEmpty(t, resp.MessageID)
	assert.Nil(t, resp.AutomatedAction)
}

func TestDetect_ReplyFailureFallsBackToStageResponse(t *testing.T) {
	f := newFixture(t)
	f.replies.EXPECT().Reply(gomock.Any(), gomock.Any()).Return("", errors.New("llm down"))

	resp, err := f.svc.Detect(context.Background(), "u1", &chatdomain.DetectRequest{
		Message:     "quero criar uma meta",
		UserContext: snapshot,
	})
	require.NoError(t, err)
	assert.Equal(t, chatdomain.ResponseText, resp.Type)
	assert.Equal(t, "Legal, vamos criar uma meta! Qual é o objetivo e qual valor você quer juntar?", resp.Text)
}

func TestDetect_NoMatchFallsBackToGreeting(t *testing.T) {
	f := newFixture(t)
	f.replies.EXPECT().Reply(gomock.Any(), gomock.Any()).Return("", errors.New("llm down"))

	resp, err := f.svc.Detect(context.Background(), "u1", &chatdomain.DetectRequest{
		Message:     "qual a capital da frança",
		UserContext: snapshot,
	})
	require.NoError(t, err)
	assert.Equal(t, chatdomain.ResponseText, resp.Type)
	assert.Equal(t, cascade.DefaultResponse, resp.Text)
}

func TestDetect_GreetingIsCanned(t *testing.T) {
	f := newFixture(t)

	resp, err := f.svc.Detect(context.Background(), "u1", &chatdomain.DetectRequest{
		Message:     "bom dia",
		UserContext: snapshot,
	})
	require.NoError(t, err)
	assert.Equal(t, chatdomain.ResponseText, resp.Type)
	assert.Contains(t, resp.Text, "assistente financeiro")
}

func TestDetect_UsesStoredTurnsForContext(t *testing.T) {
	f := newFixture(t)
	f.replies.EXPECT().Reply(gomock.Any(), gomock.Any()).Return("Claro! Qual o valor?", nil)

	_, err := f.svc.Detect(context.Background(), "u1", &chatdomain.DetectRequest{
		Message:     "quero registrar uma transação",
		UserContext: snapshot,
		ChatID:      "chat-2",
	})
	require.NoError(t, err)

	resp, err := f.svc.Detect(context.Background(), "u1", &chatdomain.DetectRequest{
		Message:     "o valor é 250 reais e é uma despesa",
		UserContext: snapshot,
		ChatID:      "chat-2",
	})
	require.NoError(t, err)

	require.NotNil(t, resp.AutomatedAction)
	tx, ok := resp.AutomatedAction.Payload.(chatdomain.TransactionPayload)
	require.True(t, ok)
	assert.Equal(t, "despesa", tx.Kind)
	assert.True(t, tx.Amount.Equal(decimal.NewFromInt(250)))
	assert.InDelta(t, 0.8, resp.AutomatedAction.Confidence, 1e-9)
}

func TestDetect_ConversationOfAnotherUserIsIgnored(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.conv.SetConversationContext(context.Background(), "chat-x", &chatdomain.ConversationContext{
		UserID: "someone-else",
		Turns:  []chatdomain.ConversationTurn{{Sender: chatdomain.SenderUser, Content: "gastei muito"}},
	}, time.Minute))
	f.replies.EXPECT().Reply(gomock.Any(), gomock.Any()).Return("Pode repetir?", nil)

	resp, err := f.svc.Detect(context.Background(), "u1", &chatdomain.DetectRequest{
		Message:     "o valor é 250 reais",
		UserContext: snapshot,
		ChatID:      "chat-x",
	})
	require.NoError(t, err)
	assert.Equal(t, chatdomain.ResponseText, resp.Type)
}

func TestDetect_BuildsSnapshotWhenMissing(t *testing.T) {
	f := newFixture(t)
	f.store.EXPECT().GetUser(gomock.Any(), "ghost").Return(nil, &maindomain.ErrNotFound{Resource: "user", ID: "ghost"})

	_, err := f.svc.Detect(context.Background(), "ghost", &chatdomain.DetectRequest{Message: "bom dia"})

	var nf *maindomain.ErrNotFound
	require.ErrorAs(t, err, &nf)
}

func TestDetect_SuppliedSnapshotStillRequiresUser(t *testing.T) {
	f := newFixture(t)
	f.store.EXPECT().GetUser(gomock.Any(), "ghost").Return(nil, &maindomain.ErrNotFound{Resource: "user", ID: "ghost"})

	_, err := f.svc.Detect(context.Background(), "ghost", &chatdomain.DetectRequest{
		Message:     "gastei 100 reais no mercado",
		UserContext: snapshot,
	})

	var nf *maindomain.ErrNotFound
	require.ErrorAs(t, err, &nf)
}

func TestConfirm_UnknownUser(t *testing.T) {
	f := newFixture(t)
	f.store.EXPECT().GetUser(gomock.Any(), "ghost").Return(nil, &maindomain.ErrNotFound{Resource: "user", ID: "ghost"})

	_, err := f.svc.Confirm(context.Background(), "ghost", &chatdomain.ConfirmRequest{
		Action:  chatdomain.ActionCreateTransaction,
		Payload: json.RawMessage(`{"valor":100,"descricao":"mercado","tipo":"despesa"}`),
	})

	var nf *maindomain.ErrNotFound
	require.ErrorAs(t, err, &nf)
}

func TestDetect_EmptyMessage(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Detect(context.Background(), "u1", &chatdomain.DetectRequest{Message: "   "})

	var v *maindomain.ErrValidation
	require.ErrorAs(t, err, &v)
	assert.Equal(t, "message", v.Field)
}

func TestDetect_AnalysisRunsReadOnlyAggregation(t *testing.T) {
	f := newFixture(t)
	f.store.EXPECT().ListTransactions(gomock.Any(), "u1").Return([]maindomain.TransactionRecord{
		{Amount: decimal.NewFromInt(1000), Kind: maindomain.KindIncome, Date: "2025-03-01"},
		{Amount: decimal.NewFromInt(300), Kind: maindomain.KindExpense, Category: "Moradia", Date: "2025-03-02"},
	}, nil)
	f.store.EXPECT().ListInvestments(gomock.Any(), "u1").Return(nil, nil)
	f.store.EXPECT().ListGoals(gomock.Any(), "u1").Return(nil, nil)

	resp, err := f.svc.Detect(context.Background(), "u1", &chatdomain.DetectRequest{
		Message:     "como estão minhas finanças?",
		UserContext: snapshot,
	})
	require.NoError(t, err)

	require.NotNil(t, resp.AutomatedAction)
	assert.True(t, *resp.AutomatedAction.Executed)
	analysis, ok := resp.AutomatedAction.Result.(*maindomain.FinancialAnalysis)
	require.True(t, ok)
	assert.True(t, analysis.Balance.Equal(decimal.NewFromInt(700)))
	assert.Contains(t, resp.Text, "saldo R$ 700,00")
}

func TestConfirm_MissingFields(t *testing.T) {
	f := newFixture(t)

	resp, err := f.svc.Confirm(context.Background(), "u1", &chatdomain.ConfirmRequest{
		Action:  chatdomain.ActionCreateGoal,
		Payload: json.RawMessage(`{}`),
	})
	require.NoError(t, err)

	assert.False(t, resp.Success)
	assert.True(t, resp.RequiresConfirmation)
	assert.Equal(t, []string{"valor_total", "meta"}, resp.MissingFields)
}

func TestConfirm_MergesPendingAction(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Detect(context.Background(), "u1", &chatdomain.DetectRequest{
		Message:     "gastei 100 reais",
		UserContext: snapshot,
		ChatID:      "chat-3",
	})
	require.NoError(t, err)

	var saved *maindomain.TransactionRecord
	f.store.EXPECT().CreateTransaction(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, r *maindomain.TransactionRecord) (*maindomain.TransactionRecord, error) {
			saved = r
			return echoTransaction(ctx, r)
		})

	resp, err := f.svc.Confirm(context.Background(), "u1", &chatdomain.ConfirmRequest{
		Action:  chatdomain.ActionCreateTransaction,
		Payload: json.RawMessage(`{"descricao":"padaria"}`),
		ChatID:  "chat-3",
	})
	require.NoError(t, err)

	assert.True(t, resp.Success)
	require.NotNil(t, saved)
	assert.True(t, saved.Amount.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, "padaria", saved.Description)
	assert.Equal(t, "despesa", saved.Kind)
	assert.Equal(t, "Alimentação", saved.Category)

	conv, err := f.conv.GetConversationContext(context.Background(), "chat-3")
	require.NoError(t, err)
	assert.Nil(t, conv.PendingAction)
}

func TestConfirm_GoalDefaults(t *testing.T) {
	f := newFixture(t)

	var saved *maindomain.GoalRecord
	f.store.EXPECT().CreateGoal(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, g *maindomain.GoalRecord) (*maindomain.GoalRecord, error) {
			saved = g
			return g, nil
		})

	resp, err := f.svc.Confirm(context.Background(), "u1", &chatdomain.ConfirmRequest{
		Action:  chatdomain.ActionCreateGoal,
		Payload: json.RawMessage(`{"meta":"viagem","valor_total":6000,"data_conclusao":"final do ano"}`),
	})
	require.NoError(t, err)
	assert.True(t, resp.Success)

	require.NotNil(t, saved)
	assert.True(t, saved.CurrentAmount.IsZero())
	assert.Equal(t, maindomain.DefaultGoalPriority, saved.Priority)
	assert.Equal(t, "2025-12-31", saved.DueDate)
	assert.Equal(t, "Viagem", saved.Category)
}

func TestConfirm_ValidationErrorIsReported(t *testing.T) {
	f := newFixture(t)

	resp, err := f.svc.Confirm(context.Background(), "u1", &chatdomain.ConfirmRequest{
		Action:  chatdomain.ActionCreateInvestment,
		Payload: json.RawMessage(`{"nome":"dólar","valor":500,"tipo":"moeda estrangeira"}`),
	})
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "Tipo de investimento inválido")
}

func TestConfirm_UnknownAction(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Confirm(context.Background(), "u1", &chatdomain.ConfirmRequest{Action: chatdomain.ActionUnknown})

	var v *maindomain.ErrValidation
	require.ErrorAs(t, err, &v)
	assert.Equal(t, "action", v.Field)
}
