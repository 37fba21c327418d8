package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/saulomartins80/finnextho-bfa-go/internal/chat/cascade"
	chatdomain "github.com/saulomartins80/finnextho-bfa-go/internal/chat/domain"
	chatinfra "github.com/saulomartins80/finnextho-bfa-go/internal/chat/infra"
	"github.com/saulomartins80/finnextho-bfa-go/internal/chat/matcher"
	chatservice "github.com/saulomartins80/finnextho-bfa-go/internal/chat/service"
	"github.com/saulomartins80/finnextho-bfa-go/internal/domain"
	"github.com/saulomartins80/finnextho-bfa-go/internal/handler"
	"github.com/saulomartins80/finnextho-bfa-go/internal/infra/cache"
	"github.com/saulomartins80/finnextho-bfa-go/internal/infra/observability"
	"github.com/saulomartins80/finnextho-bfa-go/internal/infra/resilience"
	"github.com/saulomartins80/finnextho-bfa-go/internal/infra/sqlite"
	"github.com/saulomartins80/finnextho-bfa-go/internal/service"
)

// stack is the whole API wired the way cmd/bfa does it, with the chat agent
// replaced by an httptest server.
type stack struct {
	router http.Handler
	store  *sqlite.Store
	tokens *service.Tokens
	token  string
}

func newStack(t *testing.T, agent http.HandlerFunc) *stack {
	t.Helper()
	ctx := context.Background()
	logger := zap.NewNop()
	metrics := observability.NewMetrics()

	store, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "bfa.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.UpsertUser(ctx, &domain.User{ID: "u1", Name: "Ana"}))

	srv := httptest.NewServer(agent)
	t.Cleanup(srv.Close)
	cfg := resilience.Config{MaxRetries: 1, InitialBackoff: time.Millisecond, MaxConcurrency: 4}
	client := chatinfra.NewAgentClient(srv.URL, time.Second, resilience.NewCircuitBreaker("agent-"+t.Name(), logger), cfg)

	conversations := cache.NewConversationStore(time.Minute)
	t.Cleanup(conversations.Close)

	pipeline := cascade.NewPipeline(
		cascade.NewIntentCache(nil),
		[]cascade.Stage{
			cascade.FastPathStage(matcher.NewFastPath(nil)),
			cascade.ContextStage(matcher.NewContextMatcher(nil)),
			cascade.NewSemanticStage(client, time.Second, matcher.ContextWindow, nil, metrics, logger),
		},
		nil, metrics, logger,
	)
	analysis := service.NewAnalysis(store, metrics, logger, nil)
	chatSvc := chatservice.NewChatService(chatservice.Deps{
		Pipeline:        pipeline,
		Dispatcher:      chatservice.NewDispatcher(chatservice.DefaultHandlers(store, analysis, nil), metrics, logger),
		Snapshots:       service.NewSnapshots(store, cache.New[*domain.User](time.Minute), metrics, logger),
		Replies:         client,
		Conversations:   conversations,
		ConversationTTL: time.Minute,
		ReplyTimeout:    time.Second,
		Metrics:         metrics,
		Logger:          logger,
	})

	tokens := service.NewTokens("integration-secret", time.Minute)
	token, err := tokens.Issue("u1")
	require.NoError(t, err)

	return &stack{
		router: handler.NewRouter(chatSvc, tokens, store, metrics, logger),
		store:  store,
		tokens: tokens,
		token:  token,
	}
}

func (s *stack) post(t *testing.T, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func TestIntegration_ExpenseIsPersisted(t *testing.T) {
	s := newStack(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("agent should not be called, got %s", r.URL.Path)
	})

	rec := s.post(t, "/v1/chat/detect", chatdomain.DetectRequest{Message: "gastei 100 reais no mercado"})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp chatdomain.DetectResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, chatdomain.ResponseActionDetected, resp.Type)
	assert.NotEmpty(t, resp.MessageID)
	require.NotNil(t, resp.AutomatedAction)
	assert.Equal(t, chatdomain.ActionCreateTransaction, resp.AutomatedAction.Type)
	require.NotNil(t, resp.AutomatedAction.Executed)
	assert.True(t, *resp.AutomatedAction.Executed)

	rows, err := s.store.ListTransactions(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "100", rows[0].Amount.String())
	assert.Contains(t, rows[0].Description, "mercado")
	assert.Equal(t, domain.KindExpense, rows[0].Kind)
}

func TestIntegration_UnrecognizedMessageGoesToAgent(t *testing.T) {
	var classified, replied atomic.Bool
	s := newStack(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/v1/classify":
			classified.Store(true)
			_, _ = w.Write([]byte(`{"intent":"UNKNOWN","entities":{},"confidence":0.3,"response":"Pode explicar melhor?"}`))
		case "/v1/chat":
			replied.Store(true)
			var req chatdomain.ReplyRequest
			if assert.NoError(t, json.NewDecoder(r.Body).Decode(&req)) && assert.NotNil(t, req.Snapshot) {
				assert.Equal(t, "u1", req.UserID)
				assert.Equal(t, "Ana", req.Snapshot.Name)
			}
			_, _ = w.Write([]byte(`{"answer":"Não acompanho cotações, mas posso analisar seus gastos.","tokens_used":30}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	rec := s.post(t, "/v1/chat/detect", chatdomain.DetectRequest{Message: "qual a cotação do dólar?"})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp chatdomain.DetectResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, classified.Load())
	assert.True(t, replied.Load())
	assert.Equal(t, chatdomain.ResponseText, resp.Type)
	assert.Equal(t, "Não acompanho cotações, mas posso analisar seus gastos.", resp.Text)
	assert.Nil(t, resp.AutomatedAction)
}

func TestIntegration_AgentDownFallsBackToStageResponse(t *testing.T) {
	s := newStack(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	rec := s.post(t, "/v1/chat/detect", chatdomain.DetectRequest{Message: "qual a cotação do dólar?"})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp chatdomain.DetectResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, chatdomain.ResponseText, resp.Type)
	assert.Equal(t, cascade.DefaultResponse, resp.Text)
}

func TestIntegration_ConfirmReportsMissingFields(t *testing.T) {
	s := newStack(t, func(w http.ResponseWriter, r *http.Request) {})

	rec := s.post(t, "/v1/chat/actions/confirm", map[string]any{
		"action":  "CREATE_GOAL",
		"payload": map[string]any{"meta": "viagem"},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp chatdomain.ConfirmResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.True(t, resp.RequiresConfirmation)
	assert.Equal(t, []string{"valor_total"}, resp.MissingFields)

	goals, err := s.store.ListGoals(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, goals)
}

func TestIntegration_ConfirmCreatesGoal(t *testing.T) {
	s := newStack(t, func(w http.ResponseWriter, r *http.Request) {})

	rec := s.post(t, "/v1/chat/actions/confirm", map[string]any{
		"action":  "CREATE_GOAL",
		"payload": map[string]any{"meta": "viagem", "valor_total": 6000, "data_conclusao": "2027-12-31"},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp chatdomain.ConfirmResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)

	goals, err := s.store.ListGoals(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, goals, 1)
	assert.Equal(t, "viagem", goals[0].Name)
}

func TestIntegration_ChatMetricsAfterTraffic(t *testing.T) {
	s := newStack(t, func(w http.ResponseWriter, r *http.Request) {})

	s.post(t, "/v1/chat/detect", chatdomain.DetectRequest{Message: "gastei 50 reais no uber"})
	s.post(t, "/v1/chat/detect", chatdomain.DetectRequest{Message: "gastei 50 reais no uber"})

	rec := get(t, s.router, "/v1/metrics/chat")
	require.Equal(t, http.StatusOK, rec.Code)
	var snap domain.ChatMetrics
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))

	assert.Equal(t, int64(2), snap.TotalRequests)
	assert.Equal(t, int64(1), snap.StageHits[cascade.StageFastPath])
	assert.Equal(t, int64(1), snap.StageHits[cascade.StageCache])
	assert.Equal(t, int64(2), snap.GateOutcomes[chatservice.OutcomeExecuted])
	assert.InDelta(t, 0.5, snap.IntentCacheHitRate, 1e-9)
	assert.Zero(t, snap.DispatchFailureRate[string(chatdomain.ActionCreateTransaction)])
}

func TestIntegration_DeletedUserWithSnapshotIsNotFound(t *testing.T) {
	s := newStack(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("agent should not be called, got %s", r.URL.Path)
	})
	ghost, err := s.tokens.Issue("ghost")
	require.NoError(t, err)
	s.token = ghost

	rec := s.post(t, "/v1/chat/detect", chatdomain.DetectRequest{
		Message:     "gastei 100 reais no mercado",
		UserContext: &domain.UserSnapshot{Name: "Fantasma", SubscriptionPlan: "pro"},
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rows, err := s.store.ListTransactions(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Empty(t, rows)
}
