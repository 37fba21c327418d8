package observability_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/saulomartins80/finnextho-bfa-go/internal/infra/observability"
)

func TestNewLogger_Levels(t *testing.T) {
	tests := []struct {
		level string
		want  zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"loud", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logger := observability.NewLogger(tt.level)
			assert.True(t, logger.Core().Enabled(tt.want))
			if tt.want > zapcore.DebugLevel {
				assert.False(t, logger.Core().Enabled(tt.want-1))
			}
		})
	}
}

func TestZapLoggerMiddleware(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	r := chi.NewRouter()
	r.Use(observability.ZapLoggerMiddleware(zap.New(core)))
	r.Get("/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/boom", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {})

	for _, path := range []string{"/items/7", "/boom", "/missing", "/ping"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	entries := logs.All()
	require.Len(t, entries, 3)

	ok := entries[0].ContextMap()
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, "/items/{id}", ok["route"])
	assert.Equal(t, int64(2), ok["bytes"])

	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[2].Level)
	assert.Equal(t, int64(http.StatusNotFound), entries[2].ContextMap()["status"])
}

func TestChatSnapshot_Rates(t *testing.T) {
	m := observability.NewMetrics()
	m.IncrCacheHit("intent")
	m.IncrCacheMiss("intent")
	m.IncrCacheMiss("intent")
	m.IncrCacheMiss("intent")
	m.IncrClassifierCall("success")
	m.IncrClassifierCall("error")
	m.RecordTokens(30, 10)
	m.IncrGateOutcome("canned")
	m.IncrDispatch("CREATE_TRANSACTION", "error")

	snap := m.GetChatSnapshot([]string{"CREATE_TRANSACTION", "CREATE_GOAL"})

	assert.InDelta(t, 0.25, snap.IntentCacheHitRate, 1e-9)
	assert.InDelta(t, 0.5, snap.ClassifierErrorRate, 1e-9)
	assert.InDelta(t, 20.0, snap.AvgTokensPerCall, 1e-9)
	assert.Equal(t, int64(1), snap.GateOutcomes["canned"])
	assert.Equal(t, 1.0, snap.DispatchFailureRate["CREATE_TRANSACTION"])
	assert.Equal(t, 0.0, snap.DispatchFailureRate["CREATE_GOAL"])
	assert.Equal(t, "all_time", snap.Period)
}
