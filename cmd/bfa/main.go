package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/saulomartins80/finnextho-bfa-go/internal/chat/cascade"
	chatinfra "github.com/saulomartins80/finnextho-bfa-go/internal/chat/infra"
	"github.com/saulomartins80/finnextho-bfa-go/internal/chat/matcher"
	chatport "github.com/saulomartins80/finnextho-bfa-go/internal/chat/port"
	chatservice "github.com/saulomartins80/finnextho-bfa-go/internal/chat/service"
	"github.com/saulomartins80/finnextho-bfa-go/internal/config"
	"github.com/saulomartins80/finnextho-bfa-go/internal/domain"
	"github.com/saulomartins80/finnextho-bfa-go/internal/handler"
	"github.com/saulomartins80/finnextho-bfa-go/internal/infra/cache"
	"github.com/saulomartins80/finnextho-bfa-go/internal/infra/observability"
	"github.com/saulomartins80/finnextho-bfa-go/internal/infra/resilience"
	"github.com/saulomartins80/finnextho-bfa-go/internal/infra/sqlite"
	"github.com/saulomartins80/finnextho-bfa-go/internal/infra/supabase"
	"github.com/saulomartins80/finnextho-bfa-go/internal/port"
	"github.com/saulomartins80/finnextho-bfa-go/internal/service"
)

// store is what the API needs from the persistence backend.
type store interface {
	port.FinanceStore
	handler.Pinger
}

// classifier is a semantic classifier that can also hold a conversation.
type classifier interface {
	chatport.SemanticClassifier
	chatport.ReplyGenerator
}

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.String("store_backend", cfg.StoreBackend),
		zap.String("classifier_provider", cfg.ClassifierProvider),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("classifier_timeout", cfg.ClassifierTimeout),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
		zap.Duration("conversation_ttl", cfg.ConversationTTL),
		zap.Duration("jwt_access_ttl", cfg.JWTAccessTTL),
	)

	// --- Tracing ---
	endpoint := ""
	if cfg.TracingEnabled {
		endpoint = cfg.OTLPEndpoint
	}
	shutdown, err := observability.InitTracer(endpoint, "finnextho-bfa")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Resilience ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}

	// --- Store ---
	ctx := context.Background()
	st, closeStore, err := openStore(ctx, cfg, resilienceCfg, logger)
	if err != nil {
		logger.Fatal("failed to open store", zap.Error(err))
	}
	defer closeStore()

	// --- Semantic classifier ---
	cls, err := newClassifier(ctx, cfg, resilienceCfg, logger)
	if err != nil {
		logger.Fatal("failed to create classifier", zap.Error(err))
	}

	// --- Caches ---
	userCache := cache.New[*domain.User](5 * time.Minute)
	defer userCache.Close()
	conversations := cache.NewConversationStore(cfg.ConversationTTL)
	defer conversations.Close()

	// --- Cascade ---
	stages := []cascade.Stage{
		cascade.FastPathStage(matcher.NewFastPath(nil)),
		cascade.ContextStage(matcher.NewContextMatcher(nil)),
	}
	var replies chatport.ReplyGenerator
	if cls != nil {
		stages = append(stages, cascade.NewSemanticStage(cls, cfg.ClassifierTimeout, cfg.HistoryWindow, nil, metrics, logger))
		replies = cls
	}
	pipeline := cascade.NewPipeline(cascade.NewIntentCache(nil), stages, nil, metrics, logger)

	// --- Services ---
	analysis := service.NewAnalysis(st, metrics, logger, nil)
	chatSvc := chatservice.NewChatService(chatservice.Deps{
		Pipeline:        pipeline,
		Dispatcher:      chatservice.NewDispatcher(chatservice.DefaultHandlers(st, analysis, nil), metrics, logger),
		Snapshots:       service.NewSnapshots(st, userCache, metrics, logger),
		Replies:         replies,
		Conversations:   conversations,
		ConversationTTL: cfg.ConversationTTL,
		ReplyTimeout:    cfg.ClassifierTimeout,
		HistoryWindow:   cfg.HistoryWindow,
		Metrics:         metrics,
		Logger:          logger,
	})
	tokens := service.NewTokens(cfg.JWTSecret, cfg.JWTAccessTTL)

	// --- Router ---
	router := handler.NewRouter(chatSvc, tokens, st, metrics, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced shutdown", zap.Error(err))
		return
	}

	logger.Info("server stopped")
}

func openStore(ctx context.Context, cfg *config.Config, rc resilience.Config, logger *zap.Logger) (store, func(), error) {
	switch cfg.StoreBackend {
	case "supabase":
		if cfg.SupabaseURL == "" {
			return nil, nil, errors.New("STORE_BACKEND=supabase requires SUPABASE_URL")
		}
		logger.Info("using Supabase as data backend", zap.String("supabase_url", cfg.SupabaseURL))
		client := supabase.NewClient(
			&http.Client{Timeout: cfg.HTTPTimeout},
			cfg.SupabaseURL,
			cfg.SupabaseAnonKey,
			cfg.SupabaseServiceKey,
			resilience.NewCircuitBreaker("supabase", logger),
			rc,
			logger,
		)
		return client, func() {}, nil
	case "sqlite", "":
		logger.Info("using SQLite as data backend", zap.String("path", cfg.SQLitePath))
		db, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return db, func() {
			if err := db.Close(); err != nil {
				logger.Warn("sqlite close failed", zap.Error(err))
			}
		}, nil
	default:
		return nil, nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}
}

// newClassifier returns nil when the provider is "none": the cascade then
// stops at the deterministic stages and conversation falls back to canned text.
func newClassifier(ctx context.Context, cfg *config.Config, rc resilience.Config, logger *zap.Logger) (classifier, error) {
	mc := chatinfra.ModelConfig{
		APIKey:    cfg.LLMAPIKey,
		BaseURL:   cfg.LLMBaseURL,
		Model:     cfg.LLMModel,
		MaxTokens: cfg.LLMMaxTokens,
		Timeout:   cfg.ClassifierTimeout,
	}
	cb := resilience.NewCircuitBreaker(cfg.ClassifierProvider, logger)

	switch cfg.ClassifierProvider {
	case "agent":
		logger.Info("semantic classifier: chat agent", zap.String("url", cfg.ChatAgentURL))
		return chatinfra.NewAgentClient(cfg.ChatAgentURL, cfg.ClassifierTimeout, cb, rc), nil
	case "openai":
		m, err := chatinfra.NewOpenAIModel(ctx, mc)
		if err != nil {
			return nil, err
		}
		logger.Info("semantic classifier: openai", zap.String("model", cfg.LLMModel))
		return chatinfra.NewLLMClassifier(m, "openai", cb, rc), nil
	case "deepseek":
		m, err := chatinfra.NewDeepSeekModel(ctx, mc)
		if err != nil {
			return nil, err
		}
		logger.Info("semantic classifier: deepseek", zap.String("model", cfg.LLMModel))
		return chatinfra.NewLLMClassifier(m, "deepseek", cb, rc), nil
	case "none", "":
		logger.Warn("semantic classifier disabled, cascade stops at the deterministic stages")
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown CLASSIFIER_PROVIDER %q", cfg.ClassifierProvider)
	}
}
