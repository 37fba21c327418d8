package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	chatdomain "github.com/saulomartins80/finnextho-bfa-go/internal/chat/domain"
	chathandler "github.com/saulomartins80/finnextho-bfa-go/internal/chat/handler"
	"github.com/saulomartins80/finnextho-bfa-go/internal/domain"
	"github.com/saulomartins80/finnextho-bfa-go/internal/infra/observability"
	"github.com/saulomartins80/finnextho-bfa-go/internal/service"
)

var tracer = otel.Tracer("handler")

// Pinger is a backend the health check can probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// healthTimeout bounds each backend probe in /healthz.
const healthTimeout = 2 * time.Second

// NewRouter creates the HTTP router with all routes and middleware.
// chatSvc and tokens may be nil (chat routes then answer 503); store may be nil.
func NewRouter(chatSvc chathandler.ChatService, tokens *service.Tokens, store Pinger, metrics *observability.Metrics, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(store, logger))
	r.Get("/readyz", readyzHandler(chatSvc != nil))
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {

		// =============================================
		// 1. 📊 Métricas do chat
		// GET /v1/metrics/chat
		// =============================================
		r.Get("/metrics/chat", chatMetricsHandler(metrics))

		// =============================================
		// 2. 💬 Chat financeiro (protegido)
		// POST /v1/chat/detect
		// POST /v1/chat/actions/confirm
		// =============================================
		r.Route("/chat", func(r chi.Router) {
			if chatSvc == nil || tokens == nil {
				r.Handle("/*", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					writeError(w, http.StatusServiceUnavailable, "chat service unavailable")
				}))
				return
			}
			r.Use(JWTAuthMiddleware(tokens, logger))
			r.Post("/detect", chathandler.DetectHandler(chatSvc, UserIDFromContext, logger))
			r.Post("/actions/confirm", chathandler.ConfirmHandler(chatSvc, UserIDFromContext, logger))
		})
	})

	return r
}

// ============================================================
// Métricas & Health
// ============================================================

func healthzHandler(store Pinger, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /healthz")
		defer span.End()
		now := time.Now().Format(time.RFC3339)

		services := []domain.ServiceHealth{
			{Name: "bfa-api", Status: "healthy", LatencyMs: 0, LastChecked: now},
		}

		if store != nil {
			pingCtx, cancel := context.WithTimeout(ctx, healthTimeout)
			start := time.Now()
			err := store.Ping(pingCtx)
			cancel()
			status := "healthy"
			if err != nil {
				logger.Warn("health: store ping failed", zap.Error(err))
				status = "degraded"
			}
			services = append(services, domain.ServiceHealth{
				Name: "store", Status: status, LatencyMs: time.Since(start).Milliseconds(), LastChecked: now,
			})
		}

		overallStatus := "healthy"
		for _, s := range services {
			if s.Status == "unhealthy" {
				overallStatus = "unhealthy"
				break
			}
			if s.Status == "degraded" {
				overallStatus = "degraded"
			}
		}

		writeJSON(w, http.StatusOK, domain.HealthStatus{
			Status:   overallStatus,
			Services: services,
		})
	}
}

func chatMetricsHandler(metrics *observability.Metrics) http.HandlerFunc {
	actions := make([]string, len(chatdomain.ExecutableActions))
	for i, a := range chatdomain.ExecutableActions {
		actions[i] = string(a)
	}
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, metrics.GetChatSnapshot(actions))
	}
}

// ============================================================
// Probes
// ============================================================

func readyzHandler(chatReady bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !chatReady {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
