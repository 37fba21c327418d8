package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"

	"github.com/saulomartins80/finnextho-bfa-go/internal/domain"
)

// Cascade stages and gate outcomes used as label values.
var (
	Stages       = []string{"cache", "fast_path", "context", "semantic", "default"}
	GateOutcomes = []string{"executed", "execution_failed", "confirmation", "conversation", "canned"}
)

// Metrics holds all Prometheus metrics for the BFA.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	externalErrors  *prometheus.CounterVec
	cacheHits       *prometheus.CounterVec
	cacheMisses     *prometheus.CounterVec
	tokensUsed      *prometheus.CounterVec
	requestsTotal   *prometheus.CounterVec
	stageHits       *prometheus.CounterVec
	gateOutcomes    *prometheus.CounterVec
	dispatchTotal   *prometheus.CounterVec
	classifierCalls *prometheus.CounterVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bfa_request_duration_seconds",
				Help:    "Duration of requests by operation.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		externalErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bfa_external_errors_total",
				Help: "Total errors from external services.",
			},
			[]string{"service"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bfa_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bfa_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
		tokensUsed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bfa_llm_tokens_total",
				Help: "Total LLM tokens consumed.",
			},
			[]string{"type"},
		),
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bfa_chat_requests_total",
				Help: "Total chat detect requests processed.",
			},
			[]string{"status"},
		),
		stageHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bfa_cascade_stage_total",
				Help: "Cascade stage that produced the detected action.",
			},
			[]string{"stage"},
		),
		gateOutcomes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bfa_confidence_gate_total",
				Help: "Confidence gate decisions.",
			},
			[]string{"outcome"},
		),
		dispatchTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bfa_action_dispatch_total",
				Help: "Action dispatcher executions by action type and status.",
			},
			[]string{"action", "status"},
		),
		classifierCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bfa_classifier_calls_total",
				Help: "Semantic classifier calls by status.",
			},
			[]string{"status"},
		),
	}
}

// RecordRequestDuration records the duration of an operation.
func (m *Metrics) RecordRequestDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrExternalError increments the external error counter.
func (m *Metrics) IncrExternalError(service string) {
	m.externalErrors.WithLabelValues(service).Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// RecordTokens records prompt and completion token usage.
func (m *Metrics) RecordTokens(prompt, completion int) {
	m.tokensUsed.WithLabelValues("prompt").Add(float64(prompt))
	m.tokensUsed.WithLabelValues("completion").Add(float64(completion))
}

// IncrRequest increments the request counter with a status label.
func (m *Metrics) IncrRequest(status string) {
	m.requestsTotal.WithLabelValues(status).Inc()
}

// IncrStage counts which cascade stage produced the action.
func (m *Metrics) IncrStage(stage string) {
	m.stageHits.WithLabelValues(stage).Inc()
}

// IncrGateOutcome counts a confidence gate decision.
func (m *Metrics) IncrGateOutcome(outcome string) {
	m.gateOutcomes.WithLabelValues(outcome).Inc()
}

// IncrDispatch counts an execution attempt ("success", "rejected" or "error").
func (m *Metrics) IncrDispatch(action, status string) {
	m.dispatchTotal.WithLabelValues(action, status).Inc()
}

// IncrClassifierCall counts a semantic classifier call ("success" or "error").
func (m *Metrics) IncrClassifierCall(status string) {
	m.classifierCalls.WithLabelValues(status).Inc()
}

// GetChatSnapshot returns a snapshot of the chat pipeline counters suitable for
// the GET /v1/metrics/chat endpoint.
func (m *Metrics) GetChatSnapshot(actions []string) *domain.ChatMetrics {
	// Prometheus counters expose cumulative values.
	totalRequests := getCounterValue(m.requestsTotal, "success") +
		getCounterValue(m.requestsTotal, "error")

	stageHits := make(map[string]int64, len(Stages))
	for _, s := range Stages {
		stageHits[s] = int64(getCounterValue(m.stageHits, s))
	}
	gate := make(map[string]int64, len(GateOutcomes))
	for _, o := range GateOutcomes {
		gate[o] = int64(getCounterValue(m.gateOutcomes, o))
	}

	hits := getCounterValue(m.cacheHits, "intent")
	misses := getCounterValue(m.cacheMisses, "intent")
	cacheHitRate := 0.0
	if hits+misses > 0 {
		cacheHitRate = hits / (hits + misses)
	}

	classifierOK := getCounterValue(m.classifierCalls, "success")
	classifierErr := getCounterValue(m.classifierCalls, "error")
	classifierErrRate, avgTokens := 0.0, 0.0
	if calls := classifierOK + classifierErr; calls > 0 {
		classifierErrRate = classifierErr / calls
		avgTokens = (getCounterValue(m.tokensUsed, "prompt") + getCounterValue(m.tokensUsed, "completion")) / calls
	}

	failureRate := make(map[string]float64, len(actions))
	for _, a := range actions {
		ok := getCounterValue(m.dispatchTotal, a, "success")
		failed := getCounterValue(m.dispatchTotal, a, "error") +
			getCounterValue(m.dispatchTotal, a, "rejected")
		if ok+failed > 0 {
			failureRate[a] = failed / (ok + failed)
		} else {
			failureRate[a] = 0
		}
	}

	return &domain.ChatMetrics{
		TotalRequests:       int64(totalRequests),
		StageHits:           stageHits,
		GateOutcomes:        gate,
		IntentCacheHitRate:  cacheHitRate,
		ClassifierErrorRate: classifierErrRate,
		AvgTokensPerCall:    avgTokens,
		DispatchFailureRate: failureRate,
		Period:              "all_time",
	}
}

// getCounterValue extracts the current float64 value from a CounterVec for the given labels.
func getCounterValue(cv *prometheus.CounterVec, labels ...string) float64 {
	counter := cv.WithLabelValues(labels...)
	m := &dto.Metric{}
	if err := counter.(prometheus.Metric).Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}
