package domain

// ============================================================
// Health & Metrics API Responses
// ============================================================

// HealthStatus is returned by GET /healthz.
type HealthStatus struct {
	Status   string          `json:"status"` // healthy, degraded, unhealthy
	Services []ServiceHealth `json:"services"`
}

// ServiceHealth represents the health of an individual service.
type ServiceHealth struct {
	Name        string `json:"name"`
	Status      string `json:"status"`
	LatencyMs   int64  `json:"latencyMs"`
	LastChecked string `json:"lastChecked"`
}

// ChatMetrics is returned by GET /v1/metrics/chat.
type ChatMetrics struct {
	TotalRequests       int64              `json:"totalRequests"`
	StageHits           map[string]int64   `json:"stageHits"`
	GateOutcomes        map[string]int64   `json:"gateOutcomes"`
	IntentCacheHitRate  float64            `json:"intentCacheHitRate"`
	ClassifierErrorRate float64            `json:"classifierErrorRate"`
	AvgTokensPerCall    float64            `json:"avgTokensPerCall"`
	DispatchFailureRate map[string]float64 `json:"dispatchFailureRate"`
	Period              string             `json:"period"`
}
