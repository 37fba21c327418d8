package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
// Values are loaded from environment variables with sensible defaults.
type Config struct {
	// Server
	Port     int
	LogLevel string

	// HTTP client
	HTTPTimeout time.Duration

	// Resilience
	MaxRetries     int
	InitialBackoff time.Duration
	MaxConcurrency int

	// Observability
	OTLPEndpoint   string
	TracingEnabled bool

	// Persistence: "supabase" or "sqlite"
	StoreBackend string
	SQLitePath   string

	// Supabase
	SupabaseURL        string
	SupabaseAnonKey    string
	SupabaseServiceKey string

	// JWT / Auth
	JWTSecret    string
	JWTAccessTTL time.Duration

	// Semantic classifier: "agent", "openai", "deepseek" or "none"
	ClassifierProvider string
	ChatAgentURL       string // base URL do agent (POST /v1/classify, /v1/chat)
	LLMAPIKey          string
	LLMModel           string
	LLMBaseURL         string
	LLMMaxTokens       int
	ClassifierTimeout  time.Duration

	// Conversation context store
	ConversationTTL time.Duration
	HistoryWindow   int
}

var defaults = map[string]any{
	"PORT":                        8080,
	"LOG_LEVEL":                   "info",
	"HTTP_TIMEOUT":                10 * time.Second,
	"MAX_RETRIES":                 3,
	"INITIAL_BACKOFF":             100 * time.Millisecond,
	"MAX_CONCURRENCY":             50,
	"OTEL_EXPORTER_OTLP_ENDPOINT": "localhost:4317",
	"TRACING_ENABLED":             false,
	"STORE_BACKEND":               "sqlite",
	"SQLITE_PATH":                 "finnextho.db",
	"SUPABASE_URL":                "",
	"SUPABASE_ANON_KEY":           "",
	"SUPABASE_SERVICE_ROLE_KEY":   "",
	"JWT_SECRET":                  "bfa-default-dev-secret-change-me",
	"JWT_ACCESS_TTL":              15 * time.Minute,
	"CLASSIFIER_PROVIDER":         "agent",
	"CHAT_AGENT_URL":              "http://localhost:8090",
	"LLM_API_KEY":                 "",
	"LLM_MODEL":                   "gpt-4o-mini",
	"LLM_BASE_URL":                "",
	"LLM_MAX_TOKENS":              512,
	"CLASSIFIER_TIMEOUT":          8 * time.Second,
	"CONVERSATION_TTL":            30 * time.Minute,
	"HISTORY_WINDOW":              3,
}

// Load reads configuration from environment variables with defaults.
func Load() *Config {
	return FromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.AutomaticEnv()
	return v
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		Port:     v.GetInt("PORT"),
		LogLevel: strings.ToLower(v.GetString("LOG_LEVEL")),

		HTTPTimeout: v.GetDuration("HTTP_TIMEOUT"),

		MaxRetries:     v.GetInt("MAX_RETRIES"),
		InitialBackoff: v.GetDuration("INITIAL_BACKOFF"),
		MaxConcurrency: v.GetInt("MAX_CONCURRENCY"),

		OTLPEndpoint:   v.GetString("OTEL_EXPORTER_OTLP_ENDPOINT"),
		TracingEnabled: v.GetBool("TRACING_ENABLED"),

		StoreBackend: strings.ToLower(v.GetString("STORE_BACKEND")),
		SQLitePath:   v.GetString("SQLITE_PATH"),

		SupabaseURL:        v.GetString("SUPABASE_URL"),
		SupabaseAnonKey:    v.GetString("SUPABASE_ANON_KEY"),
		SupabaseServiceKey: v.GetString("SUPABASE_SERVICE_ROLE_KEY"),

		JWTSecret:    v.GetString("JWT_SECRET"),
		JWTAccessTTL: v.GetDuration("JWT_ACCESS_TTL"),

		ClassifierProvider: strings.ToLower(v.GetString("CLASSIFIER_PROVIDER")),
		ChatAgentURL:       strings.TrimRight(v.GetString("CHAT_AGENT_URL"), "/"),
		LLMAPIKey:          v.GetString("LLM_API_KEY"),
		LLMModel:           v.GetString("LLM_MODEL"),
		LLMBaseURL:         v.GetString("LLM_BASE_URL"),
		LLMMaxTokens:       v.GetInt("LLM_MAX_TOKENS"),
		ClassifierTimeout:  v.GetDuration("CLASSIFIER_TIMEOUT"),

		ConversationTTL: v.GetDuration("CONVERSATION_TTL"),
		HistoryWindow:   v.GetInt("HISTORY_WINDOW"),
	}
}
