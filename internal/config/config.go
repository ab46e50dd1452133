package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	DB        DBConfig
	Log       LogConfig
	Inference InferenceConfig
	Extract   ExtractConfig
	Queue     QueueConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// InferenceConfig holds settings for the external inference service.
type InferenceConfig struct {
	Provider        string  `mapstructure:"provider"`
	URL             string  `mapstructure:"url"`
	APIKey          string  `mapstructure:"api_key"`
	Model           string  `mapstructure:"model"`
	Temperature     float64 `mapstructure:"temperature"`
	MaxOutputTokens int     `mapstructure:"max_output_tokens"`
	TimeoutSecs     int     `mapstructure:"timeout_secs"`
	MaxRetries      int     `mapstructure:"max_retries"`
	BackoffBaseMS   int     `mapstructure:"backoff_base_ms"`
	BackoffCapMS    int     `mapstructure:"backoff_cap_ms"`
	Enabled         bool    `mapstructure:"enabled"`
}

// ExtractConfig holds orchestrator thresholds and validation bounds.
type ExtractConfig struct {
	AutoAcceptThreshold      float64 `mapstructure:"auto_accept_threshold"`
	AcceptThreshold          float64 `mapstructure:"accept_threshold"`
	ReviewThreshold          float64 `mapstructure:"review_threshold"`
	OptionalAbsentConfidence float64 `mapstructure:"optional_absent_confidence"`
	ModelProximityBaseline   float64 `mapstructure:"model_proximity_baseline"`
	MaxYearsBack             int     `mapstructure:"max_years_back"`
	FraudCeiling             float64 `mapstructure:"fraud_ceiling"`
	DocumentTimeoutSecs      int     `mapstructure:"document_timeout_secs"`
}

// QueueConfig holds batch processing settings.
type QueueConfig struct {
	Concurrency int `mapstructure:"concurrency"`
}

// Load reads configuration from environment variables with the CLAIMDESK_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("CLAIMDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "claimdesk")
	v.SetDefault("db.password", "claimdesk_secret")
	v.SetDefault("db.name", "claimdesk_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// Log defaults
	v.SetDefault("log.level", "debug")

	// Inference defaults
	v.SetDefault("inference.provider", "vllm")
	v.SetDefault("inference.url", "http://localhost:8000")
	v.SetDefault("inference.api_key", "")
	v.SetDefault("inference.model", "Qwen/Qwen3-0.6B")
	v.SetDefault("inference.temperature", 0.1)
	v.SetDefault("inference.max_output_tokens", 512)
	v.SetDefault("inference.timeout_secs", 30)
	v.SetDefault("inference.max_retries", 3)
	v.SetDefault("inference.backoff_base_ms", 500)
	v.SetDefault("inference.backoff_cap_ms", 8000)
	v.SetDefault("inference.enabled", true)

	// Extraction defaults
	v.SetDefault("extract.auto_accept_threshold", 0.90)
	v.SetDefault("extract.accept_threshold", 0.70)
	v.SetDefault("extract.review_threshold", 0.50)
	v.SetDefault("extract.optional_absent_confidence", 0.50)
	v.SetDefault("extract.model_proximity_baseline", 0.85)
	v.SetDefault("extract.max_years_back", 5)
	v.SetDefault("extract.fraud_ceiling", 100000.00)
	v.SetDefault("extract.document_timeout_secs", 180)

	// Queue defaults
	v.SetDefault("queue.concurrency", 5)

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                        "CLAIMDESK_SERVER_PORT",
		"server.read_timeout":                "CLAIMDESK_SERVER_READ_TIMEOUT",
		"server.write_timeout":               "CLAIMDESK_SERVER_WRITE_TIMEOUT",
		"server.environment":                 "CLAIMDESK_SERVER_ENVIRONMENT",
		"db.host":                            "CLAIMDESK_DB_HOST",
		"db.port":                            "CLAIMDESK_DB_PORT",
		"db.user":                            "CLAIMDESK_DB_USER",
		"db.password":                        "CLAIMDESK_DB_PASSWORD",
		"db.name":                            "CLAIMDESK_DB_NAME",
		"db.sslmode":                         "CLAIMDESK_DB_SSLMODE",
		"db.max_open":                        "CLAIMDESK_DB_MAX_OPEN",
		"db.max_idle":                        "CLAIMDESK_DB_MAX_IDLE",
		"log.level":                          "CLAIMDESK_LOG_LEVEL",
		"inference.provider":                 "CLAIMDESK_INFERENCE_PROVIDER",
		"inference.url":                      "CLAIMDESK_INFERENCE_URL",
		"inference.api_key":                  "CLAIMDESK_INFERENCE_API_KEY",
		"inference.model":                    "CLAIMDESK_INFERENCE_MODEL",
		"inference.temperature":              "CLAIMDESK_INFERENCE_TEMPERATURE",
		"inference.max_output_tokens":        "CLAIMDESK_INFERENCE_MAX_OUTPUT_TOKENS",
		"inference.timeout_secs":             "CLAIMDESK_INFERENCE_TIMEOUT_SECS",
		"inference.max_retries":              "CLAIMDESK_INFERENCE_MAX_RETRIES",
		"inference.backoff_base_ms":          "CLAIMDESK_INFERENCE_BACKOFF_BASE_MS",
		"inference.backoff_cap_ms":           "CLAIMDESK_INFERENCE_BACKOFF_CAP_MS",
		"inference.enabled":                  "CLAIMDESK_INFERENCE_ENABLED",
		"extract.auto_accept_threshold":      "CLAIMDESK_EXTRACT_AUTO_ACCEPT_THRESHOLD",
		"extract.accept_threshold":           "CLAIMDESK_EXTRACT_ACCEPT_THRESHOLD",
		"extract.review_threshold":           "CLAIMDESK_EXTRACT_REVIEW_THRESHOLD",
		"extract.optional_absent_confidence": "CLAIMDESK_EXTRACT_OPTIONAL_ABSENT_CONFIDENCE",
		"extract.model_proximity_baseline":   "CLAIMDESK_EXTRACT_MODEL_PROXIMITY_BASELINE",
		"extract.max_years_back":             "CLAIMDESK_EXTRACT_MAX_YEARS_BACK",
		"extract.fraud_ceiling":              "CLAIMDESK_EXTRACT_FRAUD_CEILING",
		"extract.document_timeout_secs":      "CLAIMDESK_EXTRACT_DOCUMENT_TIMEOUT_SECS",
		"queue.concurrency":                  "CLAIMDESK_QUEUE_CONCURRENCY",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}
	cfg.Server = ServerConfig{
		Port:         v.GetString("server.port"),
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.Log = LogConfig{
		Level: v.GetString("log.level"),
	}
	cfg.Inference = InferenceConfig{
		Provider:        v.GetString("inference.provider"),
		URL:             v.GetString("inference.url"),
		APIKey:          v.GetString("inference.api_key"),
		Model:           v.GetString("inference.model"),
		Temperature:     v.GetFloat64("inference.temperature"),
		MaxOutputTokens: v.GetInt("inference.max_output_tokens"),
		TimeoutSecs:     v.GetInt("inference.timeout_secs"),
		MaxRetries:      v.GetInt("inference.max_retries"),
		BackoffBaseMS:   v.GetInt("inference.backoff_base_ms"),
		BackoffCapMS:    v.GetInt("inference.backoff_cap_ms"),
		Enabled:         v.GetBool("inference.enabled"),
	}
	cfg.Extract = ExtractConfig{
		AutoAcceptThreshold:      v.GetFloat64("extract.auto_accept_threshold"),
		AcceptThreshold:          v.GetFloat64("extract.accept_threshold"),
		ReviewThreshold:          v.GetFloat64("extract.review_threshold"),
		OptionalAbsentConfidence: v.GetFloat64("extract.optional_absent_confidence"),
		ModelProximityBaseline:   v.GetFloat64("extract.model_proximity_baseline"),
		MaxYearsBack:             v.GetInt("extract.max_years_back"),
		FraudCeiling:             v.GetFloat64("extract.fraud_ceiling"),
		DocumentTimeoutSecs:      v.GetInt("extract.document_timeout_secs"),
	}
	cfg.Queue = QueueConfig{
		Concurrency: v.GetInt("queue.concurrency"),
	}

	return cfg, nil
}
