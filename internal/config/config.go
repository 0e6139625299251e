package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds application configuration
type Config struct {
	DatabaseURL      string
	ServerPort       string
	BaseURL          string
	FrontendURL      string
	OpenAIKey        string
	AIModel          string
	AIBaseURL        string
	EnableHSTS       bool
	RedisURL         string
	SessionTTL       time.Duration
	RabbitMQURL      string
	RabbitMQPrefetch int
	GoogleClientID   string
	GoogleSecret     string
	GoogleRedirect   string
	SheetSaveDelay   time.Duration
	WorkerDebugMode  bool
	ServerDebugMode  bool
	OTELEnabled      bool
	OTELEndpoint     string
}

// fileValues holds the optional YAML overlay named by CONFIG_FILE. Keys use
// the same names as the environment variables; environment variables win.
var fileValues map[string]string

// Load loads configuration from environment variables, with an optional YAML
// file overlay supplying defaults for unset variables.
func Load() (*Config, error) {
	fileValues = nil
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		vals, err := loadFileValues(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
		fileValues = vals
	}

	cfg := &Config{
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		ServerPort:       getEnv("SERVER_PORT", "8080"),
		BaseURL:          getEnv("BASE_URL", "http://localhost:8080"),
		FrontendURL:      getEnv("FRONTEND_URL", "http://localhost:3000"),
		OpenAIKey:        getEnv("OPENAI_API_KEY", ""),
		AIModel:          getEnv("AI_MODEL", ""),
		AIBaseURL:        getEnv("AI_BASE_URL", ""),
		EnableHSTS:       getEnvBool("ENABLE_HSTS", false),
		RedisURL:         getEnv("REDIS_URL", "redis://localhost:6379/0"),
		SessionTTL:       getEnvDuration("SESSION_TTL", 30*24*time.Hour),
		RabbitMQURL:      getEnv("RABBITMQ_URL", ""),
		RabbitMQPrefetch: getEnvInt("RABBITMQ_PREFETCH", 1),
		GoogleClientID:   getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleSecret:     getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirect:   getEnv("GOOGLE_REDIRECT_URL", ""),
		SheetSaveDelay:   getEnvDuration("SHEET_SAVE_DELAY", 3*time.Second),
		WorkerDebugMode:  getEnvBool("WORKER_DEBUG_MODE", false),
		ServerDebugMode:  getEnvBool("SERVER_DEBUG_MODE", false),
		OTELEnabled:      getEnvBool("OTEL_ENABLED", false),
		OTELEndpoint:     getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.RabbitMQURL == "" {
		return nil, fmt.Errorf("RABBITMQ_URL is required for job queueing (coaching features require RabbitMQ)")
	}

	if cfg.GoogleRedirect == "" {
		cfg.GoogleRedirect = cfg.BaseURL + "/api/v1/auth/callback"
	}

	return cfg, nil
}

// GoogleConfigured reports whether the OAuth client credentials are set.
// Without them sign-in, calendar sync, and spreadsheet backup are disabled.
func (c *Config) GoogleConfigured() bool {
	return c.GoogleClientID != "" && c.GoogleSecret != ""
}

func loadFileValues(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		out[k] = fmt.Sprint(v)
	}
	return out, nil
}

func lookup(key string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fileValues[key]
}

func getEnv(key, defaultValue string) string {
	if value := lookup(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := lookup(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := lookup(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := lookup(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
