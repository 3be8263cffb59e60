// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Progress persistence backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Completion percentage denominators.
const (
	BasisTouched    = "touched"
	BasisCurriculum = "curriculum"
)

// Hosted model providers.
const (
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
	ProviderNone      = "none"
)

// Config holds all application configuration.
type Config struct {
	Port           string
	GRPCPort       string
	CORSOrigins    []string
	CurriculumPath string // empty = embedded default curriculum
	LogMode        string // "production" (JSON) or "development"
	LogLevel       string
	HealthInterval time.Duration
	Progress       ProgressConfig
	Model          ModelConfig
	RateLimit      RateLimitConfig
}

// ProgressConfig controls where and how learner progress is kept.
type ProgressConfig struct {
	Persist      bool // false keeps progress in memory only
	Backend      string
	FilePath     string
	DBPath       string
	PercentBasis string
}

// ModelConfig describes the hosted text-generation service.
type ModelConfig struct {
	Provider         string
	ModelID          string
	MaxTokens        int
	Temperature      float64
	Timeout          time.Duration
	AnthropicAPIKey  string
	AnthropicBaseURL string
	GoogleAPIKey     string
}

// RateLimitConfig bounds question traffic per client.
type RateLimitConfig struct {
	RequestsPerWindow int
	WindowDuration    time.Duration
}

// LoadDotEnv loads a .env file into the process environment if one exists.
// It reports whether a file was found.
func LoadDotEnv(paths ...string) bool {
	return godotenv.Load(paths...) == nil
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	provider := strings.ToLower(getEnv("MODEL_PROVIDER", ProviderAnthropic))

	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		GRPCPort:       getEnv("GRPC_PORT", "50051"),
		CORSOrigins:    getEnvList("CORS_ORIGINS", []string{"*"}),
		CurriculumPath: getEnv("CURRICULUM_PATH", ""),
		LogMode:        strings.ToLower(getEnv("LOG_MODE", "production")),
		LogLevel:       strings.ToLower(getEnv("LOG_LEVEL", "info")),
		HealthInterval: getEnvDuration("HEALTH_INTERVAL", 15*time.Second),
		Progress: ProgressConfig{
			Persist:      getEnvBool("PROGRESS_PERSIST", true),
			Backend:      strings.ToLower(getEnv("PROGRESS_BACKEND", BackendFile)),
			FilePath:     getEnv("PROGRESS_FILE", "./data/progress.json"),
			DBPath:       getEnv("DB_PATH", "./data/progress.db"),
			PercentBasis: strings.ToLower(getEnv("PROGRESS_PERCENT_BASIS", BasisTouched)),
		},
		Model: ModelConfig{
			Provider:         provider,
			ModelID:          getEnv("MODEL_ID", defaultModelID(provider)),
			MaxTokens:        getEnvInt("MODEL_MAX_TOKENS", 4000),
			Temperature:      getEnvFloat("MODEL_TEMPERATURE", 0.1),
			Timeout:          getEnvDuration("MODEL_TIMEOUT", 120*time.Second),
			AnthropicAPIKey:  getEnv("ANTHROPIC_API_KEY", ""),
			AnthropicBaseURL: getEnv("ANTHROPIC_BASE_URL", "https://api.anthropic.com/v1"),
			GoogleAPIKey:     getEnv("GOOGLE_API_KEY", ""),
		},
		RateLimit: RateLimitConfig{
			RequestsPerWindow: getEnvInt("RATE_LIMIT_REQUESTS", 10),
			WindowDuration:    getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),
		},
	}

	if strings.TrimSpace(cfg.Model.ModelID) == "" {
		cfg.Model.ModelID = defaultModelID(provider)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func defaultModelID(provider string) string {
	switch provider {
	case ProviderGemini:
		return "gemini-2.5-flash"
	case ProviderNone:
		return ""
	default:
		return "claude-3-7-sonnet-20250219"
	}
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	switch c.Progress.Backend {
	case BackendFile:
		if c.Progress.FilePath == "" {
			return fmt.Errorf("PROGRESS_FILE cannot be empty")
		}
	case BackendSQLite:
		if c.Progress.DBPath == "" {
			return fmt.Errorf("DB_PATH cannot be empty")
		}
	default:
		return fmt.Errorf("PROGRESS_BACKEND must be %q or %q, got %q", BackendFile, BackendSQLite, c.Progress.Backend)
	}
	if c.Progress.PercentBasis != BasisTouched && c.Progress.PercentBasis != BasisCurriculum {
		return fmt.Errorf("PROGRESS_PERCENT_BASIS must be %q or %q", BasisTouched, BasisCurriculum)
	}
	switch c.Model.Provider {
	case ProviderAnthropic, ProviderGemini, ProviderNone:
	default:
		return fmt.Errorf("MODEL_PROVIDER must be one of anthropic, gemini, none; got %q", c.Model.Provider)
	}
	if c.Model.MaxTokens <= 0 {
		return fmt.Errorf("MODEL_MAX_TOKENS must be > 0")
	}
	if c.Model.Temperature < 0 || c.Model.Temperature > 2 {
		return fmt.Errorf("MODEL_TEMPERATURE must be within [0, 2]")
	}
	if c.RateLimit.RequestsPerWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be > 0")
	}
	if c.RateLimit.WindowDuration <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be > 0")
	}
	if c.HealthInterval <= 0 {
		return fmt.Errorf("HEALTH_INTERVAL must be > 0")
	}
	return nil
}

// IsDevelopment returns true if logs should be human-readable.
func (c *Config) IsDevelopment() bool {
	return c.LogMode == "development" || c.LogMode == "dev"
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fallback
	}
	return f
}

// getEnvDuration accepts Go duration syntax ("90s") or a bare number of seconds.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	value = strings.TrimSpace(value)
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
