package common

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Auth     AuthConfig
	Provider ProviderConfig
	Pipeline PipelineConfig
	OCR      OCRConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Addr            string
	MaxFileSizeMB   int
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

// AuthConfig holds API-key authentication and rate limiting configuration
type AuthConfig struct {
	APIKeys      []string
	RateLimitRPM int
}

// ProviderConfig holds model-provider credentials and endpoints
type ProviderConfig struct {
	OpenRouterAPIKey  string
	OpenRouterBaseURL string
	RequestTimeout    time.Duration
}

// PipelineConfig holds pipeline behavior configuration
type PipelineConfig struct {
	DefaultOCRModels   string // comma-separated provider/model chain, or "none"
	DefaultParseModels string // comma-separated provider/model chain
	QualityThreshold   float64
	MergePolicy        string // "replace" | "longer"
}

// OCRConfig holds page rendering configuration
type OCRConfig struct {
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	DPI       int
	MaxPages  int // 0 = no limit
}

// Merge policy values for PipelineConfig.MergePolicy.
const (
	MergeReplace = "replace"
	MergeLonger  = "longer"
)

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            getEnv("HTTP_ADDR", ":8080"),
			MaxFileSizeMB:   getEnvAsInt("MAX_FILE_SIZE_MB", 10),
			RequestTimeout:  getEnvAsDuration("REQUEST_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Auth: AuthConfig{
			APIKeys:      splitCSV(getEnv("API_KEYS", "")),
			RateLimitRPM: getEnvAsInt("RATE_LIMIT_RPM", 60),
		},
		Provider: ProviderConfig{
			OpenRouterAPIKey:  getEnv("OPENROUTER_API_KEY", ""),
			OpenRouterBaseURL: getEnv("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
			RequestTimeout:    getEnvAsDuration("PROVIDER_TIMEOUT", 60*time.Second),
		},
		Pipeline: PipelineConfig{
			DefaultOCRModels:   getEnv("DEFAULT_OCR_MODELS", "openrouter/google/gemini-flash-1.5,openrouter/google/gemini-pro-vision"),
			DefaultParseModels: getEnv("DEFAULT_PARSE_MODELS", "openrouter/google/gemini-flash-1.5,openrouter/openai/gpt-4o-mini"),
			QualityThreshold:   getEnvAsFloat64("QUALITY_THRESHOLD", 0.75),
			MergePolicy:        getEnv("MERGE_POLICY", MergeReplace),
		},
		OCR: OCRConfig{
			Pdftotext: getEnv("PDFTOTEXT_BIN", "pdftotext"),
			Pdftoppm:  getEnv("PDFTOPPM_BIN", "pdftoppm"),
			DPI:       getEnvAsInt("OCR_DPI", 200),
			MaxPages:  getEnvAsInt("OCR_MAX_PAGES", 0),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Pipeline.DefaultParseModels) == "" ||
		strings.EqualFold(strings.TrimSpace(c.Pipeline.DefaultParseModels), "none") {
		return NewAppError("CONFIG_ERROR", "DEFAULT_PARSE_MODELS is required and cannot be 'none'", ErrInvalidInput)
	}
	if c.Pipeline.MergePolicy != MergeReplace && c.Pipeline.MergePolicy != MergeLonger {
		return NewAppError("CONFIG_ERROR", "MERGE_POLICY must be 'replace' or 'longer'", ErrInvalidInput)
	}
	if c.Pipeline.QualityThreshold < 0 || c.Pipeline.QualityThreshold > 1 {
		return NewAppError("CONFIG_ERROR", "QUALITY_THRESHOLD must be in [0,1]", ErrInvalidInput)
	}
	if c.Server.Addr == "" {
		return NewAppError("CONFIG_ERROR", "HTTP_ADDR is required", ErrInvalidInput)
	}
	return nil
}
