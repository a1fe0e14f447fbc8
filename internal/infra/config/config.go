package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"

	LLMBackendOpenAI = "openai"
	LLMBackendOllama = "ollama"
)

type Config struct {
	Env      string `validate:"required"`
	Port     string `validate:"required,numeric"`
	LogLevel string `validate:"oneof=debug info warn error"`

	StorageBackend string `validate:"oneof=memory postgres"`
	DBHost         string `validate:"required_if=StorageBackend postgres"`
	DBPort         string `validate:"required_if=StorageBackend postgres"`
	DBUser         string `validate:"required_if=StorageBackend postgres"`
	DBPassword     string
	DBName         string `validate:"required_if=StorageBackend postgres"`
	DBSSLMode      string `validate:"oneof=disable allow prefer require verify-ca verify-full"`

	LLM LLMConfig
	QA  QAConfig

	CORSAllowOrigins []string
}

// LLMConfig selects and configures the text-generation backend.
type LLMConfig struct {
	Backend     string  `validate:"oneof=openai ollama"`
	BaseURL     string  `validate:"omitempty,url"`
	APIKey      string  `validate:"required_if=Backend openai"`
	Model       string  `validate:"required"`
	OllamaURL   string  `validate:"required_if=Backend ollama"`
	MaxTokens   int     `validate:"gt=0"`
	Temperature float32 `validate:"gte=0,lte=2"`
	MaxRetries  uint
	Timeout     time.Duration `validate:"gt=0"`
}

// QAConfig holds limits applied to questions and uploads.
type QAConfig struct {
	MaxEvidenceChars int     `validate:"gte=0"`
	MaxUploadBytes   int64   `validate:"gt=0"`
	RateLimitRPS     float64 `validate:"gte=0"`
	RateLimitBurst   int     `validate:"gte=1"`
}

// Load reads configuration from the environment, after loading an optional .env file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := &Config{
		Env:      getEnv("ENV", "development"),
		Port:     getEnv("PORT", "5000"),
		LogLevel: strings.ToLower(getEnv("LOG_LEVEL", "info")),

		StorageBackend: getEnv("STORAGE_BACKEND", StorageMemory),
		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnv("DB_PORT", "5432"),
		DBUser:         getEnv("DB_USER", "qa_user"),
		DBPassword:     getSecret("DB_PASSWORD", "DB_PASSWORD_FILE", ""),
		DBName:         getEnv("DB_NAME", "knowledge_qa"),
		DBSSLMode:      getEnv("DB_SSL_MODE", "disable"),

		LLM: LLMConfig{
			Backend:     getEnv("QA_LLM_BACKEND", LLMBackendOpenAI),
			BaseURL:     getEnv("QA_LLM_BASE_URL", "https://router.huggingface.co/v1"),
			APIKey:      getSecretWithAlt("QA_LLM_API_KEY", "HUGGINGFACE_API_KEY", "QA_LLM_API_KEY_FILE"),
			Model:       getEnv("QA_LLM_MODEL", "mistralai/Mistral-7B-Instruct-v0.2"),
			OllamaURL:   getEnv("OLLAMA_URL", "http://localhost:11434"),
			MaxTokens:   getEnvInt("QA_MAX_TOKENS", 800),
			Temperature: getEnvFloat32("QA_TEMPERATURE", 0.1),
			MaxRetries:  uint(max(getEnvInt("QA_GATEWAY_MAX_RETRIES", 0), 0)),
			Timeout:     getEnvDuration("QA_GATEWAY_TIMEOUT", 60*time.Second),
		},
		QA: QAConfig{
			MaxEvidenceChars: getEnvInt("QA_MAX_EVIDENCE_CHARS", 48000),
			MaxUploadBytes:   int64(getEnvInt("QA_MAX_UPLOAD_BYTES", 10<<20)),
			RateLimitRPS:     getEnvFloat64("QA_RATE_LIMIT_RPS", 1),
			RateLimitBurst:   getEnvInt("QA_RATE_LIMIT_BURST", 5),
		},

		CORSAllowOrigins: getEnvList("CORS_ALLOW_ORIGINS", []string{"http://localhost:3000"}),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks the struct tags on Config and its sections.
func (c *Config) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed on '%s'", fe.Namespace(), fe.Tag()))
			}
			return errors.New(strings.Join(msgs, "; "))
		}
		return err
	}
	return nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getSecret(envKey, fileEnvKey, fallback string) string {
	if value, ok := os.LookupEnv(envKey); ok {
		return value
	}
	if filePath, ok := os.LookupEnv(fileEnvKey); ok {
		content, err := os.ReadFile(filePath)
		if err == nil {
			return strings.TrimSpace(string(content))
		}
	}
	return fallback
}

func getSecretWithAlt(key, altKey, fileEnvKey string) string {
	if value, ok := os.LookupEnv(altKey); ok && os.Getenv(key) == "" {
		return value
	}
	return getSecret(key, fileEnvKey, "")
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvFloat64(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvFloat32(key string, fallback float32) float32 {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(parsed)
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
