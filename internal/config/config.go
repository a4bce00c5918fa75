package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// app config, mostly engine timing and AI provider related
type Config struct {
	Provider string
	Port     string

	AllowedOrigins []string
	JWTSecret      string

	// Redis presenter transport; empty disables Redis publishing.
	RedisAddr    string
	EventChannel string

	// Engine timing knobs. Tests shrink these to milliseconds.
	AnswerTimeout       time.Duration
	CodingAnswerTimeout time.Duration
	QuestionRetryDelay  time.Duration
	PacingDelay         time.Duration
	SessionTTL          time.Duration

	// Session history JSONL export job.
	ExportSchedule string
	ExportDir      string
	ExportEnabled  bool
	ExportMinScore int
}

// loads configuration from environment variables
func LoadConfig() (*Config, error) {
	config := &Config{
		Provider:            getEnvOrDefault("AI_PROVIDER", "gemini"),
		Port:                getEnvOrDefault("PORT", "8080"),
		AllowedOrigins:      splitOrigins(getEnvOrDefault("ALLOWED_ORIGINS", "http://localhost:5173")),
		JWTSecret:           os.Getenv("JWT_SECRET"),
		RedisAddr:           os.Getenv("REDIS_ADDR"),
		EventChannel:        getEnvOrDefault("EVENT_CHANNEL", "interview_events"),
		AnswerTimeout:       getEnvDuration("ANSWER_TIMEOUT", 5*time.Minute),
		CodingAnswerTimeout: getEnvDuration("CODING_ANSWER_TIMEOUT", 15*time.Minute),
		QuestionRetryDelay:  getEnvDuration("QUESTION_RETRY_DELAY", 2*time.Second),
		PacingDelay:         getEnvDuration("PACING_DELAY", 3*time.Second),
		SessionTTL:          getEnvDuration("SESSION_TTL", 2*time.Hour),
		ExportSchedule:      getEnvOrDefault("EXPORT_SCHEDULE", "0 2 * * *"),
		ExportDir:           getEnvOrDefault("EXPORT_DIR", "./exports"),
		ExportEnabled:       getEnvBool("EXPORT_ENABLED", false),
		ExportMinScore:      getEnvInt("EXPORT_MIN_SCORE", 75),
	}
	if err := validateConfig(config); err != nil {
		return nil, err
	}
	return config, nil
}

func validateConfig(config *Config) error {
	if config.Provider != "gemini" {
		return errors.New("unsupported AI provider: " + config.Provider + ". Currently supported: gemini")
	}
	// Gemini validation is handled by gemini.NewConfig()
	if config.AnswerTimeout <= 0 || config.CodingAnswerTimeout <= 0 {
		return errors.New("answer timeouts must be positive")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true"
	}
	return defaultValue
}

func splitOrigins(raw string) []string {
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
