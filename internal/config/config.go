package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port        string
	Environment string
	DatabaseURL string
	TablePrefix string
	CORSOrigins string
	LogDir      string // Empty disables the log file
	AutoMigrate bool   // Apply embedded migrations on startup

	// Sessions
	SessionSecret string
	SessionTTL    time.Duration
	CookieSecure  bool
	JWKSURL       string // Optional external IdP; empty disables bearer verification via JWKS

	// Redis (role cache, session revocation). Empty disables both.
	RedisURL string

	// Object storage
	AWSRegion          string
	S3Bucket           string
	S3Endpoint         string // Set for MinIO/R2/LocalStack; enables path-style addressing
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	CloudFrontDomain   string
	UploadURLTTL       time.Duration
	MaxUploadBytes     int64

	// LLM Configuration
	LLMProvider     string // anthropic, openai, scripted
	AnthropicAPIKey string
	OpenAIAPIKey    string
	OpenAIBaseURL   string
	DefaultModel    string
	TranscribeModel string
	LLMTimeout      time.Duration
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: env,
		DatabaseURL: getEnv("DATABASE_URL", ""),
		TablePrefix: getTablePrefix(env),
		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:5173"),
		LogDir:      getEnv("LOG_DIR", ""),
		AutoMigrate: getEnv("AUTO_MIGRATE", "false") == "true",

		SessionSecret: getEnv("SESSION_SECRET", ""),
		SessionTTL:    getDuration("SESSION_TTL", 7*24*time.Hour),
		CookieSecure:  getEnv("COOKIE_SECURE", getDefaultCookieSecure(env)) == "true",
		JWKSURL:       getEnv("JWKS_URL", ""),

		RedisURL: getEnv("REDIS_URL", ""),

		AWSRegion:          getEnv("AWS_REGION", "us-east-1"),
		S3Bucket:           getEnv("S3_BUCKET", ""),
		S3Endpoint:         getEnv("S3_ENDPOINT", ""),
		AWSAccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		CloudFrontDomain:   strings.TrimSuffix(getEnv("CLOUDFRONT_DOMAIN", ""), "/"),
		UploadURLTTL:       getDuration("UPLOAD_URL_TTL", 15*time.Minute),
		MaxUploadBytes:     getInt64("MAX_UPLOAD_BYTES", DefaultMaxUploadBytes),

		LLMProvider:     getEnv("LLM_PROVIDER", getDefaultProvider(env)),
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:   getEnv("OPENAI_BASE_URL", ""),
		DefaultModel:    getEnv("DEFAULT_MODEL", "claude-haiku-4-5-20251001"),
		TranscribeModel: getEnv("TRANSCRIBE_MODEL", "whisper-1"),
		LLMTimeout:      getDuration("LLM_TIMEOUT", 45*time.Second),
	}
}

// getDefaultCookieSecure requires HTTPS cookies outside local development
func getDefaultCookieSecure(env string) string {
	if env == "dev" || env == "test" {
		return "false"
	}
	return "true"
}

// getDefaultProvider uses the offline scripted model unless running in production
func getDefaultProvider(env string) string {
	if env == "prod" {
		return "anthropic"
	}
	return "scripted"
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			return n
		}
	}
	return defaultValue
}
