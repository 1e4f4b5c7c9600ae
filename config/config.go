package config

import (
	"fmt"
	"os"
	"strconv"
)

// Storage backend selectors.
const (
	StorageFile       = "file"
	StoragePersistent = "persistent"
	StoragePostgres   = "postgres"
)

// Session store selectors.
const (
	SessionMemory = "memory"
	SessionRedis  = "redis"
)

// Config holds all configuration for the bot
type Config struct {
	// Telegram configuration
	TelegramBotToken string
	WebhookSecret    string
	WebhookURL       string

	// LLM configuration
	OpenAIAPIKey string
	OpenAIModel  string

	// Storage configuration
	StorageType string
	StoragePath string
	DatabaseURL string

	// Session configuration
	SessionStore string

	// Redis configuration
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	RedisURL      string

	// Export configuration
	S3Bucket  string
	AWSRegion string

	// Server configuration
	ServerPort string
}

// LoadConfig creates a new Config instance from environment variables.
// Missing required credentials are a fatal error.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		WebhookSecret:    os.Getenv("WEBHOOK_SECRET"),
		WebhookURL:       os.Getenv("WEBHOOK_URL"),
		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:      getEnv("OPENAI_MODEL", "gpt-4.1-mini"),
		StorageType:      getEnv("STORAGE_TYPE", StoragePostgres),
		StoragePath:      getEnv("STORAGE_PATH", "/data/recipes"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		SessionStore:     getEnv("SESSION_STORE", SessionMemory),
		RedisHost:        getEnv("REDIS_HOST", "localhost"),
		RedisPort:        getEnv("REDIS_PORT", "6379"),
		RedisPassword:    os.Getenv("REDIS_PASSWORD"),
		RedisURL:         os.Getenv("REDIS_URL"),
		S3Bucket:         os.Getenv("S3_BUCKET_NAME"),
		AWSRegion:        os.Getenv("AWS_REGION"),
		ServerPort:       getEnv("SERVER_PORT", "8080"),
	}

	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		db, err := strconv.Atoi(dbStr)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_DB value %q: %w", dbStr, err)
		}
		cfg.RedisDB = db
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.TelegramBotToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN not found in environment variables")
	}
	if cfg.OpenAIAPIKey == "" && os.Getenv("OPENAI_API_KEY_FILE") == "" {
		return fmt.Errorf("OPENAI_API_KEY not found in environment variables")
	}

	switch cfg.StorageType {
	case StorageFile, StoragePersistent:
		if cfg.StoragePath == "" {
			return fmt.Errorf("STORAGE_PATH is required for %s storage", cfg.StorageType)
		}
	case StoragePostgres:
		if cfg.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for postgres storage")
		}
	default:
		return fmt.Errorf("unknown STORAGE_TYPE: %s", cfg.StorageType)
	}

	switch cfg.SessionStore {
	case SessionMemory, SessionRedis:
	default:
		return fmt.Errorf("unknown SESSION_STORE: %s", cfg.SessionStore)
	}

	return nil
}

// getEnv reads an environment variable with a fallback default
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
