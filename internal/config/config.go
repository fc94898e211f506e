package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port        string
	Environment string
	DatabaseURL string
	JWKSURL     string
	CORSOrigins string
	TablePrefix string
	// Object storage
	StorageBucket string
	// AI services
	AnthropicAPIKey  string
	AssemblyAIAPIKey string
	CompletionModel  string
	// Token ledger
	StartingTokenGrant int
	// Ingestion pipeline
	IngestWorkers   int
	IngestQueueSize int
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: env,
		DatabaseURL: getEnv("DATABASE_URL", ""),
		JWKSURL:     getEnv("JWKS_URL", ""),
		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:3000"),
		TablePrefix: getTablePrefix(env),

		StorageBucket: getEnv("STORAGE_BUCKET", "notable_media"),

		AnthropicAPIKey:  getEnv("ANTHROPIC_API_KEY", ""),
		AssemblyAIAPIKey: getEnv("ASSEMBLYAI_API_KEY", ""),
		CompletionModel:  getEnv("COMPLETION_MODEL", "claude-haiku-4-5-20251001"),

		StartingTokenGrant: getEnvInt("STARTING_TOKEN_GRANT", 500),

		IngestWorkers:   getEnvInt("INGEST_WORKERS", 2),
		IngestQueueSize: getEnvInt("INGEST_QUEUE_SIZE", 64),
	}
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
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

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
