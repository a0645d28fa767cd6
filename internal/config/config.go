package config

import (
	"os"
	"strconv"

	"edu-document-pipeline/internal/domain"
)

// AppConfig implements the domain.Config interface
type AppConfig struct {
	ServerPort string
	LogLevel   string

	// Upload size band; files outside [MinFileSize, MaxFileSize] are rejected
	// before the pipeline is ever invoked.
	MaxFileSize int64
	MinFileSize int64

	SupabaseURL string
	SupabaseKey string

	DocumentBucket string
	AssetBucket    string

	// Per-stage deadline. A timed-out stage is a stage failure, not a
	// pipeline failure.
	StageTimeoutSeconds int

	VertexProjectID string
	VertexLocation  string
}

// NewConfig creates a new configuration instance with default values
func NewConfig() domain.Config {
	return &AppConfig{
		// Cloud Run (and many PaaS) provide the listening port via PORT.
		// Keep SERVER_PORT for local/dev compatibility.
		ServerPort:          getEnvOrDefault("PORT", getEnvOrDefault("SERVER_PORT", "8080")),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		MaxFileSize:         getEnvInt64OrDefault("MAX_FILE_SIZE", 50*1024*1024), // 50MB
		MinFileSize:         getEnvInt64OrDefault("MIN_FILE_SIZE", 1024),         // 1KB
		SupabaseURL:         getEnvOrDefault("SUPABASE_URL", ""),
		SupabaseKey:         getEnvOrDefault("SUPABASE_ANON_KEY", ""),
		DocumentBucket:      getEnvOrDefault("DOCUMENT_BUCKET", "documents"),
		AssetBucket:         getEnvOrDefault("ASSET_BUCKET", "document-assets"),
		StageTimeoutSeconds: getEnvIntOrDefault("STAGE_TIMEOUT_SECONDS", 120),
		VertexProjectID:     getEnvOrDefault("VERTEX_PROJECT_ID", ""),
		VertexLocation:      getEnvOrDefault("VERTEX_LOCATION", "us-central1"),
	}
}

func (c *AppConfig) GetServerPort() string { return c.ServerPort }

func (c *AppConfig) GetLogLevel() string { return c.LogLevel }

func (c *AppConfig) GetMaxFileSize() int64 { return c.MaxFileSize }

func (c *AppConfig) GetMinFileSize() int64 { return c.MinFileSize }

func (c *AppConfig) GetSupabaseURL() string { return c.SupabaseURL }

func (c *AppConfig) GetSupabaseKey() string { return c.SupabaseKey }

func (c *AppConfig) GetDocumentBucket() string { return c.DocumentBucket }

func (c *AppConfig) GetAssetBucket() string { return c.AssetBucket }

func (c *AppConfig) GetStageTimeoutSeconds() int { return c.StageTimeoutSeconds }

func (c *AppConfig) GetVertexProjectID() string { return c.VertexProjectID }

func (c *AppConfig) GetVertexLocation() string { return c.VertexLocation }

// Helper functions for environment variable handling
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
