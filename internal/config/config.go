/**
 * Configuration for the OCR worker
 *
 * Loads configuration from environment variables. cmd/worker loads a .env
 * file first when one is present.
 */

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds worker configuration
type Config struct {
	// Redis configuration
	RedisURL  string
	QueueName string

	// Queue backend: "redis" (BRPOP list) or "asynq"
	QueueBackend string

	// PostgreSQL configuration
	DatabaseURL string

	// Qdrant vector database configuration (gRPC host:port)
	QdrantURL        string
	QdrantCollection string

	// Worker configuration
	WorkerConcurrency int
	MaxImageSize      int64
	ProcessingTimeout int // milliseconds, whole job including storage
	RecognitionBudget int // milliseconds handed to the engine deadline, 0 = none
	MaxRetries        int
	JobRateLimit      float64 // jobs per second across the worker, 0 = unlimited
	JobRateBurst      int

	// Engine configuration
	Languages      []string
	TessdataPrefix string
	PresetDir      string
	DefaultPreset  string

	// Logging
	LogLevel string

	// Node environment
	NodeEnv string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		RedisURL:          getEnvOrDefault("REDIS_URL", "redis://nexus-redis:6379"),
		QueueName:         getEnvOrDefault("QUEUE_NAME", "ocr:jobs"),
		QueueBackend:      getEnvOrDefault("QUEUE_BACKEND", "redis"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		QdrantURL:         getEnvOrDefault("QDRANT_URL", "nexus-qdrant:6334"),
		QdrantCollection:  getEnvOrDefault("QDRANT_COLLECTION", "ocr_layouts"),
		WorkerConcurrency: getEnvAsIntOrDefault("WORKER_CONCURRENCY", 4),
		MaxImageSize:      getEnvAsInt64OrDefault("MAX_IMAGE_SIZE", 52428800), // 50MB
		ProcessingTimeout: getEnvAsIntOrDefault("PROCESSING_TIMEOUT", 300000), // 5 minutes
		RecognitionBudget: getEnvAsIntOrDefault("RECOGNITION_BUDGET", 120000), // 2 minutes
		MaxRetries:        getEnvAsIntOrDefault("MAX_RETRIES", 3),
		JobRateLimit:      getEnvAsFloatOrDefault("JOB_RATE_LIMIT", 0),
		JobRateBurst:      getEnvAsIntOrDefault("JOB_RATE_BURST", 1),
		Languages:         splitList(getEnvOrDefault("OCR_LANGUAGES", "eng")),
		TessdataPrefix:    getEnvOrDefault("TESSDATA_PREFIX", ""),
		PresetDir:         getEnvOrDefault("PRESET_DIR", ""),
		DefaultPreset:     getEnvOrDefault("DEFAULT_PRESET", ""),
		LogLevel:          getEnvOrDefault("LOG_LEVEL", "info"),
		NodeEnv:           getEnvOrDefault("NODE_ENV", "development"),
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if configuration is valid
func (c *Config) Validate() error {
	if c.RedisURL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}

	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.QueueBackend != "redis" && c.QueueBackend != "asynq" {
		return fmt.Errorf("QUEUE_BACKEND must be redis or asynq, got %q", c.QueueBackend)
	}

	if c.WorkerConcurrency < 1 || c.WorkerConcurrency > 100 {
		return fmt.Errorf("WORKER_CONCURRENCY must be between 1 and 100, got %d", c.WorkerConcurrency)
	}

	if c.MaxImageSize < 1024 || c.MaxImageSize > 1073741824 { // 1KB to 1GB
		return fmt.Errorf("MAX_IMAGE_SIZE must be between 1KB and 1GB, got %d", c.MaxImageSize)
	}

	if c.ProcessingTimeout < 1000 {
		return fmt.Errorf("PROCESSING_TIMEOUT must be at least 1000ms, got %d", c.ProcessingTimeout)
	}

	if c.RecognitionBudget < 0 || c.RecognitionBudget > c.ProcessingTimeout {
		return fmt.Errorf("RECOGNITION_BUDGET must be between 0 and PROCESSING_TIMEOUT, got %d", c.RecognitionBudget)
	}

	if c.MaxRetries < 0 || c.MaxRetries > 25 {
		return fmt.Errorf("MAX_RETRIES must be between 0 and 25, got %d", c.MaxRetries)
	}

	if c.JobRateLimit < 0 {
		return fmt.Errorf("JOB_RATE_LIMIT must not be negative, got %g", c.JobRateLimit)
	}

	if c.JobRateBurst < 1 {
		return fmt.Errorf("JOB_RATE_BURST must be at least 1, got %d", c.JobRateBurst)
	}

	if len(c.Languages) == 0 {
		return fmt.Errorf("OCR_LANGUAGES must name at least one language")
	}

	return nil
}

// ProcessingTimeoutDuration returns ProcessingTimeout as a time.Duration
func (c *Config) ProcessingTimeoutDuration() time.Duration {
	return time.Duration(c.ProcessingTimeout) * time.Millisecond
}

// RecognitionBudgetDuration returns RecognitionBudget as a time.Duration
func (c *Config) RecognitionBudgetDuration() time.Duration {
	return time.Duration(c.RecognitionBudget) * time.Millisecond
}

// getEnvOrDefault gets environment variable or returns default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsIntOrDefault gets environment variable as int or returns default
func getEnvAsIntOrDefault(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

// getEnvAsInt64OrDefault gets environment variable as int64 or returns default
func getEnvAsInt64OrDefault(key string, defaultValue int64) int64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

// getEnvAsFloatOrDefault gets environment variable as float64 or returns default
func getEnvAsFloatOrDefault(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == '+' }) {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
