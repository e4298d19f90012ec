package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/ocr")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "ocr:jobs", cfg.QueueName)
	assert.Equal(t, "redis", cfg.QueueBackend)
	assert.Equal(t, 4, cfg.WorkerConcurrency)
	assert.Equal(t, []string{"eng"}, cfg.Languages)
	assert.Equal(t, 5*time.Minute, cfg.ProcessingTimeoutDuration())
	assert.Equal(t, 2*time.Minute, cfg.RecognitionBudgetDuration())
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/ocr")
	t.Setenv("WORKER_CONCURRENCY", "8")
	t.Setenv("OCR_LANGUAGES", "eng+deu, fra")
	t.Setenv("JOB_RATE_LIMIT", "2.5")
	t.Setenv("QUEUE_BACKEND", "asynq")
	t.Setenv("RECOGNITION_BUDGET", "0")
	t.Setenv("MAX_RETRIES", "not-a-number")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.WorkerConcurrency)
	assert.Equal(t, []string{"eng", "deu", "fra"}, cfg.Languages)
	assert.Equal(t, 2.5, cfg.JobRateLimit)
	assert.Equal(t, "asynq", cfg.QueueBackend)
	assert.Equal(t, 0, cfg.RecognitionBudget)
	assert.Equal(t, 3, cfg.MaxRetries, "unparsable values fall back to the default")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			RedisURL:          "redis://localhost:6379",
			DatabaseURL:       "postgres://localhost/ocr",
			QueueBackend:      "redis",
			WorkerConcurrency: 4,
			MaxImageSize:      1 << 20,
			ProcessingTimeout: 60000,
			RecognitionBudget: 30000,
			MaxRetries:        3,
			JobRateBurst:      1,
			Languages:         []string{"eng"},
		}
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"missing database", func(c *Config) { c.DatabaseURL = "" }},
		{"missing redis", func(c *Config) { c.RedisURL = "" }},
		{"bad backend", func(c *Config) { c.QueueBackend = "kafka" }},
		{"zero concurrency", func(c *Config) { c.WorkerConcurrency = 0 }},
		{"tiny image limit", func(c *Config) { c.MaxImageSize = 10 }},
		{"budget over timeout", func(c *Config) { c.RecognitionBudget = 90000 }},
		{"negative rate", func(c *Config) { c.JobRateLimit = -1 }},
		{"no languages", func(c *Config) { c.Languages = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}
