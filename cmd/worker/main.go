/**
 * OCR Worker - Main Entry Point
 *
 * Go worker that turns queued images into recognition result trees.
 *
 * Architecture:
 * - Redis list consumer (TypeScript-compatible) or asynq server for jobs
 * - One Tesseract engine, image and parameter registry per job
 * - Named parameter presets reloaded when the preset directory changes
 * - PostgreSQL for job records and result trees, Qdrant for layout
 *   fingerprints used by similar-page search
 */

package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/adverant/nexus/ocr-worker/internal/config"
	"github.com/adverant/nexus/ocr-worker/internal/logging"
	"github.com/adverant/nexus/ocr-worker/internal/processor"
	"github.com/adverant/nexus/ocr-worker/internal/queue"
	"github.com/adverant/nexus/ocr-worker/internal/storage"
)

// consumer is the part of both queue backends main drives
type consumer interface {
	start() error
	stop() error
}

type redisBackend struct{ c *queue.RedisConsumer }

func (b redisBackend) start() error { return b.c.Start() }
func (b redisBackend) stop() error  { return b.c.Stop() }

type asynqBackend struct{ c *queue.Consumer }

func (b asynqBackend) start() error { return b.c.Start(context.Background()) }
func (b asynqBackend) stop() error  { return b.c.Stop(context.Background()) }

func main() {
	// Load environment variables
	if err := godotenv.Load(".env.nexus"); err != nil {
		log.Printf("Warning: .env.nexus not found, using system environment variables")
	}

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logging.SetLevel(logging.ParseLevel(cfg.LogLevel))

	log.Printf("OCR Worker starting...")
	log.Printf("Configuration loaded: Redis=%s, Qdrant=%s, Workers=%d, Backend=%s, Languages=%v",
		cfg.RedisURL, cfg.QdrantURL, cfg.WorkerConcurrency, cfg.QueueBackend, cfg.Languages)

	// Initialize unified storage manager (PostgreSQL + Qdrant)
	log.Printf("Connecting to storage (PostgreSQL + Qdrant)...")
	storageManager, err := storage.NewStorageManager(
		cfg.DatabaseURL,
		cfg.QdrantURL,
		cfg.QdrantCollection,
		processor.FingerprintSize,
	)
	if err != nil {
		log.Fatalf("Failed to initialize storage manager: %v", err)
	}
	log.Printf("Storage manager initialized (PostgreSQL + Qdrant)")

	// Presets
	presets, err := processor.NewPresetStore(cfg.PresetDir)
	if err != nil {
		log.Fatalf("Failed to load presets: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if cfg.PresetDir != "" {
		go func() {
			if err := presets.Watch(ctx, 500*time.Millisecond); err != nil {
				log.Printf("Preset watcher stopped: %v", err)
			}
		}()
	}
	log.Printf("Presets loaded: %v", presets.Names())

	// Engine
	factory, err := processor.NewTesseractFactory(&processor.TesseractConfig{
		Languages:      cfg.Languages,
		TessdataPrefix: cfg.TessdataPrefix,
	})
	if err != nil {
		log.Fatalf("Failed to initialize OCR engine: %v", err)
	}

	// Initialize recognition processor
	proc, err := processor.NewRecognitionProcessor(&processor.ProcessorConfig{
		MaxImageSize:      cfg.MaxImageSize,
		RecognitionBudget: cfg.RecognitionBudgetDuration(),
		EngineFactory:     factory,
		Presets:           presets,
		DefaultPreset:     cfg.DefaultPreset,
		Store:             storageManager,
	})
	if err != nil {
		log.Fatalf("Failed to initialize recognition processor: %v", err)
	}
	log.Printf("Recognition processor initialized")

	// Initialize queue consumer
	log.Printf("Connecting to Redis queue...")
	queueConsumer, err := newConsumer(cfg, proc)
	if err != nil {
		log.Fatalf("Failed to initialize queue consumer: %v", err)
	}

	if err := queueConsumer.start(); err != nil {
		log.Fatalf("Failed to start queue consumer: %v", err)
	}

	// Print startup summary
	log.Printf("===========================================")
	log.Printf("OCR Worker is READY")
	log.Printf("===========================================")
	log.Printf("Queue: %s (%s)", cfg.QueueName, cfg.QueueBackend)
	log.Printf("Workers: %d", cfg.WorkerConcurrency)
	log.Printf("Recognition budget: %v", cfg.RecognitionBudgetDuration())
	log.Printf("Job timeout: %v", cfg.ProcessingTimeoutDuration())
	log.Printf("===========================================")
	log.Printf("Waiting for jobs...")

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	sig := <-sigChan
	log.Printf("Received signal %v, initiating graceful shutdown...", sig)
	cancel()

	log.Printf("Stopping queue consumer...")
	if err := queueConsumer.stop(); err != nil {
		log.Printf("Error stopping queue consumer: %v", err)
	} else {
		log.Printf("Queue consumer stopped successfully")
	}

	log.Printf("Closing storage manager...")
	if err := storageManager.Close(); err != nil {
		log.Printf("Error closing storage manager: %v", err)
	} else {
		log.Printf("Storage manager closed")
	}

	log.Printf("Shutdown complete")
}

func newConsumer(cfg *config.Config, proc processor.RecognitionProcessorInterface) (consumer, error) {
	switch cfg.QueueBackend {
	case "asynq":
		c, err := queue.NewConsumer(&queue.ConsumerConfig{
			RedisURL:          cfg.RedisURL,
			QueueName:         cfg.QueueName,
			Concurrency:       cfg.WorkerConcurrency,
			Processor:         proc,
			ProcessingTimeout: int64(cfg.ProcessingTimeout),
		})
		if err != nil {
			return nil, err
		}
		return asynqBackend{c}, nil

	case "redis":
		c, err := queue.NewRedisConsumer(&queue.RedisConsumerConfig{
			RedisURL:          cfg.RedisURL,
			QueueName:         cfg.QueueName,
			Concurrency:       cfg.WorkerConcurrency,
			Processor:         proc,
			ProcessingTimeout: int64(cfg.ProcessingTimeout),
			MaxRetries:        cfg.MaxRetries,
			RateLimit:         cfg.JobRateLimit,
			RateBurst:         cfg.JobRateBurst,
		})
		if err != nil {
			return nil, err
		}
		return redisBackend{c}, nil

	default:
		return nil, fmt.Errorf("unknown queue backend %q", cfg.QueueBackend)
	}
}
