/**
 * Asynq Queue Consumer for the OCR Worker
 *
 * Consumes "ocr:recognize" tasks through asynq. The same package provides
 * the producer side used by ocrctl.
 */

package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	werrors "github.com/adverant/nexus/ocr-worker/internal/errors"
	"github.com/adverant/nexus/ocr-worker/internal/processor"
)

// TaskRecognize is the asynq task type for recognition jobs
const TaskRecognize = "ocr:recognize"

// Consumer handles job consumption from Redis queue
type Consumer struct {
	server    *asynq.Server
	mux       *asynq.ServeMux
	processor processor.RecognitionProcessorInterface
	config    *ConsumerConfig
}

// ConsumerConfig holds consumer configuration
type ConsumerConfig struct {
	RedisURL          string
	QueueName         string
	Concurrency       int
	Processor         processor.RecognitionProcessorInterface
	ProcessingTimeout int64 // Processing timeout in milliseconds (default: 300000 = 5 minutes)
}

// NewConsumer creates a new queue consumer
func NewConsumer(cfg *ConsumerConfig) (*Consumer, error) {
	if cfg.RedisURL == "" {
		return nil, fmt.Errorf("RedisURL is required")
	}

	if cfg.QueueName == "" {
		return nil, fmt.Errorf("QueueName is required")
	}

	if cfg.Processor == nil {
		return nil, fmt.Errorf("Processor is required")
	}

	// Parse Redis connection options
	redisOpt, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	// Create Asynq server for task processing
	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: cfg.Concurrency,
			Queues: map[string]int{
				cfg.QueueName: 10, // Priority 10 for main queue
				"default":     1,  // Priority 1 for fallback
			},
			RetryDelayFunc: retryDelay,
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				retried, _ := asynq.GetRetryCount(ctx)
				maxRetry, _ := asynq.GetMaxRetry(ctx)
				log.Printf("Task processing error: type=%s, retry=%d/%d, error=%v",
					task.Type(), retried, maxRetry, err)
			}),
		},
	)

	consumer := &Consumer{
		server:    server,
		processor: cfg.Processor,
		config:    cfg,
	}
	consumer.mux = consumer.newMux()

	return consumer, nil
}

func (c *Consumer) newMux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskRecognize, c.handleRecognize)
	return mux
}

// retryDelay is exponential backoff: 5s, 10s, 20s, capped at 60s
func retryDelay(n int, err error, task *asynq.Task) time.Duration {
	if n < 0 {
		n = 0
	}
	if n > 4 {
		return 60 * time.Second
	}
	delay := time.Duration(5*(1<<uint(n))) * time.Second
	if delay > 60*time.Second {
		delay = 60 * time.Second
	}
	return delay
}

// Start starts the queue consumer
func (c *Consumer) Start(ctx context.Context) error {
	log.Printf("Starting queue consumer (concurrency=%d, queue=%s)...",
		c.config.Concurrency, c.config.QueueName)

	if err := c.server.Start(c.mux); err != nil {
		return fmt.Errorf("failed to start asynq server: %w", err)
	}

	return nil
}

// Stop stops the queue consumer gracefully
func (c *Consumer) Stop(ctx context.Context) error {
	log.Printf("Stopping queue consumer...")

	c.server.Shutdown()

	log.Printf("Queue consumer stopped")
	return nil
}

// handleRecognize processes one recognition task
func (c *Consumer) handleRecognize(ctx context.Context, task *asynq.Task) error {
	startTime := time.Now()

	var payload JobPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal job data: %v: %w", err, asynq.SkipRetry)
	}
	if err := payload.Validate(); err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	log.Printf("[Job %s] Processing image: filename=%s, user=%s, preset=%s",
		payload.JobID, payload.Filename, payload.UserID, payload.Preset)

	if err := c.processor.UpdateJobStatus(ctx, payload.JobID, "processing", 0, map[string]interface{}{
		"filename": payload.Filename,
		"userId":   payload.UserID,
	}); err != nil {
		log.Printf("[Job %s] Warning: Failed to update status to processing: %v", payload.JobID, err)
	}

	timeout := time.Duration(c.config.ProcessingTimeout) * time.Millisecond
	result, err := runJob(ctx, c.processor, &payload, timeout, func(progress int) {
		if err := c.processor.UpdateJobStatus(ctx, payload.JobID, "processing", progress, nil); err != nil {
			log.Printf("[Job %s] Warning: Failed to record progress: %v", payload.JobID, err)
		}
	})

	duration := time.Since(startTime)

	if err != nil {
		log.Printf("[Job %s] Processing failed after %v: %v", payload.JobID, duration, err)

		if updateErr := c.processor.UpdateJobStatus(context.Background(), payload.JobID, "failed", 100, failureMetadata(err, duration)); updateErr != nil {
			log.Printf("[Job %s] Warning: Failed to update status to failed: %v", payload.JobID, updateErr)
		}

		if !werrors.Retryable(err) {
			return fmt.Errorf("recognition failed: %v: %w", err, asynq.SkipRetry)
		}
		return fmt.Errorf("recognition failed: %w", err)
	}

	log.Printf("[Job %s] Processing completed successfully in %v: confidence=%.2f, words=%d, resultId=%s",
		payload.JobID, duration, result.Confidence, result.WordCount, result.ResultID)

	if err := c.processor.UpdateJobStatus(ctx, payload.JobID, "completed", 100, completionMetadata(result)); err != nil {
		log.Printf("[Job %s] Warning: Failed to update status to completed: %v", payload.JobID, err)
	}

	if w := task.ResultWriter(); w != nil {
		if data, err := json.Marshal(result); err == nil {
			if _, err := w.Write(data); err != nil {
				log.Printf("[Job %s] Warning: Failed to write task result: %v", payload.JobID, err)
			}
		}
	}

	return nil
}

// GetStatistics returns consumer statistics
func (c *Consumer) GetStatistics() map[string]interface{} {
	return map[string]interface{}{
		"concurrency": c.config.Concurrency,
		"queue":       c.config.QueueName,
		"redisURL":    c.config.RedisURL,
	}
}

// NewRecognizeTask builds the asynq task for payload, assigning a job ID
// when it has none
func NewRecognizeTask(payload *JobPayload, queueName string, maxRetry int, timeout time.Duration) (*asynq.Task, error) {
	if payload.JobID == "" {
		payload.JobID = uuid.New().String()
	}
	if err := payload.Validate(); err != nil {
		return nil, err
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	opts := []asynq.Option{
		asynq.TaskID(payload.JobID),
		asynq.MaxRetry(maxRetry),
		asynq.Retention(24 * time.Hour),
	}
	if queueName != "" {
		opts = append(opts, asynq.Queue(queueName))
	}
	if timeout > 0 {
		// leave the handler room to record the failure after its own timeout
		opts = append(opts, asynq.Timeout(timeout+30*time.Second))
	}
	return asynq.NewTask(TaskRecognize, data, opts...), nil
}

// Producer enqueues recognition tasks
type Producer struct {
	client    *asynq.Client
	queueName string
	maxRetry  int
	timeout   time.Duration
}

// NewProducer creates an asynq producer for queueName
func NewProducer(redisURL, queueName string, maxRetry int, timeout time.Duration) (*Producer, error) {
	redisOpt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	return &Producer{
		client:    asynq.NewClient(redisOpt),
		queueName: queueName,
		maxRetry:  maxRetry,
		timeout:   timeout,
	}, nil
}

// Enqueue submits payload and returns the job ID
func (p *Producer) Enqueue(ctx context.Context, payload *JobPayload) (string, error) {
	task, err := NewRecognizeTask(payload, p.queueName, p.maxRetry, p.timeout)
	if err != nil {
		return "", err
	}
	info, err := p.client.EnqueueContext(ctx, task)
	if err != nil {
		return "", fmt.Errorf("failed to enqueue job %s: %w", payload.JobID, err)
	}
	log.Printf("[Job %s] Enqueued on %s", payload.JobID, info.Queue)
	return info.ID, nil
}

// Close closes the producer
func (p *Producer) Close() error {
	return p.client.Close()
}
