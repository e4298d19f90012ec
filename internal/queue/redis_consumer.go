/**
 * Direct Redis Queue Consumer for the OCR Worker
 *
 * Compatible with the TypeScript RedisQueue implementation.
 * Uses simple Redis LIST operations for perfect compatibility:
 *   <queue>            LIST of job IDs (LPUSH by producers, BRPOP here)
 *   <queue>:data       HASH job ID -> RedisJobData JSON
 *   <queue>:processing SET, <queue>:completed SET, <queue>:failed SET
 *   <queue>:results    HASH job ID -> ProcessResult JSON
 *   <queue>:errors     HASH job ID -> failure metadata JSON
 *   <queue>:events     PUB/SUB channel for status and progress events
 */

package queue

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	werrors "github.com/adverant/nexus/ocr-worker/internal/errors"
	"github.com/adverant/nexus/ocr-worker/internal/processor"
)

var errNoJobs = stderrors.New("no jobs available")

// RedisJobData represents a job from the Redis queue
type RedisJobData struct {
	ID         string     `json:"id"`
	Type       string     `json:"type"`
	Payload    JobPayload `json:"payload"`
	CreatedAt  time.Time  `json:"createdAt"`
	Attempts   int        `json:"attempts"`
	MaxRetries int        `json:"maxRetries"`
}

// RedisConsumer handles job consumption from Redis queue
type RedisConsumer struct {
	client    *redis.Client
	processor processor.RecognitionProcessorInterface
	config    *RedisConsumerConfig
	limiter   *rate.Limiter
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

// RedisConsumerConfig holds consumer configuration
type RedisConsumerConfig struct {
	RedisURL          string
	QueueName         string
	Concurrency       int
	Processor         processor.RecognitionProcessorInterface
	ProcessingTimeout int64   // Processing timeout in milliseconds (default: 300000 = 5 minutes)
	MaxRetries        int     // used when a job does not carry its own maxRetries
	RateLimit         float64 // jobs per second taken off the queue, 0 = unlimited
	RateBurst         int
}

// NewRedisConsumer creates a new Redis-based queue consumer
func NewRedisConsumer(cfg *RedisConsumerConfig) (*RedisConsumer, error) {
	if cfg.RedisURL == "" {
		return nil, fmt.Errorf("RedisURL is required")
	}

	if cfg.Processor == nil {
		return nil, fmt.Errorf("Processor is required")
	}

	// Parse Redis URL
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	// Create Redis client
	client := redis.NewClient(opt)

	// Test connection
	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return newRedisConsumer(client, cfg), nil
}

func newRedisConsumer(client *redis.Client, cfg *RedisConsumerConfig) *RedisConsumer {
	if cfg.QueueName == "" {
		cfg.QueueName = "ocr:jobs"
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}

	consumerCtx, cancel := context.WithCancel(context.Background())

	return &RedisConsumer{
		client:    client,
		processor: cfg.Processor,
		config:    cfg,
		limiter:   newLimiter(cfg.RateLimit, cfg.RateBurst),
		ctx:       consumerCtx,
		cancel:    cancel,
	}
}

func newLimiter(perSecond float64, burst int) *rate.Limiter {
	if burst < 1 {
		burst = 1
	}
	if perSecond <= 0 {
		return rate.NewLimiter(rate.Inf, burst)
	}
	return rate.NewLimiter(rate.Limit(perSecond), burst)
}

func (c *RedisConsumer) key(suffix string) string {
	return c.config.QueueName + ":" + suffix
}

// Start begins processing jobs from the queue
func (c *RedisConsumer) Start() error {
	log.Printf("Starting Redis queue consumer (concurrency=%d, queue=%s, rate=%g/s)...",
		c.config.Concurrency, c.config.QueueName, c.config.RateLimit)

	// Start worker goroutines
	for i := 0; i < c.config.Concurrency; i++ {
		c.wg.Add(1)
		go c.worker(i)
	}

	log.Println("Queue consumer started successfully")
	return nil
}

// Stop gracefully stops the consumer. In-flight jobs see their context
// cancelled and are re-queued.
func (c *RedisConsumer) Stop() error {
	log.Println("Stopping queue consumer...")
	c.cancel()
	c.wg.Wait()
	return c.client.Close()
}

// worker is a goroutine that processes jobs
func (c *RedisConsumer) worker(id int) {
	defer c.wg.Done()
	log.Printf("Worker %d started", id)

	for {
		select {
		case <-c.ctx.Done():
			log.Printf("Worker %d stopping", id)
			return
		default:
			if err := c.processNextJob(); err != nil {
				if stderrors.Is(err, errNoJobs) || c.ctx.Err() != nil {
					continue
				}
				log.Printf("Worker %d error: %v", id, err)
				// Small delay before trying again
				select {
				case <-time.After(time.Second):
				case <-c.ctx.Done():
				}
			}
		}
	}
}

// processNextJob fetches and processes the next job from the queue
func (c *RedisConsumer) processNextJob() error {
	if err := c.limiter.Wait(c.ctx); err != nil {
		return err
	}

	// Block for up to 5 seconds waiting for a job
	result, err := c.client.BRPop(c.ctx, 5*time.Second, c.config.QueueName).Result()
	if err != nil {
		if err == redis.Nil {
			return errNoJobs
		}
		return fmt.Errorf("failed to fetch job: %w", err)
	}

	if len(result) < 2 {
		return fmt.Errorf("invalid job result")
	}

	id := result[1]

	// Get job data
	jobData, err := c.client.HGet(c.ctx, c.key("data"), id).Result()
	if err != nil {
		return fmt.Errorf("failed to get job data: %w", err)
	}

	var job RedisJobData
	if err := json.Unmarshal([]byte(jobData), &job); err != nil {
		c.recordFailure(id, map[string]interface{}{"error": err.Error()})
		return fmt.Errorf("failed to unmarshal job %s: %w", id, err)
	}
	if job.Payload.JobID == "" {
		job.Payload.JobID = job.ID
	}
	if err := job.Payload.Validate(); err != nil {
		c.recordFailure(job.Payload.JobID, map[string]interface{}{"error": err.Error()})
		return err
	}

	jobID := job.Payload.JobID

	// Create/update job record in PostgreSQL. This is idempotent.
	if err := c.processor.UpdateJobStatus(c.ctx, jobID, "processing", 0, map[string]interface{}{
		"filename": job.Payload.Filename,
		"userId":   job.Payload.UserID,
		"preset":   job.Payload.Preset,
		"attempt":  job.Attempts + 1,
	}); err != nil {
		log.Printf("[Job %s] Warning: Failed to update status to processing: %v", jobID, err)
	}
	c.client.SAdd(c.ctx, c.key("processing"), jobID)
	c.publish(jobID, "processing", nil)

	log.Printf("[Job %s] Processing %s (attempt %d)", jobID, job.Payload.Filename, job.Attempts+1)

	startTime := time.Now()
	processResult, err := c.processJob(c.ctx, &job, func(progress int) {
		c.publish(jobID, "progress", map[string]interface{}{"progress": progress})
	})
	duration := time.Since(startTime)

	if err != nil {
		log.Printf("[Job %s] Failed after %v: %v", jobID, duration, err)

		job.Attempts++
		if c.shouldRetry(&job, err) {
			c.requeue(&job)
			return nil
		}

		meta := failureMetadata(err, duration)
		meta["attempts"] = job.Attempts
		if updateErr := c.processor.UpdateJobStatus(context.Background(), jobID, "failed", 100, meta); updateErr != nil {
			log.Printf("[Job %s] Warning: Failed to update status to failed: %v", jobID, updateErr)
		}
		c.recordFailure(jobID, meta)
		return nil
	}

	if err := c.processor.UpdateJobStatus(c.ctx, jobID, "completed", 100, completionMetadata(processResult)); err != nil {
		log.Printf("[PostgreSQL] ERROR: Failed to update job status: %v", err)
	}
	c.recordSuccess(jobID, processResult)
	log.Printf("[Job %s] Completed in %v (words=%d, confidence=%.2f, result=%s)",
		jobID, duration, processResult.WordCount, processResult.Confidence, processResult.ResultID)

	return nil
}

// processJob runs recognition for one queued job
func (c *RedisConsumer) processJob(ctx context.Context, job *RedisJobData, onProgress processor.ProgressFunc) (*processor.ProcessResult, error) {
	timeout := time.Duration(c.config.ProcessingTimeout) * time.Millisecond
	return runJob(ctx, c.processor, &job.Payload, timeout, onProgress)
}

// shouldRetry decides whether a failed job goes back on the queue. Jobs
// interrupted by shutdown are always re-queued.
func (c *RedisConsumer) shouldRetry(job *RedisJobData, err error) bool {
	if c.ctx.Err() != nil {
		return true
	}
	if !werrors.Retryable(err) {
		return false
	}
	maxRetries := job.MaxRetries
	if maxRetries <= 0 {
		maxRetries = c.config.MaxRetries
	}
	return job.Attempts < maxRetries
}

func (c *RedisConsumer) requeue(job *RedisJobData) {
	// the consumer context may already be cancelled during shutdown
	ctx := context.Background()
	updatedData, err := json.Marshal(job)
	if err != nil {
		log.Printf("[Job %s] ERROR: failed to marshal job for retry: %v", job.Payload.JobID, err)
		return
	}
	pipe := c.client.TxPipeline()
	pipe.HSet(ctx, c.key("data"), job.ID, updatedData)
	pipe.SRem(ctx, c.key("processing"), job.Payload.JobID)
	pipe.LPush(ctx, c.config.QueueName, job.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("[Job %s] ERROR: failed to re-queue: %v", job.Payload.JobID, err)
		return
	}
	log.Printf("[Job %s] Re-queued for retry (attempt %d)", job.Payload.JobID, job.Attempts)
}

func (c *RedisConsumer) recordSuccess(jobID string, result *processor.ProcessResult) {
	resultData, err := json.Marshal(result)
	if err != nil {
		log.Printf("[Job %s] ERROR: failed to marshal result: %v", jobID, err)
	}
	pipe := c.client.TxPipeline()
	pipe.SRem(c.ctx, c.key("processing"), jobID)
	pipe.SAdd(c.ctx, c.key("completed"), jobID)
	if resultData != nil {
		pipe.HSet(c.ctx, c.key("results"), jobID, resultData)
	}
	if _, err := pipe.Exec(c.ctx); err != nil {
		log.Printf("[Job %s] ERROR: failed to record completion in Redis: %v", jobID, err)
	}
	c.publish(jobID, "completed", map[string]interface{}{
		"resultId":   result.ResultID,
		"confidence": result.Confidence,
	})
}

func (c *RedisConsumer) recordFailure(jobID string, meta map[string]interface{}) {
	ctx := context.Background()
	errorData, _ := json.Marshal(meta)
	pipe := c.client.TxPipeline()
	pipe.SRem(ctx, c.key("processing"), jobID)
	pipe.SAdd(ctx, c.key("failed"), jobID)
	pipe.HSet(ctx, c.key("errors"), jobID, errorData)
	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("[Job %s] ERROR: failed to record failure in Redis: %v", jobID, err)
	}
	c.publish(jobID, "failed", map[string]interface{}{"error": meta["error"]})
}

// publish sends an event for WebSocket streaming
func (c *RedisConsumer) publish(jobID, status string, fields map[string]interface{}) {
	eventData, _ := json.Marshal(jobEvent(jobID, status, fields))
	if err := c.client.Publish(context.Background(), c.key("events"), eventData).Err(); err != nil {
		log.Printf("[Job %s] Warning: failed to publish %s event: %v", jobID, status, err)
	}
}

func jobEvent(jobID, status string, fields map[string]interface{}) map[string]interface{} {
	event := map[string]interface{}{
		"event":     fmt.Sprintf("job:%s", status),
		"jobId":     jobID,
		"timestamp": time.Now().Format(time.RFC3339),
	}
	for k, v := range fields {
		event[k] = v
	}
	return event
}

// GetStats returns queue statistics
func (c *RedisConsumer) GetStats(ctx context.Context) (map[string]int64, error) {
	pipe := c.client.Pipeline()
	waiting := pipe.LLen(ctx, c.config.QueueName)
	processing := pipe.SCard(ctx, c.key("processing"))
	completed := pipe.SCard(ctx, c.key("completed"))
	failed := pipe.SCard(ctx, c.key("failed"))
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to read queue stats: %w", err)
	}

	return map[string]int64{
		"waiting":    waiting.Val(),
		"processing": processing.Val(),
		"completed":  completed.Val(),
		"failed":     failed.Val(),
	}, nil
}
