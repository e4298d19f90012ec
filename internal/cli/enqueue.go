package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/adverant/nexus/ocr-worker/internal/queue"
)

var (
	enqueueRedisURL string
	enqueueQueue    string
	enqueueParams   []string
	enqueuePreset   string
	enqueueDeadline int
	enqueueUser     string
	enqueueRetries  int
	enqueueTimeout  time.Duration
)

var enqueueCmd = &cobra.Command{
	Use:   "enqueue <image-file-or-url>",
	Short: "Queue an image for the asynq worker backend",
	Long: `Enqueue submits a recognition task that a worker running with
QUEUE_BACKEND=asynq picks up. An http(s) argument is sent as a URL for the
worker to download, anything else is read and sent inline.`,
	Args: cobra.ExactArgs(1),
	RunE: runEnqueue,
}

func init() {
	f := enqueueCmd.Flags()
	f.StringVar(&enqueueRedisURL, "redis", envOr("REDIS_URL", "redis://localhost:6379"), "Redis URL")
	f.StringVarP(&enqueueQueue, "queue", "q", envOr("QUEUE_NAME", "ocr:jobs"), "queue name")
	f.StringArrayVarP(&enqueueParams, "param", "p", nil, "engine parameter as name=value (repeatable)")
	f.StringVar(&enqueuePreset, "preset", "", "preset name known to the worker")
	f.IntVar(&enqueueDeadline, "deadline", 0, "recognition deadline in milliseconds (0 = worker budget)")
	f.StringVar(&enqueueUser, "user", "", "user ID recorded with the job")
	f.IntVar(&enqueueRetries, "max-retry", 3, "retries for retryable failures")
	f.DurationVar(&enqueueTimeout, "timeout", queue.DefaultProcessingTimeout, "job timeout")
	rootCmd.AddCommand(enqueueCmd)
}

func runEnqueue(cmd *cobra.Command, args []string) error {
	payload, err := buildPayload(args[0])
	if err != nil {
		return err
	}

	producer, err := queue.NewProducer(enqueueRedisURL, enqueueQueue, enqueueRetries, enqueueTimeout)
	if err != nil {
		return err
	}
	defer producer.Close()

	id, err := producer.Enqueue(commandContext(cmd), payload)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), id)
	return nil
}

// buildPayload turns the command line into a job payload
func buildPayload(source string) (*queue.JobPayload, error) {
	assignments, err := parseAssignments(enqueueParams)
	if err != nil {
		return nil, err
	}
	payload := &queue.JobPayload{
		UserID:     enqueueUser,
		Parameters: assignments,
		Preset:     enqueuePreset,
		DeadlineMs: enqueueDeadline,
	}

	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		payload.ImageURL = source
		payload.Filename = filepath.Base(source)
		return payload, nil
	}

	data, err := os.ReadFile(source)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	payload.ImageBuffer = data
	payload.Filename = filepath.Base(source)
	return payload, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
