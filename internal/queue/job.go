/**
 * Job payloads shared by both queue backends
 *
 * Producers are the TypeScript API (Redis list backend) and ocrctl
 * (asynq backend). Both send the same JSON payload.
 */

package queue

import (
	"context"
	"encoding/base64"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log"
	"strconv"
	"time"

	werrors "github.com/adverant/nexus/ocr-worker/internal/errors"
	"github.com/adverant/nexus/ocr-worker/internal/processor"
)

// DefaultProcessingTimeout bounds a job when the config sets none
const DefaultProcessingTimeout = 5 * time.Minute

// JobPayload contains the recognition job data
type JobPayload struct {
	JobID       string                 `json:"jobId"`
	UserID      string                 `json:"userId,omitempty"`
	Filename    string                 `json:"filename,omitempty"`
	ImageURL    string                 `json:"imageUrl,omitempty"`
	ImageBuffer []byte                 `json:"imageBuffer,omitempty"` // base64 on the wire
	Parameters  map[string]string      `json:"parameters,omitempty"`
	Preset      string                 `json:"preset,omitempty"`
	DeadlineMs  int                    `json:"deadlineMs,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

// UnmarshalJSON implements custom JSON unmarshaling for JobPayload.
// imageBuffer may be a base64 string or a Node.js Buffer object, parameter
// values may be JSON strings, numbers or booleans, and the older
// fileUrl/fileBuffer names are accepted.
func (p *JobPayload) UnmarshalJSON(data []byte) error {
	// Create alias type to avoid recursion
	type Alias JobPayload
	aux := &struct {
		ImageBuffer interface{}            `json:"imageBuffer,omitempty"`
		FileBuffer  interface{}            `json:"fileBuffer,omitempty"`
		FileURL     string                 `json:"fileUrl,omitempty"`
		Parameters  map[string]interface{} `json:"parameters,omitempty"`
		*Alias
	}{
		Alias: (*Alias)(p),
	}

	if err := json.Unmarshal(data, &aux); err != nil {
		return fmt.Errorf("failed to unmarshal JobPayload: %w", err)
	}

	if p.ImageURL == "" {
		p.ImageURL = aux.FileURL
	}

	raw := aux.ImageBuffer
	if raw == nil {
		raw = aux.FileBuffer
	}
	buf, err := decodeBuffer(raw)
	if err != nil {
		return err
	}
	p.ImageBuffer = buf

	if len(aux.Parameters) > 0 {
		p.Parameters = make(map[string]string, len(aux.Parameters))
		for name, v := range aux.Parameters {
			s, err := parameterString(v)
			if err != nil {
				return fmt.Errorf("parameter %s: %w", name, err)
			}
			p.Parameters[name] = s
		}
	}

	return nil
}

func decodeBuffer(raw interface{}) ([]byte, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil

	case string:
		// Base64 string format
		decoded, err := base64.StdEncoding.DecodeString(v)
		if err != nil {
			return nil, fmt.Errorf("failed to decode base64 imageBuffer: %w", err)
		}
		return decoded, nil

	case map[string]interface{}:
		// Node.js Buffer object format
		bufferType, ok := v["type"].(string)
		if !ok || bufferType != "Buffer" {
			return nil, fmt.Errorf("invalid Buffer object format (missing or incorrect 'type' field)")
		}
		dataArray, ok := v["data"].([]interface{})
		if !ok {
			return nil, fmt.Errorf("Buffer object missing 'data' array")
		}
		out := make([]byte, len(dataArray))
		for i, val := range dataArray {
			byteVal, ok := val.(float64)
			if !ok || byteVal < 0 || byteVal > 255 {
				return nil, fmt.Errorf("invalid byte value in Buffer data array at index %d", i)
			}
			out[i] = byte(byteVal)
		}
		return out, nil

	default:
		return nil, fmt.Errorf("imageBuffer must be either base64 string or Buffer object, got %T", v)
	}
}

func parameterString(v interface{}) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(t), nil
	default:
		return "", fmt.Errorf("unsupported value type %T", v)
	}
}

// Validate checks the payload carries an image source
func (p *JobPayload) Validate() error {
	if p.JobID == "" {
		return fmt.Errorf("jobId is required")
	}
	if len(p.ImageBuffer) == 0 && p.ImageURL == "" {
		return fmt.Errorf("job %s has neither imageBuffer nor imageUrl", p.JobID)
	}
	return nil
}

func (p *JobPayload) request(onProgress processor.ProgressFunc) *processor.ProcessRequest {
	return &processor.ProcessRequest{
		JobID:       p.JobID,
		UserID:      p.UserID,
		Filename:    p.Filename,
		ImageURL:    p.ImageURL,
		ImageBuffer: p.ImageBuffer,
		Parameters:  p.Parameters,
		Preset:      p.Preset,
		DeadlineMs:  p.DeadlineMs,
		Metadata:    p.Metadata,
		OnProgress:  onProgress,
	}
}

// runJob processes one payload under the job timeout. A run stopped by the
// timeout reports PROCESSING_TIMEOUT rather than CANCELLED so it can be
// retried.
func runJob(ctx context.Context, proc processor.RecognitionProcessorInterface, payload *JobPayload, timeout time.Duration, onProgress processor.ProgressFunc) (*processor.ProcessResult, error) {
	if timeout <= 0 {
		timeout = DefaultProcessingTimeout
	}
	log.Printf("[Job %s] Processing timeout set to: %v", payload.JobID, timeout)

	processCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	result, err := proc.ProcessImage(processCtx, payload.request(onProgress))
	if err != nil {
		if stderrors.Is(processCtx.Err(), context.DeadlineExceeded) {
			return nil, werrors.NewProcessingTimeoutError(payload.JobID, timeout, err)
		}
		return nil, err
	}
	return result, nil
}

// failureMetadata is the job status metadata recorded for err
func failureMetadata(err error, duration time.Duration) map[string]interface{} {
	var werr *werrors.Error
	if stderrors.As(err, &werr) {
		meta := werr.ToMap()
		meta["error"] = err.Error()
		meta["processingTime"] = duration.Milliseconds()
		return meta
	}
	return map[string]interface{}{
		"error":          err.Error(),
		"processingTime": duration.Milliseconds(),
	}
}

// completionMetadata is the job status metadata recorded for a result
func completionMetadata(result *processor.ProcessResult) map[string]interface{} {
	return map[string]interface{}{
		"confidence":       result.Confidence,
		"processingTime":   result.ProcessingTimeMs,
		"resultId":         result.ResultID,
		"preset":           result.Preset,
		"wordCount":        result.WordCount,
		"tablesExtracted":  result.TablesExtracted,
		"regionsExtracted": result.RegionsExtracted,
	}
}
