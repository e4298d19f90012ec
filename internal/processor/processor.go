/**
 * Recognition Processor for the OCR Worker
 *
 * Runs one recognition job end to end:
 * - Load the image from the job buffer or download it with retries
 * - Detect the format from magic bytes and decode to 8-bit grayscale
 * - Build the parameter registry from a preset plus per-job overrides
 * - Run a deadline-bounded recognition operation on a fresh engine
 * - Analyze layout, fingerprint the page and persist the result tree
 */

package processor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/adverant/nexus/ocr-worker/internal/engine"
	werrors "github.com/adverant/nexus/ocr-worker/internal/errors"
	"github.com/adverant/nexus/ocr-worker/internal/params"
	"github.com/adverant/nexus/ocr-worker/internal/pix"
	"github.com/adverant/nexus/ocr-worker/internal/recognition"
	"github.com/adverant/nexus/ocr-worker/internal/resulttree"
	"github.com/adverant/nexus/ocr-worker/internal/storage"
)

// RecognitionProcessorInterface defines the interface the queue consumers use
type RecognitionProcessorInterface interface {
	ProcessImage(ctx context.Context, req *ProcessRequest) (*ProcessResult, error)
	UpdateJobStatus(ctx context.Context, jobID string, status string, progress int, metadata map[string]interface{}) error
}

// ResultStore persists job status and recognition results
type ResultStore interface {
	UpdateJobStatus(ctx context.Context, update *storage.JobUpdate) error
	StoreRecognition(ctx context.Context, input *storage.RecognitionInput) (*storage.RecognitionOutput, error)
}

// ProcessorConfig holds processor configuration
type ProcessorConfig struct {
	MaxImageSize      int64
	RecognitionBudget time.Duration // engine deadline when a job sets none, 0 = unlimited
	EngineFactory     engine.Factory
	Presets           *PresetStore
	DefaultPreset     string
	Store             ResultStore // nil: results are returned but not persisted
	ProgressInterval  time.Duration
	HTTPClient        *http.Client
	DownloadRetries   int
	DownloadBackoff   time.Duration
}

// ProgressFunc receives engine progress, 0..100
type ProgressFunc func(progress int)

// ProcessRequest represents a recognition request
type ProcessRequest struct {
	JobID       string
	UserID      string
	Filename    string
	ImageURL    string
	ImageBuffer []byte
	Parameters  map[string]string
	Preset      string
	DeadlineMs  int
	Metadata    map[string]interface{}
	OnProgress  ProgressFunc
}

// ProcessResult represents the recognition result
type ProcessResult struct {
	JobID            string           `json:"jobId"`
	ResultID         string           `json:"resultId,omitempty"`
	Format           string           `json:"format"`
	Text             string           `json:"text"`
	Confidence       float64          `json:"confidence"`
	WordCount        int              `json:"wordCount"`
	LineCount        int              `json:"lineCount"`
	RegionsExtracted int              `json:"regionsExtracted"`
	TablesExtracted  int              `json:"tablesExtracted"`
	Preset           string           `json:"preset,omitempty"`
	Changed          []string         `json:"changedParameters"`
	Fingerprint      []float32        `json:"-"`
	Layout           *LayoutResult    `json:"layout,omitempty"`
	Tree             *resulttree.Node `json:"tree,omitempty"`
	ProcessingTimeMs int64            `json:"processingTimeMs"`
}

// RecognitionProcessor handles recognition jobs
type RecognitionProcessor struct {
	config         *ProcessorConfig
	store          ResultStore
	presets        *PresetStore
	layoutAnalyzer *LayoutAnalyzer
	httpClient     *http.Client
}

// NewRecognitionProcessor creates a new recognition processor
func NewRecognitionProcessor(cfg *ProcessorConfig) (*RecognitionProcessor, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	if cfg.EngineFactory == nil {
		return nil, fmt.Errorf("engine factory is required")
	}

	presets := cfg.Presets
	if presets == nil {
		presets, _ = NewPresetStore("")
	}

	if cfg.DefaultPreset != "" {
		if _, ok := presets.Get(cfg.DefaultPreset); !ok {
			return nil, fmt.Errorf("default preset %q not found (loaded: %v)", cfg.DefaultPreset, presets.Names())
		}
	}

	if cfg.Store == nil {
		log.Printf("WARNING: no result store configured. Recognition results will not be persisted.")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Minute}
	}

	return &RecognitionProcessor{
		config:         cfg,
		store:          cfg.Store,
		presets:        presets,
		layoutAnalyzer: NewLayoutAnalyzer(),
		httpClient:     httpClient,
	}, nil
}

// ProcessImage runs the recognition pipeline for one job. A cancelled run
// returns an error matching errors.ErrCancelled, any other failure one
// matching errors.ErrFailed or a validation error from the registry.
func (p *RecognitionProcessor) ProcessImage(ctx context.Context, req *ProcessRequest) (*ProcessResult, error) {
	startTime := time.Now()

	if req == nil {
		return nil, fmt.Errorf("request is required")
	}
	if req.JobID == "" {
		req.JobID = uuid.New().String()
	} else if _, err := uuid.Parse(req.JobID); err != nil {
		return nil, fmt.Errorf("invalid job ID %q: %w", req.JobID, err)
	}

	log.Printf("[Job %s] Starting recognition pipeline", req.JobID)

	// Step 1: Load image bytes
	data, err := p.loadImage(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to load image: %w", err)
	}

	// Step 2: Detect format and decode
	mimeType := detectMimeTypeFromMagicBytes(data)
	if !isSupportedImage(mimeType) {
		if mimeType == "" {
			mimeType = "unknown"
		}
		return nil, werrors.NewUnsupportedFormatError(req.JobID, mimeType)
	}

	decoded, format, err := pix.Decode(data)
	if err != nil {
		return nil, werrors.NewFailedError(fmt.Sprintf("failed to decode %s image", mimeType), err)
	}
	img := pix.Adopt(decoded)
	defer img.Close()
	log.Printf("[Job %s] Step 2: Decoded %s image %dx%d", req.JobID, format, decoded.Width, decoded.Height)

	// Step 3: Parameters
	reg, preset, err := p.buildRegistry(req)
	if err != nil {
		return nil, err
	}
	changed := reg.Changed()
	log.Printf("[Job %s] Step 3: Parameters ready (preset=%q, changed=%d)", req.JobID, preset, len(changed))

	// Step 4: Recognition
	eng, err := p.config.EngineFactory()
	if err != nil {
		return nil, werrors.NewFailedError("failed to open engine", err)
	}
	defer eng.Close()

	deadline := p.deadline(req)
	op := recognition.New(eng, img, reg, recognition.Options{
		Deadline: deadline,
		JobID:    req.JobID,
	})
	defer op.Close()

	log.Printf("[Job %s] Step 4: Recognizing (deadline=%v)", req.JobID, deadline)
	stopProgress := p.reportProgress(op, req.OnProgress)
	err = op.Start(ctx)
	stopProgress()
	if err != nil {
		log.Printf("[Job %s] Recognition ended in state %s at %d%%: %v", req.JobID, op.State(), op.Progress(), err)
		return nil, err
	}

	root, err := op.Result()
	if err != nil {
		return nil, err
	}

	// Step 5: Summarize, layout and fingerprint
	summary := Summarize(root)
	layout := p.layoutAnalyzer.Analyze(root)
	fingerprint := Fingerprint(root)

	result := &ProcessResult{
		JobID:            req.JobID,
		Format:           format,
		Text:             summary.Text,
		Confidence:       summary.Confidence,
		WordCount:        len(summary.Words),
		LineCount:        summary.Lines,
		RegionsExtracted: len(layout.Regions),
		TablesExtracted:  len(layout.Tables),
		Preset:           preset,
		Changed:          changed,
		Fingerprint:      fingerprint,
		Layout:           layout,
		Tree:             root,
	}

	// Step 6: Persist
	if p.store != nil {
		treeJSON, err := json.Marshal(root)
		if err != nil {
			return nil, werrors.NewFailedError("failed to serialize result tree", err)
		}

		values := make(map[string]string, len(changed))
		for _, pair := range reg.Pairs() {
			values[pair.Name] = pair.Value
		}

		out, err := p.store.StoreRecognition(ctx, &storage.RecognitionInput{
			JobID:       req.JobID,
			Text:        summary.Text,
			Confidence:  summary.Confidence,
			WordCount:   len(summary.Words),
			Tree:        treeJSON,
			Parameters:  values,
			Changed:     changed,
			Fingerprint: fingerprint,
		})
		if err != nil {
			return nil, werrors.NewStorageFailedError(req.JobID, err)
		}
		result.ResultID = out.ID
		log.Printf("[Job %s] Step 6: Stored result %s (qdrant point %s)", req.JobID, out.ID, out.QdrantPointID)
	}

	result.ProcessingTimeMs = time.Since(startTime).Milliseconds()
	log.Printf("[Job %s] Recognition pipeline complete: words=%d, confidence=%.2f, tables=%d, duration=%dms",
		req.JobID, result.WordCount, result.Confidence, result.TablesExtracted, result.ProcessingTimeMs)

	return result, nil
}

// buildRegistry applies the preset, then the per-job overrides in name order
func (p *RecognitionProcessor) buildRegistry(req *ProcessRequest) (*params.Registry, string, error) {
	reg := params.NewRegistry()

	name := req.Preset
	if name == "" {
		name = p.config.DefaultPreset
	}
	if name != "" {
		preset, ok := p.presets.Get(name)
		if !ok {
			return nil, "", fmt.Errorf("unknown preset %q", name)
		}
		if err := preset.Apply(reg); err != nil {
			return nil, "", err
		}
	}

	keys := make([]string, 0, len(req.Parameters))
	for k := range req.Parameters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := reg.SetString(k, req.Parameters[k]); err != nil {
			return nil, "", fmt.Errorf("parameter %s: %w", k, err)
		}
	}

	return reg, name, nil
}

// deadline picks the job deadline, capped by the configured budget
func (p *RecognitionProcessor) deadline(req *ProcessRequest) time.Duration {
	budget := p.config.RecognitionBudget
	if req.DeadlineMs <= 0 {
		return budget
	}
	d := time.Duration(req.DeadlineMs) * time.Millisecond
	if budget > 0 && d > budget {
		return budget
	}
	return d
}

// reportProgress polls the operation and forwards changes to fn until the
// returned stop function is called
func (p *RecognitionProcessor) reportProgress(op *recognition.Operation, fn ProgressFunc) func() {
	if fn == nil {
		return func() {}
	}

	interval := p.config.ProgressInterval
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}

	stop := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		last := -1
		for {
			select {
			case <-stop:
				return
			case <-op.Done():
				return
			case <-ticker.C:
				if progress := op.Progress(); progress != last {
					last = progress
					fn(progress)
				}
			}
		}
	}()

	return func() {
		close(stop)
		<-finished
	}
}

// UpdateJobStatus updates job status in the result store
func (p *RecognitionProcessor) UpdateJobStatus(ctx context.Context, jobID string, status string, progress int, metadata map[string]interface{}) error {
	if p.store == nil {
		return nil
	}

	update := &storage.JobUpdate{
		JobID:    jobID,
		Status:   status,
		Progress: progress,
		Metadata: metadata,
	}

	if metadata != nil {
		if confidence, ok := metadata["confidence"].(float64); ok {
			update.Confidence = confidence
		}
		if processingTime, ok := metadata["processingTime"].(int64); ok {
			update.ProcessingTimeMs = processingTime
		}
		if resultID, ok := metadata["resultId"].(string); ok {
			update.ResultID = resultID
		}
		if preset, ok := metadata["preset"].(string); ok {
			update.Preset = preset
		}
		if errorMsg, ok := metadata["error"].(string); ok {
			update.ErrorCode = "PROCESSING_ERROR"
			update.ErrorMessage = errorMsg
		}
		if code, ok := metadata["error_code"].(string); ok {
			update.ErrorCode = code
			if msg, ok := metadata["message"].(string); ok && update.ErrorMessage == "" {
				update.ErrorMessage = msg
			}
		}
	}

	return p.store.UpdateJobStatus(ctx, update)
}

// loadImage loads the image from the buffer or URL
func (p *RecognitionProcessor) loadImage(ctx context.Context, req *ProcessRequest) ([]byte, error) {
	if len(req.ImageBuffer) > 0 {
		if p.config.MaxImageSize > 0 && int64(len(req.ImageBuffer)) > p.config.MaxImageSize {
			return nil, fmt.Errorf("image size exceeds maximum: %d > %d bytes",
				len(req.ImageBuffer), p.config.MaxImageSize)
		}
		log.Printf("[Job %s] Using image buffer (%d bytes)", req.JobID, len(req.ImageBuffer))
		return req.ImageBuffer, nil
	}

	if req.ImageURL != "" {
		log.Printf("[Job %s] Downloading image from URL: %s", req.JobID, req.ImageURL)
		data, err := p.downloadImage(ctx, req.JobID, req.ImageURL)
		if err != nil {
			return nil, fmt.Errorf("failed to download image: %w", err)
		}
		return data, nil
	}

	return nil, fmt.Errorf("no image source provided (buffer or URL)")
}

// downloadImage downloads an image with exponential backoff between attempts
func (p *RecognitionProcessor) downloadImage(ctx context.Context, jobID string, imageURL string) ([]byte, error) {
	maxRetries := p.config.DownloadRetries
	if maxRetries <= 0 {
		maxRetries = 5
	}
	initialBackoff := p.config.DownloadBackoff
	if initialBackoff <= 0 {
		initialBackoff = time.Second
	}
	const maxBackoff = 32 * time.Second

	maxReadBytes := p.config.MaxImageSize
	if maxReadBytes <= 0 {
		maxReadBytes = 1 << 30
	}

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		if attempt > 1 {
			backoff := time.Duration(float64(initialBackoff) * math.Pow(2, float64(attempt-2)))
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
			log.Printf("[Job %s] Retrying in %v...", jobID, backoff)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, fmt.Errorf("context cancelled during retry backoff: %w", ctx.Err())
			}
		}

		log.Printf("[Job %s] Download attempt %d/%d", jobID, attempt, maxRetries)
		data, err := p.fetch(ctx, imageURL, maxReadBytes)
		if err != nil {
			lastErr = err
			log.Printf("[Job %s] Download attempt %d failed: %v", jobID, attempt, err)
			continue
		}

		log.Printf("[Job %s] Download successful on attempt %d: %d bytes", jobID, attempt, len(data))
		return data, nil
	}

	return nil, fmt.Errorf("failed to download image after %d attempts: %w", maxRetries, lastErr)
}

func (p *RecognitionProcessor) fetch(ctx context.Context, imageURL string, maxBytes int64) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	if resp.ContentLength > maxBytes {
		return nil, fmt.Errorf("image size exceeds maximum: %d > %d bytes", resp.ContentLength, maxBytes)
	}

	// read one byte past the limit to tell "exactly max" from "too large"
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("image size exceeds maximum of %d bytes", maxBytes)
	}
	return data, nil
}

// isSupportedImage reports whether the decoder handles mimeType
func isSupportedImage(mimeType string) bool {
	switch mimeType {
	case "image/png", "image/jpeg", "image/gif", "image/webp", "image/tiff", "image/bmp":
		return true
	}
	return false
}

// detectMimeTypeFromMagicBytes detects the actual MIME type from content magic bytes
func detectMimeTypeFromMagicBytes(data []byte) string {
	if len(data) < 4 {
		return ""
	}

	// PDF: %PDF-
	if bytes.HasPrefix(data, []byte("%PDF")) {
		return "application/pdf"
	}

	// PNG: 0x89 'P' 'N' 'G' 0x0D 0x0A 0x1A 0x0A
	if len(data) >= 8 && bytes.HasPrefix(data, []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}) {
		return "image/png"
	}

	// JPEG: 0xFF 0xD8 0xFF
	if bytes.HasPrefix(data, []byte{0xFF, 0xD8, 0xFF}) {
		return "image/jpeg"
	}

	// GIF: 'G' 'I' 'F' '8' ('7' or '9') 'a'
	if bytes.HasPrefix(data, []byte("GIF87a")) || bytes.HasPrefix(data, []byte("GIF89a")) {
		return "image/gif"
	}

	// WebP: 'R' 'I' 'F' 'F' .... 'W' 'E' 'B' 'P'
	if len(data) > 12 && bytes.HasPrefix(data, []byte("RIFF")) && string(data[8:12]) == "WEBP" {
		return "image/webp"
	}

	// TIFF: little-endian or big-endian byte order mark
	if bytes.HasPrefix(data, []byte{0x49, 0x49, 0x2A, 0x00}) || bytes.HasPrefix(data, []byte{0x4D, 0x4D, 0x00, 0x2A}) {
		return "image/tiff"
	}

	// BMP: 'B' 'M'
	if bytes.HasPrefix(data, []byte("BM")) {
		return "image/bmp"
	}

	// ZIP containers (Office documents, EPUB)
	if bytes.HasPrefix(data, []byte{0x50, 0x4B, 0x03, 0x04}) {
		return "application/zip"
	}

	return ""
}
