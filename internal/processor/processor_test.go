package processor

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adverant/nexus/ocr-worker/internal/engine/enginetest"
	werrors "github.com/adverant/nexus/ocr-worker/internal/errors"
	"github.com/adverant/nexus/ocr-worker/internal/logging"
	"github.com/adverant/nexus/ocr-worker/internal/params"
	"github.com/adverant/nexus/ocr-worker/internal/storage"
)

type fakeStore struct {
	mu       sync.Mutex
	updates  []*storage.JobUpdate
	stored   []*storage.RecognitionInput
	storeErr error
}

func (s *fakeStore) UpdateJobStatus(_ context.Context, u *storage.JobUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates = append(s.updates, u)
	return nil
}

func (s *fakeStore) StoreRecognition(_ context.Context, in *storage.RecognitionInput) (*storage.RecognitionOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.storeErr != nil {
		return nil, s.storeErr
	}
	s.stored = append(s.stored, in)
	return &storage.RecognitionOutput{
		ID:            fmt.Sprintf("result-%d", len(s.stored)),
		JobID:         in.JobID,
		QdrantPointID: "point",
		CreatedAt:     time.Now(),
	}, nil
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0xFF
	}
	img.SetGray(1, 1, color.Gray{Y: 0})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newTestProcessor(t *testing.T, eng *enginetest.Engine, store ResultStore, mutate func(*ProcessorConfig)) *RecognitionProcessor {
	t.Helper()
	cfg := &ProcessorConfig{
		MaxImageSize:     10 << 20,
		EngineFactory:    eng.Factory(),
		Store:            store,
		ProgressInterval: 2 * time.Millisecond,
		DownloadBackoff:  time.Millisecond,
	}
	if mutate != nil {
		mutate(cfg)
	}
	p, err := NewRecognitionProcessor(cfg)
	require.NoError(t, err)
	return p
}

func TestNewRecognitionProcessorValidation(t *testing.T) {
	_, err := NewRecognitionProcessor(nil)
	assert.Error(t, err)

	_, err = NewRecognitionProcessor(&ProcessorConfig{})
	assert.ErrorContains(t, err, "engine factory")

	_, err = NewRecognitionProcessor(&ProcessorConfig{
		EngineFactory: enginetest.New().Factory(),
		DefaultPreset: "missing",
	})
	assert.ErrorContains(t, err, "missing")
}

func TestProcessImageFromBuffer(t *testing.T) {
	store := &fakeStore{}
	eng := enginetest.New("Invoice 42", "", "| a | b |", "| c | d |")
	p := newTestProcessor(t, eng, store, nil)

	jobID := uuid.New().String()
	res, err := p.ProcessImage(context.Background(), &ProcessRequest{
		JobID:       jobID,
		ImageBuffer: pngBytes(t, 400, 300),
		Parameters:  map[string]string{"tessedit_pageseg_mode": "4"},
	})
	require.NoError(t, err)

	assert.Equal(t, jobID, res.JobID)
	assert.Equal(t, "png", res.Format)
	assert.Equal(t, "Invoice 42\n\n| a | b |\n| c | d |", res.Text)
	assert.Equal(t, 12, res.WordCount)
	assert.Equal(t, 3, res.LineCount)
	assert.Equal(t, 2, res.RegionsExtracted)
	assert.Equal(t, 1, res.TablesExtracted)
	assert.InDelta(t, 90, res.Confidence, 0.001)
	assert.Equal(t, []string{"tessedit_pageseg_mode"}, res.Changed)
	assert.Len(t, res.Fingerprint, FingerprintSize)
	require.NotNil(t, res.Tree)
	assert.Equal(t, "result-1", res.ResultID)

	require.Len(t, store.stored, 1)
	in := store.stored[0]
	assert.Equal(t, jobID, in.JobID)
	assert.Equal(t, "4", in.Parameters["tessedit_pageseg_mode"])
	assert.Contains(t, string(in.Tree), `"Invoice"`)
}

func TestProcessImageGeneratesJobID(t *testing.T) {
	p := newTestProcessor(t, enginetest.New("hello"), nil, nil)
	req := &ProcessRequest{ImageBuffer: pngBytes(t, 100, 50)}

	res, err := p.ProcessImage(context.Background(), req)
	require.NoError(t, err)
	_, err = uuid.Parse(res.JobID)
	assert.NoError(t, err)
	assert.Empty(t, res.ResultID)
}

func TestProcessImageLogging(t *testing.T) {
	p := newTestProcessor(t, enginetest.New("hello"), nil, nil)

	var pipeline, operation bytes.Buffer
	log.SetOutput(&pipeline)
	logging.SetOutput(&operation)
	logging.SetLevel(logging.LevelInfo)
	t.Cleanup(func() {
		log.SetOutput(os.Stderr)
		logging.SetOutput(os.Stdout)
	})

	jobID := uuid.New().String()
	_, err := p.ProcessImage(context.Background(), &ProcessRequest{
		JobID:       jobID,
		ImageBuffer: pngBytes(t, 100, 50),
	})
	require.NoError(t, err)

	for _, want := range []string{"Starting recognition pipeline", "Recognition pipeline complete"} {
		found := false
		for _, line := range strings.Split(pipeline.String(), "\n") {
			if strings.Contains(line, want) {
				found = true
				assert.Contains(t, line, "[Job "+jobID+"]")
			}
		}
		assert.True(t, found, want)
	}
	assert.NotContains(t, pipeline.String(), "[INFO]")

	assert.Contains(t, operation.String(), "[recognition] ")
	assert.Contains(t, operation.String(), "Recognition finished job="+jobID)
	assert.NotContains(t, operation.String(), "[processor]")
}

func TestProcessImageRejectsBadJobID(t *testing.T) {
	p := newTestProcessor(t, enginetest.New("hello"), nil, nil)
	_, err := p.ProcessImage(context.Background(), &ProcessRequest{
		JobID:       "not-a-uuid",
		ImageBuffer: pngBytes(t, 100, 50),
	})
	assert.ErrorContains(t, err, "invalid job ID")
}

func TestProcessImagePresetThenOverrides(t *testing.T) {
	store := &fakeStore{}
	presets, err := NewPresetStore("")
	require.NoError(t, err)
	presets.Put(&params.Preset{Name: "digits", Values: map[string]any{
		"tessedit_pageseg_mode":   7,
		"tessedit_char_whitelist": "0123456789",
	}})

	p := newTestProcessor(t, enginetest.New("abc 123 x9"), store, func(c *ProcessorConfig) {
		c.Presets = presets
		c.DefaultPreset = "digits"
	})

	res, err := p.ProcessImage(context.Background(), &ProcessRequest{
		ImageBuffer: pngBytes(t, 200, 60),
		Parameters:  map[string]string{"tessedit_pageseg_mode": "3"},
	})
	require.NoError(t, err)

	assert.Equal(t, "digits", res.Preset)
	assert.Equal(t, "123 9", res.Text)
	assert.ElementsMatch(t, []string{"tessedit_pageseg_mode", "tessedit_char_whitelist"}, res.Changed)

	require.Len(t, store.stored, 1)
	assert.Equal(t, "3", store.stored[0].Parameters["tessedit_pageseg_mode"])
	assert.Equal(t, "0123456789", store.stored[0].Parameters["tessedit_char_whitelist"])
}

func TestProcessImageParameterErrors(t *testing.T) {
	p := newTestProcessor(t, enginetest.New("hello"), nil, nil)
	img := pngBytes(t, 100, 50)

	_, err := p.ProcessImage(context.Background(), &ProcessRequest{
		ImageBuffer: img,
		Parameters:  map[string]string{"no_such_option": "1"},
	})
	assert.ErrorIs(t, err, werrors.ErrUnknownParameter)
	assert.False(t, werrors.Retryable(err))

	_, err = p.ProcessImage(context.Background(), &ProcessRequest{
		ImageBuffer: img,
		Parameters:  map[string]string{"tessedit_pageseg_mode": "many"},
	})
	assert.ErrorIs(t, err, werrors.ErrTypeMismatch)

	_, err = p.ProcessImage(context.Background(), &ProcessRequest{
		ImageBuffer: img,
		Preset:      "unknown",
	})
	assert.ErrorContains(t, err, `unknown preset "unknown"`)
}

func TestProcessImageUnsupportedFormat(t *testing.T) {
	p := newTestProcessor(t, enginetest.New("hello"), nil, nil)

	for name, data := range map[string][]byte{
		"pdf":  []byte("%PDF-1.7 minimal"),
		"text": []byte("just some text"),
		"zip":  {0x50, 0x4B, 0x03, 0x04, 0x00},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := p.ProcessImage(context.Background(), &ProcessRequest{ImageBuffer: data})
			assert.ErrorIs(t, err, werrors.ErrUnsupportedFormat)
		})
	}
}

func TestProcessImageCorruptImageFails(t *testing.T) {
	p := newTestProcessor(t, enginetest.New("hello"), nil, nil)
	data := pngBytes(t, 50, 50)[:20]

	_, err := p.ProcessImage(context.Background(), &ProcessRequest{ImageBuffer: data})
	assert.ErrorIs(t, err, werrors.ErrFailed)
}

func TestProcessImageSizeLimit(t *testing.T) {
	p := newTestProcessor(t, enginetest.New("hello"), nil, func(c *ProcessorConfig) {
		c.MaxImageSize = 16
	})
	_, err := p.ProcessImage(context.Background(), &ProcessRequest{ImageBuffer: pngBytes(t, 50, 50)})
	assert.ErrorContains(t, err, "exceeds maximum")
}

func TestProcessImageNoSource(t *testing.T) {
	p := newTestProcessor(t, enginetest.New("hello"), nil, nil)
	_, err := p.ProcessImage(context.Background(), &ProcessRequest{})
	assert.ErrorContains(t, err, "no image source")
}

func TestProcessImageDownloadRetries(t *testing.T) {
	img := pngBytes(t, 120, 40)
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write(img)
	}))
	defer srv.Close()

	p := newTestProcessor(t, enginetest.New("downloaded"), nil, nil)
	res, err := p.ProcessImage(context.Background(), &ProcessRequest{ImageURL: srv.URL + "/scan.png"})
	require.NoError(t, err)
	assert.Equal(t, "downloaded", res.Text)
	assert.Equal(t, int32(2), hits.Load())
}

func TestProcessImageDownloadGivesUp(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	p := newTestProcessor(t, enginetest.New("x"), nil, func(c *ProcessorConfig) {
		c.DownloadRetries = 3
	})
	_, err := p.ProcessImage(context.Background(), &ProcessRequest{ImageURL: srv.URL})
	assert.ErrorContains(t, err, "after 3 attempts")
	assert.Equal(t, int32(3), hits.Load())
}

func TestProcessImageCancelledByContext(t *testing.T) {
	eng := enginetest.New("one two three four five six seven eight nine ten")
	eng.WordDelay = 20 * time.Millisecond
	store := &fakeStore{}
	p := newTestProcessor(t, eng, store, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := p.ProcessImage(ctx, &ProcessRequest{ImageBuffer: pngBytes(t, 800, 100)})
	assert.ErrorIs(t, err, werrors.ErrCancelled)
	assert.Empty(t, store.stored)
}

func TestProcessImageDeadline(t *testing.T) {
	eng := enginetest.New("one two three four five six seven eight nine ten")
	eng.WordDelay = 20 * time.Millisecond
	p := newTestProcessor(t, eng, nil, nil)

	_, err := p.ProcessImage(context.Background(), &ProcessRequest{
		ImageBuffer: pngBytes(t, 800, 100),
		DeadlineMs:  30,
	})
	assert.ErrorIs(t, err, werrors.ErrCancelled)
}

func TestProcessImageReportsProgress(t *testing.T) {
	eng := enginetest.New("a b c d e f g h i j")
	eng.WordDelay = 5 * time.Millisecond
	p := newTestProcessor(t, eng, nil, nil)

	var mu sync.Mutex
	var seen []int
	_, err := p.ProcessImage(context.Background(), &ProcessRequest{
		ImageBuffer: pngBytes(t, 400, 60),
		OnProgress: func(progress int) {
			mu.Lock()
			seen = append(seen, progress)
			mu.Unlock()
		},
	})
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, seen)
	for i := 1; i < len(seen); i++ {
		assert.GreaterOrEqual(t, seen[i], seen[i-1])
	}
}

func TestProcessImageStorageFailure(t *testing.T) {
	store := &fakeStore{storeErr: stderrors.New("connection refused")}
	p := newTestProcessor(t, enginetest.New("hello"), store, nil)

	_, err := p.ProcessImage(context.Background(), &ProcessRequest{ImageBuffer: pngBytes(t, 100, 50)})
	assert.ErrorIs(t, err, werrors.ErrStorageFailed)
	assert.True(t, werrors.Retryable(err))
}

func TestDeadlineSelection(t *testing.T) {
	p := &RecognitionProcessor{config: &ProcessorConfig{RecognitionBudget: time.Second}}
	assert.Equal(t, time.Second, p.deadline(&ProcessRequest{}))
	assert.Equal(t, time.Second, p.deadline(&ProcessRequest{DeadlineMs: -5}))
	assert.Equal(t, 250*time.Millisecond, p.deadline(&ProcessRequest{DeadlineMs: 250}))
	assert.Equal(t, time.Second, p.deadline(&ProcessRequest{DeadlineMs: 5000}))

	unbounded := &RecognitionProcessor{config: &ProcessorConfig{}}
	assert.Equal(t, time.Duration(0), unbounded.deadline(&ProcessRequest{}))
	assert.Equal(t, 5*time.Second, unbounded.deadline(&ProcessRequest{DeadlineMs: 5000}))
}

func TestUpdateJobStatusMapsMetadata(t *testing.T) {
	store := &fakeStore{}
	p := newTestProcessor(t, enginetest.New(), store, nil)

	err := p.UpdateJobStatus(context.Background(), "job-1", "completed", 100, map[string]interface{}{
		"confidence":     87.5,
		"processingTime": int64(1200),
		"resultId":       "r-1",
		"preset":         "digits",
	})
	require.NoError(t, err)

	err = p.UpdateJobStatus(context.Background(), "job-2", "failed", 40, map[string]interface{}{
		"error_code": "CANCELLED",
		"message":    "deadline",
	})
	require.NoError(t, err)

	require.Len(t, store.updates, 2)
	done := store.updates[0]
	assert.Equal(t, 87.5, done.Confidence)
	assert.Equal(t, int64(1200), done.ProcessingTimeMs)
	assert.Equal(t, "r-1", done.ResultID)
	assert.Equal(t, "digits", done.Preset)

	failed := store.updates[1]
	assert.Equal(t, "CANCELLED", failed.ErrorCode)
	assert.Equal(t, "deadline", failed.ErrorMessage)
	assert.Equal(t, 40, failed.Progress)
}

func TestUpdateJobStatusWithoutStore(t *testing.T) {
	p := newTestProcessor(t, enginetest.New(), nil, nil)
	assert.NoError(t, p.UpdateJobStatus(context.Background(), "job", "processing", 10, nil))
}

func TestDetectMimeTypeFromMagicBytes(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"png", []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0}, "image/png"},
		{"jpeg", []byte{0xFF, 0xD8, 0xFF, 0xE0}, "image/jpeg"},
		{"gif", []byte("GIF89a...."), "image/gif"},
		{"webp", []byte("RIFF\x00\x00\x00\x00WEBPVP8 "), "image/webp"},
		{"tiff le", []byte{0x49, 0x49, 0x2A, 0x00, 0x08}, "image/tiff"},
		{"tiff be", []byte{0x4D, 0x4D, 0x00, 0x2A, 0x00}, "image/tiff"},
		{"bmp", []byte("BM\x00\x00\x00"), "image/bmp"},
		{"pdf", []byte("%PDF-1.4"), "application/pdf"},
		{"short", []byte{0xFF}, ""},
		{"unknown", []byte("plain text"), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, detectMimeTypeFromMagicBytes(tt.data))
		})
	}
}

func TestTesseractFactoryWithoutNativeBuild(t *testing.T) {
	factory, err := NewTesseractFactory(nil)
	if err != nil {
		assert.Nil(t, factory)
		assert.Contains(t, err.Error(), "not available")
		return
	}
	assert.NotNil(t, factory)
}
