/**
 * Tesseract engine factory
 *
 * Every job gets its own engine instance; the native engine is not safe
 * for concurrent recognitions.
 */

package processor

import (
	"fmt"
	"log"
	"time"

	"github.com/adverant/nexus/ocr-worker/internal/engine"
	"github.com/adverant/nexus/ocr-worker/internal/engine/tesseract"
)

// TesseractConfig holds Tesseract configuration
type TesseractConfig struct {
	Languages      []string
	TessdataPrefix string
	PollInterval   time.Duration
}

// NewTesseractFactory returns a factory that opens one native engine per
// call. It fails when the binary was built without the tesseract tag.
func NewTesseractFactory(cfg *TesseractConfig) (engine.Factory, error) {
	if cfg == nil {
		cfg = &TesseractConfig{}
	}
	if !tesseract.Available {
		return nil, fmt.Errorf("tesseract factory: %w", engine.ErrEngineUnavailable)
	}

	opts := tesseract.Options{
		Languages:      cfg.Languages,
		TessdataPrefix: cfg.TessdataPrefix,
		PollInterval:   cfg.PollInterval,
	}
	log.Printf("Tesseract engine factory ready (languages=%v)", cfg.Languages)

	return func() (engine.Engine, error) {
		eng, err := tesseract.New(opts)
		if err != nil {
			return nil, fmt.Errorf("failed to open tesseract engine: %w", err)
		}
		return eng, nil
	}, nil
}
