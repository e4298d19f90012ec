//go:build !tesseract

package tesseract

import "github.com/adverant/nexus/ocr-worker/internal/engine"

// Available reports whether the native engine is compiled in.
const Available = false

// New always fails; rebuild with -tags tesseract.
func New(Options) (engine.Engine, error) {
	return nil, engine.ErrEngineUnavailable
}
