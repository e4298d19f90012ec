//go:build tesseract

package tesseract

import (
	"errors"
	"fmt"
	"image"
	"math"
	"sync"
	"time"

	"github.com/otiai10/gosseract/v2"

	"github.com/adverant/nexus/ocr-worker/internal/engine"
	"github.com/adverant/nexus/ocr-worker/internal/monitor"
	"github.com/adverant/nexus/ocr-worker/internal/pix"
)

// Available reports whether the native engine is compiled in.
const Available = true

var levels = []gosseract.PageIteratorLevel{
	gosseract.RIL_BLOCK,
	gosseract.RIL_PARA,
	gosseract.RIL_TEXTLINE,
	gosseract.RIL_WORD,
	gosseract.RIL_SYMBOL,
}

// Engine drives one gosseract client.
type Engine struct {
	client *gosseract.Client
	opts   Options

	// busy is closed when the last native call returns. A call abandoned
	// after cancellation keeps the client until then.
	mu      sync.Mutex
	busy    chan struct{}
	results []engine.Element
}

// New creates a native engine instance.
func New(opts Options) (engine.Engine, error) {
	client := gosseract.NewClient()
	if opts.TessdataPrefix != "" {
		client.TessdataPrefix = opts.TessdataPrefix
	}
	if len(opts.Languages) > 0 {
		if err := client.SetLanguage(opts.Languages...); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to set languages: %w", err)
		}
	}
	done := make(chan struct{})
	close(done)
	return &Engine{client: client, opts: opts, busy: done}, nil
}

// SetParameter implements engine.Engine.
func (e *Engine) SetParameter(name, value string) bool {
	e.wait()
	if name == "tessedit_pageseg_mode" {
		var mode int
		if _, err := fmt.Sscanf(value, "%d", &mode); err != nil {
			return false
		}
		return e.client.SetPageSegMode(gosseract.PageSegMode(mode)) == nil
	}
	return e.client.SetVariable(gosseract.SettableVariable(name), value) == nil
}

// Recognize implements engine.Engine. The native call cannot observe the
// descriptor, so it runs on its own goroutine while this one polls the
// descriptor and abandons the call when a stop is requested.
func (e *Engine) Recognize(img *pix.Pix, desc *monitor.Descriptor) engine.Status {
	e.wait()
	e.mu.Lock()
	e.results = nil
	e.mu.Unlock()

	data, err := pix.EncodePNM(img)
	if err != nil {
		return engine.StatusBadImage
	}
	if err := e.client.SetImageFromBytes(data); err != nil {
		return engine.StatusBadImage
	}

	busy := make(chan struct{})
	e.mu.Lock()
	e.busy = busy
	e.mu.Unlock()

	done := detach(img, busy, e.extract)

	start := time.Now()
	ticker := time.NewTicker(e.opts.pollInterval())
	defer ticker.Stop()
	for {
		select {
		case res := <-done:
			if res.err != nil {
				return engine.StatusFailed
			}
			if desc != nil {
				if desc.Checkpoint(countWords(res.elems)) {
					return engine.StatusCancelled
				}
				desc.SetProgress(100)
			}
			e.mu.Lock()
			e.results = res.elems
			e.mu.Unlock()
			return engine.StatusOK
		case <-ticker.C:
			if desc == nil {
				continue
			}
			desc.SetProgress(estimate(time.Since(start)))
			if desc.Checkpoint(desc.WordsProcessed()) {
				return engine.StatusCancelled
			}
		}
	}
}

func (e *Engine) extract(bounds image.Rectangle) ([]engine.Element, error) {
	text, err := e.client.Text()
	if err != nil {
		return nil, err
	}
	perLevel := make([][]Box, 0, len(levels))
	for _, lvl := range levels {
		boxes, err := e.client.GetBoundingBoxes(lvl)
		if err != nil {
			return nil, err
		}
		converted := make([]Box, 0, len(boxes))
		for _, b := range boxes {
			converted = append(converted, Box{Rect: b.Box, Text: b.Word, Confidence: b.Confidence})
		}
		perLevel = append(perLevel, converted)
	}
	page := engine.Element{
		Level:      engine.LevelPage,
		Text:       text,
		Box:        bounds,
		Confidence: meanConfidence(perLevel[0]),
	}
	return Nest(page, perLevel), nil
}

// Results implements engine.Engine.
func (e *Engine) Results() (engine.Iterator, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.results == nil {
		return nil, errors.New("no recognition results")
	}
	return engine.NewSliceIterator(e.results), nil
}

// Close waits for any abandoned native call and frees the client.
func (e *Engine) Close() error {
	e.wait()
	return e.client.Close()
}

func (e *Engine) wait() {
	e.mu.Lock()
	busy := e.busy
	e.mu.Unlock()
	<-busy
}

// estimate maps elapsed time onto 0..99 since the native call reports no
// progress of its own.
func estimate(elapsed time.Duration) int {
	return int(99 * (1 - math.Exp(-elapsed.Seconds()/2)))
}

func countWords(elems []engine.Element) int {
	n := 0
	for _, el := range elems {
		if el.Level == engine.LevelWord {
			n++
		}
	}
	return n
}

func meanConfidence(boxes []Box) float64 {
	if len(boxes) == 0 {
		return 0
	}
	sum := 0.0
	for _, b := range boxes {
		sum += b.Confidence
	}
	return sum / float64(len(boxes))
}
