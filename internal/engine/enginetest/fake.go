// Package enginetest provides a scripted, pure-Go engine for tests.
package enginetest

import (
	"errors"
	"image"
	"strings"
	"sync"
	"time"

	"github.com/adverant/nexus/ocr-worker/internal/engine"
	"github.com/adverant/nexus/ocr-worker/internal/monitor"
	"github.com/adverant/nexus/ocr-worker/internal/pix"
)

// Layout constants for the synthetic page, in pixels.
const (
	Margin     = 10
	CharWidth  = 10
	LineHeight = 20
	LineGap    = 10
	WordGap    = 10
)

// Param is one recorded SetParameter call.
type Param struct {
	Name  string
	Value string
}

// Engine pretends to recognize a page whose text is known in advance.
// Each entry of Lines is one text line; lines are grouped into one
// paragraph per block, and a blank entry starts a new block.
type Engine struct {
	Lines []string

	// WordDelay is slept before each word, after its checkpoint.
	WordDelay time.Duration
	// Confidence reported for every word; 0 means 90.
	Confidence float64
	// Status overrides the result of a run that was not stopped.
	Status engine.Status
	// Reject lists parameter names SetParameter refuses.
	Reject map[string]bool
	// Panic makes Recognize panic with this value when non-nil.
	Panic any

	mu         sync.Mutex
	params     map[string]string
	calls      []Param
	recognized int
	closed     bool
	results    []engine.Element
}

// New returns an engine that will read the given lines.
func New(lines ...string) *Engine {
	return &Engine{Lines: lines}
}

// Factory returns an engine.Factory that clones e for every call.
func (e *Engine) Factory() engine.Factory {
	return func() (engine.Engine, error) {
		c := &Engine{
			Lines:      e.Lines,
			WordDelay:  e.WordDelay,
			Confidence: e.Confidence,
			Status:     e.Status,
			Reject:     e.Reject,
		}
		return c, nil
	}
}

// SetParameter implements engine.Engine.
func (e *Engine) SetParameter(name, value string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.Reject[name] {
		return false
	}
	if e.params == nil {
		e.params = make(map[string]string)
	}
	e.params[name] = value
	e.calls = append(e.calls, Param{Name: name, Value: value})
	return true
}

// Calls returns every accepted SetParameter call in order.
func (e *Engine) Calls() []Param {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Param, len(e.calls))
	copy(out, e.calls)
	return out
}

// Param returns the stored value for name.
func (e *Engine) Param(name string) (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	v, ok := e.params[name]
	return v, ok
}

// Recognized returns how many times Recognize was called.
func (e *Engine) Recognized() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.recognized
}

// Closed reports whether Close was called.
func (e *Engine) Closed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

// WordCount is the number of words in the script.
func (e *Engine) WordCount() int {
	n := 0
	for _, l := range e.Lines {
		n += len(strings.Fields(l))
	}
	return n
}

// Recognize implements engine.Engine.
func (e *Engine) Recognize(img *pix.Pix, desc *monitor.Descriptor) engine.Status {
	e.mu.Lock()
	e.recognized++
	e.results = nil
	allow, deny := e.params["tessedit_char_whitelist"], e.params["tessedit_char_blacklist"]
	e.mu.Unlock()

	if e.Panic != nil {
		panic(e.Panic)
	}
	if img == nil || img.Validate() != nil {
		return engine.StatusBadImage
	}

	total := e.WordCount()
	conf := e.Confidence
	if conf == 0 {
		conf = 90
	}

	b := newBuilder(img.Bounds())
	words := 0
	y := Margin
	for i, line := range e.Lines {
		if strings.TrimSpace(line) == "" {
			if i > 0 {
				b.closeBlock()
			}
			y += LineGap
			continue
		}
		b.openLine(Margin, y)
		x := Margin
		for _, w := range strings.Fields(line) {
			if desc != nil && desc.Checkpoint(words) {
				return engine.StatusCancelled
			}
			if e.WordDelay > 0 {
				time.Sleep(e.WordDelay)
			}
			text := filter(w, allow, deny)
			width := len([]rune(w)) * CharWidth
			if text != "" {
				b.word(text, image.Rect(x, y, x+width, y+LineHeight), conf)
			}
			x += width + WordGap
			words++
			if desc != nil && total > 0 {
				desc.SetProgress(words * 99 / total)
			}
		}
		y += LineHeight + LineGap
	}
	if desc != nil {
		if desc.Checkpoint(words) {
			return engine.StatusCancelled
		}
		desc.SetProgress(100)
	}
	if e.Status != engine.StatusOK {
		return e.Status
	}

	e.mu.Lock()
	e.results = b.finish()
	e.mu.Unlock()
	return engine.StatusOK
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

// Close implements engine.Engine.
func (e *Engine) Close() error {
	e.mu.Lock()
	e.closed = true
	e.results = nil
	e.mu.Unlock()
	return nil
}

func filter(word, allow, deny string) string {
	var sb strings.Builder
	for _, r := range word {
		if allow != "" && !strings.ContainsRune(allow, r) {
			continue
		}
		if strings.ContainsRune(deny, r) {
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
