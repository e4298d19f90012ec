// Package engine defines the narrow call contract between a recognition
// operation and the OCR engine that does the work.
package engine

import (
	"errors"
	"image"

	"github.com/adverant/nexus/ocr-worker/internal/monitor"
	"github.com/adverant/nexus/ocr-worker/internal/pix"
)

// ErrEngineUnavailable is returned by factories when the binary was built
// without a native engine.
var ErrEngineUnavailable = errors.New("ocr engine not available in this build")

// Status is the engine's return code. Zero means success.
type Status int

const (
	StatusOK        Status = 0
	StatusFailed    Status = -1
	StatusCancelled Status = -2
	StatusBadImage  Status = -3
)

// Engine is one engine instance. Instances are not safe for concurrent use;
// concurrent recognitions need separate instances.
type Engine interface {
	// SetParameter writes one entry of the engine's string-keyed store.
	SetParameter(name, value string) bool

	// Recognize runs segmentation and recognition synchronously. The engine
	// writes progress into desc and calls desc.Checkpoint roughly once per
	// word, stopping when it returns true.
	Recognize(img *pix.Pix, desc *monitor.Descriptor) Status

	// Results walks the last successful recognition.
	Results() (Iterator, error)

	Close() error
}

// Factory creates engine instances for workers that run several operations.
type Factory func() (Engine, error)

// Level is the granularity of a result element.
type Level int

const (
	LevelPage Level = iota
	LevelBlock
	LevelParagraph
	LevelLine
	LevelWord
	LevelSymbol
)

var levelNames = [...]string{"page", "block", "paragraph", "line", "word", "symbol"}

func (l Level) String() string {
	if l < LevelPage || l > LevelSymbol {
		return "unknown"
	}
	return levelNames[l]
}

// ParseLevel is the inverse of Level.String.
func ParseLevel(s string) (Level, bool) {
	for i, n := range levelNames {
		if n == s {
			return Level(i), true
		}
	}
	return 0, false
}

// Element is one node as reported by the engine. Confidence is a mean in
// [0,100]; Box is in image pixel coordinates.
type Element struct {
	Level      Level
	Text       string
	Box        image.Rectangle
	Confidence float64
}

// Iterator yields elements depth-first in reading order: each element is
// followed by its descendants before its next sibling.
type Iterator interface {
	Next() (Element, bool)
}

// SliceIterator iterates over a prepared element list.
type SliceIterator struct {
	elems []Element
	pos   int
}

// NewSliceIterator returns an iterator over elems.
func NewSliceIterator(elems []Element) *SliceIterator {
	return &SliceIterator{elems: elems}
}

// Next implements Iterator.
func (it *SliceIterator) Next() (Element, bool) {
	if it.pos >= len(it.elems) {
		return Element{}, false
	}
	e := it.elems[it.pos]
	it.pos++
	return e, true
}
