// Package tesseract adapts gosseract to the engine contract. The native
// engine is compiled in with the "tesseract" build tag:
//
//	go build -tags tesseract ./...
//
// Without the tag New returns engine.ErrEngineUnavailable.
package tesseract

import (
	"image"
	"time"

	"github.com/adverant/nexus/ocr-worker/internal/engine"
	"github.com/adverant/nexus/ocr-worker/internal/pix"
)

// Options configures a native engine instance.
type Options struct {
	// Languages passed to the engine, e.g. "eng", "deu". Empty means eng.
	Languages []string
	// PollInterval is how often the descriptor is consulted while the
	// native call runs. Zero means 25ms.
	PollInterval time.Duration
	// TessdataPrefix overrides the trained data directory.
	TessdataPrefix string
}

func (o Options) pollInterval() time.Duration {
	if o.PollInterval <= 0 {
		return 25 * time.Millisecond
	}
	return o.PollInterval
}

// Box is one bounding box reported at a single level.
type Box struct {
	Rect       image.Rectangle
	Text       string
	Confidence float64
}

type tnode struct {
	elem     engine.Element
	children []*tnode
}

// Nest turns per-level box lists (block, paragraph, line, word, symbol;
// each in reading order) into the depth-first element stream under page.
// A child goes to the first parent containing its center, else to the
// parent it overlaps most, else to the nearest preceding parent.
func Nest(page engine.Element, levels [][]Box) []engine.Element {
	root := &tnode{elem: page}
	parents := []*tnode{root}
	for i, boxes := range levels {
		level := engine.LevelBlock + engine.Level(i)
		if level > engine.LevelSymbol {
			break
		}
		next := make([]*tnode, 0, len(boxes))
		last := 0
		for _, b := range boxes {
			n := &tnode{elem: engine.Element{
				Level:      level,
				Text:       b.Text,
				Box:        b.Rect,
				Confidence: b.Confidence,
			}}
			idx := pickParent(parents, b.Rect, last)
			parents[idx].children = append(parents[idx].children, n)
			last = idx
			next = append(next, n)
		}
		if len(next) == 0 {
			break
		}
		parents = next
	}

	var out []engine.Element
	var walk func(n *tnode)
	walk = func(n *tnode) {
		out = append(out, n.elem)
		for _, c := range n.children {
			walk(c)
		}
	}
	walk(root)
	return out
}

func pickParent(parents []*tnode, r image.Rectangle, last int) int {
	center := image.Pt((r.Min.X+r.Max.X)/2, (r.Min.Y+r.Max.Y)/2)
	for i := last; i < len(parents); i++ {
		if center.In(parents[i].elem.Box) {
			return i
		}
	}
	for i := 0; i < last; i++ {
		if center.In(parents[i].elem.Box) {
			return i
		}
	}
	best, bestArea := -1, 0
	for i, p := range parents {
		in := p.elem.Box.Intersect(r)
		if a := in.Dx() * in.Dy(); a > bestArea {
			best, bestArea = i, a
		}
	}
	if best >= 0 {
		return best
	}
	return last
}

type outcome struct {
	elems []engine.Element
	err   error
}

// detach runs extract on its own goroutine and closes busy when it returns.
// The page bounds are read from img before the goroutine starts: a cancelled
// Recognize returns early and its caller may then free img while extract is
// still inside the native call.
func detach(img *pix.Pix, busy chan struct{}, extract func(bounds image.Rectangle) ([]engine.Element, error)) <-chan outcome {
	bounds := img.Bounds()
	done := make(chan outcome, 1)
	go func() {
		defer close(busy)
		elems, err := extract(bounds)
		done <- outcome{elems: elems, err: err}
	}()
	return done
}
