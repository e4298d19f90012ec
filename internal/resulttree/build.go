package resulttree

import (
	"fmt"
	"math"

	"golang.org/x/text/unicode/norm"

	"github.com/adverant/nexus/ocr-worker/internal/engine"
	werrors "github.com/adverant/nexus/ocr-worker/internal/errors"
)

// Build drains it into an owned tree. The stream must start with a single
// page element and never skip a level going down. Parent boxes are widened
// to cover their children, confidences are clamped to [0,100] and text is
// normalized to NFC.
func Build(it engine.Iterator) (*Node, error) {
	first, ok := it.Next()
	if !ok {
		return nil, malformed("empty result stream")
	}
	if first.Level != engine.LevelPage {
		return nil, malformed(fmt.Sprintf("stream starts with %s, want page", first.Level))
	}
	root := fromElement(first)
	stack := []*Node{root}

	for i := 1; ; i++ {
		el, ok := it.Next()
		if !ok {
			break
		}
		if el.Level <= engine.LevelPage || el.Level > engine.LevelSymbol {
			return nil, malformed(fmt.Sprintf("element %d has level %s", i, el.Level))
		}
		for stack[len(stack)-1].level >= el.Level {
			stack = stack[:len(stack)-1]
		}
		parent := stack[len(stack)-1]
		if el.Level != parent.level+1 {
			return nil, malformed(fmt.Sprintf("element %d: %s directly under %s", i, el.Level, parent.level))
		}
		n := fromElement(el)
		parent.children = append(parent.children, n)
		stack = append(stack, n)
	}

	widen(root)
	return root, nil
}

func malformed(msg string) error {
	return werrors.NewFailedError("malformed result stream: "+msg, nil)
}

func fromElement(el engine.Element) *Node {
	return &Node{
		level:      el.Level,
		text:       norm.NFC.String(el.Text),
		box:        el.Box.Canon(),
		confidence: clamp(el.Confidence),
	}
}

func clamp(c float64) float64 {
	if math.IsNaN(c) || c < 0 {
		return 0
	}
	if c > 100 {
		return 100
	}
	return c
}

// widen grows each box to the union of its own and its children's boxes,
// bottom up.
func widen(n *Node) {
	for _, c := range n.children {
		widen(c)
		n.box = n.box.Union(c.box)
	}
}
