// Package resulttree holds the owned, read-only result hierarchy produced
// by a completed recognition: page, block, paragraph, line, word, symbol.
package resulttree

import (
	"image"
	"strings"

	"github.com/adverant/nexus/ocr-worker/internal/engine"
)

// Node is one element of the result tree. Nodes are immutable once built
// and safe to share between goroutines.
type Node struct {
	level      engine.Level
	text       string
	box        image.Rectangle
	confidence float64
	children   []*Node
}

// Level returns the node's granularity.
func (n *Node) Level() engine.Level { return n.level }

// Text returns the recognized text at this level; empty for pure layout
// elements.
func (n *Node) Text() string { return n.text }

// BoundingBox returns the node's box in image pixel coordinates. It
// contains the boxes of all children.
func (n *Node) BoundingBox() image.Rectangle { return n.box }

// Confidence returns the mean confidence in [0,100].
func (n *Node) Confidence() float64 { return n.confidence }

// Children returns the children in reading order.
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// NumChildren returns the number of children.
func (n *Node) NumChildren() int { return len(n.children) }

// Child returns the i-th child.
func (n *Node) Child(i int) *Node { return n.children[i] }

// Walk visits n and its descendants depth-first in reading order. Returning
// false from fn skips the node's children.
func (n *Node) Walk(fn func(node *Node, depth int) bool) {
	n.walk(fn, 0)
}

func (n *Node) walk(fn func(*Node, int) bool, depth int) {
	if !fn(n, depth) {
		return
	}
	for _, c := range n.children {
		c.walk(fn, depth+1)
	}
}

// Find returns every descendant at level, in reading order.
func (n *Node) Find(level engine.Level) []*Node {
	var out []*Node
	n.Walk(func(node *Node, _ int) bool {
		if node.level == level {
			out = append(out, node)
			return false
		}
		return node.level < level
	})
	return out
}

// Count returns the number of nodes at level under and including n.
func (n *Node) Count(level engine.Level) int {
	return len(n.Find(level))
}

// LeafText concatenates the text of every leaf in reading order.
func (n *Node) LeafText() string {
	var sb strings.Builder
	n.Walk(func(node *Node, _ int) bool {
		if len(node.children) == 0 {
			sb.WriteString(node.text)
		}
		return true
	})
	return sb.String()
}

// Words returns the text of each word node.
func (n *Node) Words() []string {
	words := n.Find(engine.LevelWord)
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = w.text
	}
	return out
}
