package resulttree

import (
	"encoding/json"
	"fmt"
	"image"

	"github.com/adverant/nexus/ocr-worker/internal/engine"
)

// Snapshot is the serialized form of a node, used for storage and CLI
// output. Box is [x1, y1, x2, y2].
type Snapshot struct {
	Level      string     `json:"level"`
	Text       string     `json:"text,omitempty"`
	Box        [4]int     `json:"box"`
	Confidence float64    `json:"confidence"`
	Children   []Snapshot `json:"children,omitempty"`
}

// Snapshot converts n and its descendants.
func (n *Node) Snapshot() Snapshot {
	s := Snapshot{
		Level:      n.level.String(),
		Text:       n.text,
		Box:        [4]int{n.box.Min.X, n.box.Min.Y, n.box.Max.X, n.box.Max.Y},
		Confidence: n.confidence,
	}
	if len(n.children) > 0 {
		s.Children = make([]Snapshot, len(n.children))
		for i, c := range n.children {
			s.Children[i] = c.Snapshot()
		}
	}
	return s
}

// MarshalJSON encodes the node as its Snapshot.
func (n *Node) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.Snapshot())
}

// FromSnapshot rebuilds a tree from its serialized form, applying the same
// checks as Build.
func FromSnapshot(s Snapshot) (*Node, error) {
	var elems []engine.Element
	var flatten func(s Snapshot) error
	flatten = func(s Snapshot) error {
		level, ok := engine.ParseLevel(s.Level)
		if !ok {
			return fmt.Errorf("unknown level %q", s.Level)
		}
		elems = append(elems, engine.Element{
			Level:      level,
			Text:       s.Text,
			Box:        image.Rect(s.Box[0], s.Box[1], s.Box[2], s.Box[3]),
			Confidence: s.Confidence,
		})
		for _, c := range s.Children {
			if err := flatten(c); err != nil {
				return err
			}
		}
		return nil
	}
	if err := flatten(s); err != nil {
		return nil, err
	}
	return Build(engine.NewSliceIterator(elems))
}

// Unmarshal decodes JSON produced by MarshalJSON.
func Unmarshal(data []byte) (*Node, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return FromSnapshot(s)
}
