package enginetest

import (
	"image"
	"strings"

	"github.com/adverant/nexus/ocr-worker/internal/engine"
)

type node struct {
	elem     engine.Element
	children []*node
}

// builder assembles the synthetic page and flattens it into the
// depth-first element stream the engine contract requires.
type builder struct {
	page  *node
	block *node
	line  *node
}

func newBuilder(bounds image.Rectangle) *builder {
	return &builder{page: &node{elem: engine.Element{Level: engine.LevelPage, Box: bounds}}}
}

func (b *builder) closeBlock() {
	b.block = nil
	b.line = nil
}

func (b *builder) openLine(x, y int) {
	if b.block == nil {
		para := &node{elem: engine.Element{Level: engine.LevelParagraph}}
		b.block = &node{elem: engine.Element{Level: engine.LevelBlock}, children: []*node{para}}
		b.page.children = append(b.page.children, b.block)
	}
	para := b.block.children[0]
	b.line = &node{elem: engine.Element{
		Level: engine.LevelLine,
		Box:   image.Rect(x, y, x, y+LineHeight),
	}}
	para.children = append(para.children, b.line)
}

func (b *builder) word(text string, box image.Rectangle, conf float64) {
	w := &node{elem: engine.Element{Level: engine.LevelWord, Text: text, Box: box, Confidence: conf}}
	x := box.Min.X
	for _, r := range text {
		w.children = append(w.children, &node{elem: engine.Element{
			Level:      engine.LevelSymbol,
			Text:       string(r),
			Box:        image.Rect(x, box.Min.Y, x+CharWidth, box.Max.Y),
			Confidence: conf,
		}})
		x += CharWidth
	}
	b.line.children = append(b.line.children, w)
	b.line.elem.Box = b.line.elem.Box.Union(box)
}

func (b *builder) finish() []engine.Element {
	summarize(b.page)
	var out []engine.Element
	flatten(b.page, &out)
	return out
}

var separators = map[engine.Level]string{
	engine.LevelPage:      "\n\n",
	engine.LevelBlock:     "\n",
	engine.LevelParagraph: "\n",
	engine.LevelLine:      " ",
	engine.LevelWord:      "",
}

// summarize fills in text, box and confidence of interior nodes from their
// children, bottom up.
func summarize(n *node) {
	if len(n.children) == 0 {
		return
	}
	texts := make([]string, 0, len(n.children))
	sum := 0.0
	for _, c := range n.children {
		summarize(c)
		texts = append(texts, c.elem.Text)
		sum += c.elem.Confidence
		if n.elem.Level != engine.LevelPage && n.elem.Level != engine.LevelWord {
			if n.elem.Box.Empty() {
				n.elem.Box = c.elem.Box
			} else {
				n.elem.Box = n.elem.Box.Union(c.elem.Box)
			}
		}
	}
	if n.elem.Level != engine.LevelWord {
		n.elem.Text = strings.Join(texts, separators[n.elem.Level])
		n.elem.Confidence = sum / float64(len(n.children))
	}
}

func flatten(n *node, out *[]engine.Element) {
	*out = append(*out, n.elem)
	for _, c := range n.children {
		flatten(c, out)
	}
}
