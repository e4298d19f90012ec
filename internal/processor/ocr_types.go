/**
 * OCR Types - Flattened views of a recognition result tree
 *
 * The tree stays the source of truth; these types carry what the queue,
 * the job record and the CLI report about a page.
 */

package processor

import (
	"image"
	"strings"

	"github.com/adverant/nexus/ocr-worker/internal/engine"
	"github.com/adverant/nexus/ocr-worker/internal/resulttree"
)

// OCRWord represents a single word with its bounding box
type OCRWord struct {
	Text        string      `json:"text"`
	Confidence  float64     `json:"confidence"`
	BoundingBox BoundingBox `json:"boundingBox"`
}

// BoundingBox represents coordinates of a region
type BoundingBox struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

func boxOf(r image.Rectangle) BoundingBox {
	return BoundingBox{X: r.Min.X, Y: r.Min.Y, Width: r.Dx(), Height: r.Dy()}
}

// Rect converts back to an image.Rectangle
func (b BoundingBox) Rect() image.Rectangle {
	return image.Rect(b.X, b.Y, b.X+b.Width, b.Y+b.Height)
}

// PageSummary counts and flattens one page
type PageSummary struct {
	Text       string    `json:"text"`
	Confidence float64   `json:"confidence"`
	Blocks     int       `json:"blocks"`
	Paragraphs int       `json:"paragraphs"`
	Lines      int       `json:"lines"`
	Words      []OCRWord `json:"words"`
}

// Summarize flattens a page tree. Text keeps the layout: words joined by
// spaces, lines by newlines, blocks by a blank line. Confidence is the
// mean word confidence, 0 when there are no words.
func Summarize(root *resulttree.Node) PageSummary {
	var s PageSummary
	if root == nil {
		return s
	}

	var sum float64
	for _, w := range root.Find(engine.LevelWord) {
		s.Words = append(s.Words, OCRWord{
			Text:        w.Text(),
			Confidence:  w.Confidence(),
			BoundingBox: boxOf(w.BoundingBox()),
		})
		sum += w.Confidence()
	}
	if len(s.Words) > 0 {
		s.Confidence = sum / float64(len(s.Words))
	}

	s.Blocks = root.Count(engine.LevelBlock)
	s.Paragraphs = root.Count(engine.LevelParagraph)
	s.Lines = root.Count(engine.LevelLine)
	s.Text = pageText(root)
	return s
}

func pageText(root *resulttree.Node) string {
	blocks := make([]string, 0, root.NumChildren())
	for _, block := range root.Find(engine.LevelBlock) {
		var lines []string
		for _, line := range block.Find(engine.LevelLine) {
			words := make([]string, 0, line.NumChildren())
			for _, w := range line.Find(engine.LevelWord) {
				if w.Text() != "" {
					words = append(words, w.Text())
				}
			}
			if len(words) > 0 {
				lines = append(lines, strings.Join(words, " "))
			}
		}
		if len(lines) > 0 {
			blocks = append(blocks, strings.Join(lines, "\n"))
		}
	}
	return strings.Join(blocks, "\n\n")
}
