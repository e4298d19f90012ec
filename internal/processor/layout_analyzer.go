/**
 * Layout Analyzer - Region classification over recognition result trees
 *
 * Classifies the blocks of a recognized page into regions (header,
 * footer, text, table, image), detects tables either from delimiter
 * patterns in line text or from column-aligned words, and derives a
 * reading order from region geometry.
 */

package processor

import (
	"image"
	"log"
	"sort"
	"strings"

	"github.com/adverant/nexus/ocr-worker/internal/engine"
	"github.com/adverant/nexus/ocr-worker/internal/resulttree"
)

// LayoutAnalyzer classifies regions on a recognized page
type LayoutAnalyzer struct {
	headerBand float64 // fraction of page height counted as header
	footerBand float64 // fraction of page height counted as footer
}

// LayoutResult contains layout analysis results
type LayoutResult struct {
	Confidence   float64        `json:"confidence"`
	Regions      []LayoutRegion `json:"regions"`
	Tables       []Table        `json:"tables"`
	ReadingOrder []int          `json:"readingOrder"`
}

// LayoutRegion represents a region on the page
type LayoutRegion struct {
	ID          int         `json:"id"`
	Type        string      `json:"type"` // "text", "image", "table", "header", "footer"
	BoundingBox BoundingBox `json:"boundingBox"`
	Confidence  float64     `json:"confidence"`
	Content     string      `json:"content"`
}

// Table represents an extracted table
type Table struct {
	ID          int         `json:"id"`
	RegionID    int         `json:"regionId"`
	BoundingBox BoundingBox `json:"boundingBox"`
	Rows        []TableRow  `json:"rows"`
	Confidence  float64     `json:"confidence"`
}

// TableRow represents a table row
type TableRow struct {
	RowNumber int         `json:"rowNumber"`
	Cells     []TableCell `json:"cells"`
}

// TableCell represents a table cell
type TableCell struct {
	ColumnNumber int         `json:"columnNumber"`
	Content      string      `json:"content"`
	BoundingBox  BoundingBox `json:"boundingBox"`
	Confidence   float64     `json:"confidence"`
}

// NewLayoutAnalyzer creates a layout analyzer with 8% header and footer bands
func NewLayoutAnalyzer() *LayoutAnalyzer {
	return &LayoutAnalyzer{headerBand: 0.08, footerBand: 0.08}
}

// Analyze classifies the blocks of a page tree
func (l *LayoutAnalyzer) Analyze(root *resulttree.Node) *LayoutResult {
	result := &LayoutResult{Regions: []LayoutRegion{}, Tables: []Table{}, ReadingOrder: []int{}}
	if root == nil {
		return result
	}

	page := root.BoundingBox()
	blocks := root.Find(engine.LevelBlock)

	var confSum float64
	for i, block := range blocks {
		region := LayoutRegion{
			ID:          i,
			Type:        l.classify(page, block, len(blocks)),
			BoundingBox: boxOf(block.BoundingBox()),
			Confidence:  block.Confidence(),
			Content:     pageText(block),
		}

		if region.Type == "text" {
			if table := l.extractTable(block); table != nil {
				region.Type = "table"
				table.ID = len(result.Tables)
				table.RegionID = i
				result.Tables = append(result.Tables, *table)
			}
		}

		result.Regions = append(result.Regions, region)
		confSum += region.Confidence
	}

	if len(result.Regions) > 0 {
		result.Confidence = confSum / float64(len(result.Regions))
	}
	result.ReadingOrder = l.determineReadingOrder(result.Regions)

	if len(result.Tables) > 0 {
		log.Printf("Layout analysis: %d regions, %d tables", len(result.Regions), len(result.Tables))
	}
	return result
}

// classify assigns a region type from geometry and content
func (l *LayoutAnalyzer) classify(page image.Rectangle, block *resulttree.Node, blockCount int) string {
	if block.Count(engine.LevelWord) == 0 {
		return "image"
	}
	if blockCount < 2 || page.Empty() {
		return "text"
	}

	b := block.BoundingBox()
	h := float64(page.Dy())
	if float64(b.Max.Y-page.Min.Y) <= l.headerBand*h {
		return "header"
	}
	if float64(page.Max.Y-b.Min.Y) <= l.footerBand*h {
		return "footer"
	}
	return "text"
}

// extractTable tries delimiter patterns first, then column alignment
func (l *LayoutAnalyzer) extractTable(block *resulttree.Node) *Table {
	lines := block.Find(engine.LevelLine)
	if len(lines) < 2 {
		return nil
	}

	texts := make([]string, len(lines))
	for i, line := range lines {
		texts[i] = strings.Join(line.Words(), " ")
	}
	if regions := detectTableRegions(texts); len(regions) > 0 {
		return tableFromRegion(regions[0], block.Confidence())
	}

	return alignedTable(lines)
}

// TableRegion represents a run of lines sharing a delimiter
type TableRegion struct {
	StartLine int
	EndLine   int
	Delimiter string
	Lines     []string
}

// detectTableRegions finds runs of 2+ lines with the same delimiter and a
// column count within one of the first line's
func detectTableRegions(lines []string) []TableRegion {
	regions := make([]TableRegion, 0)

	i := 0
	for i < len(lines) {
		delimiter := detectDelimiter(lines[i])
		if delimiter == "" {
			i++
			continue
		}

		startLine := i
		regionLines := []string{lines[i]}
		expectedCols := strings.Count(lines[i], delimiter)

		i++
		for i < len(lines) && detectDelimiter(lines[i]) == delimiter {
			if abs(strings.Count(lines[i], delimiter)-expectedCols) > 1 {
				break
			}
			regionLines = append(regionLines, lines[i])
			i++
		}

		if len(regionLines) >= 2 {
			regions = append(regions, TableRegion{
				StartLine: startLine,
				EndLine:   i - 1,
				Delimiter: delimiter,
				Lines:     regionLines,
			})
		}
	}

	return regions
}

func tableFromRegion(region TableRegion, confidence float64) *Table {
	rows := make([]TableRow, 0, len(region.Lines))
	for _, line := range region.Lines {
		cells := extractCellsFromLine(line, region.Delimiter)
		if len(cells) == 0 {
			continue
		}
		tableCells := make([]TableCell, 0, len(cells))
		for colIdx, content := range cells {
			tableCells = append(tableCells, TableCell{
				ColumnNumber: colIdx,
				Content:      strings.TrimSpace(content),
				Confidence:   confidence,
			})
		}
		rows = append(rows, TableRow{RowNumber: len(rows), Cells: tableCells})
	}
	if len(rows) == 0 {
		return nil
	}
	return &Table{Rows: rows, Confidence: confidence}
}

// alignedTable accepts a block whose lines all have the same number of
// words (at least two) with matching left edges per column
func alignedTable(lines []*resulttree.Node) *Table {
	first := lines[0].Find(engine.LevelWord)
	cols := len(first)
	if cols < 2 {
		return nil
	}
	tolerance := lines[0].BoundingBox().Dy() / 2
	if tolerance < 4 {
		tolerance = 4
	}

	rows := make([]TableRow, 0, len(lines))
	var box image.Rectangle
	var confSum float64
	var cellCount int
	for r, line := range lines {
		words := line.Find(engine.LevelWord)
		if len(words) != cols {
			return nil
		}
		cells := make([]TableCell, cols)
		for c, w := range words {
			if abs(w.BoundingBox().Min.X-first[c].BoundingBox().Min.X) > tolerance {
				return nil
			}
			cells[c] = TableCell{
				ColumnNumber: c,
				Content:      w.Text(),
				BoundingBox:  boxOf(w.BoundingBox()),
				Confidence:   w.Confidence(),
			}
			confSum += w.Confidence()
			cellCount++
		}
		rows = append(rows, TableRow{RowNumber: r, Cells: cells})
		box = box.Union(line.BoundingBox())
	}

	return &Table{
		BoundingBox: boxOf(box),
		Rows:        rows,
		Confidence:  confSum / float64(cellCount),
	}
}

// detectDelimiter identifies the delimiter used in a line
func detectDelimiter(line string) string {
	for _, delim := range []string{"|", "\t", ","} {
		if strings.Count(line, delim) >= 2 {
			return delim
		}
	}
	return ""
}

// extractCellsFromLine splits line into cells based on delimiter
func extractCellsFromLine(line string, delimiter string) []string {
	if delimiter == "" {
		return []string{}
	}
	cells := strings.Split(line, delimiter)
	if delimiter == "|" {
		// leading and trailing pipes frame the row
		if len(cells) > 0 && strings.TrimSpace(cells[0]) == "" {
			cells = cells[1:]
		}
		if len(cells) > 0 && strings.TrimSpace(cells[len(cells)-1]) == "" {
			cells = cells[:len(cells)-1]
		}
	}
	return cells
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// determineReadingOrder sorts regions top to bottom; regions that share a
// horizontal band are read left to right
func (l *LayoutAnalyzer) determineReadingOrder(regions []LayoutRegion) []int {
	order := make([]int, len(regions))
	for i := range regions {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ra, rb := regions[order[a]].BoundingBox, regions[order[b]].BoundingBox
		sameBand := ra.Y < rb.Y+rb.Height && rb.Y < ra.Y+ra.Height
		if sameBand {
			return ra.X < rb.X
		}
		return ra.Y < rb.Y
	})
	return order
}
