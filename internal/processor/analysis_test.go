package processor

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adverant/nexus/ocr-worker/internal/engine"
	"github.com/adverant/nexus/ocr-worker/internal/engine/enginetest"
	"github.com/adverant/nexus/ocr-worker/internal/pix"
	"github.com/adverant/nexus/ocr-worker/internal/resulttree"
)

// recognizePage runs the scripted engine directly and builds its tree
func recognizePage(t *testing.T, w, h int, lines ...string) *resulttree.Node {
	t.Helper()
	img, err := pix.New(w, h, pix.Depth8)
	require.NoError(t, err)

	eng := enginetest.New(lines...)
	require.Equal(t, engine.StatusOK, eng.Recognize(img, nil))
	it, err := eng.Results()
	require.NoError(t, err)
	root, err := resulttree.Build(it)
	require.NoError(t, err)
	return root
}

func TestSummarizeKeepsLayout(t *testing.T) {
	root := recognizePage(t, 400, 300, "first line", "second", "", "next block")
	s := Summarize(root)

	assert.Equal(t, "first line\nsecond\n\nnext block", s.Text)
	assert.Equal(t, 2, s.Blocks)
	assert.Equal(t, 2, s.Paragraphs)
	assert.Equal(t, 3, s.Lines)
	require.Len(t, s.Words, 5)
	assert.Equal(t, "first", s.Words[0].Text)
	assert.Equal(t, BoundingBox{X: 10, Y: 10, Width: 50, Height: 20}, s.Words[0].BoundingBox)
	assert.InDelta(t, 90, s.Confidence, 0.001)
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	assert.Empty(t, s.Text)
	assert.Zero(t, s.Confidence)

	blank := recognizePage(t, 100, 100)
	s = Summarize(blank)
	assert.Empty(t, s.Text)
	assert.Empty(t, s.Words)
	assert.Zero(t, s.Confidence)
}

func TestBoundingBoxRect(t *testing.T) {
	b := BoundingBox{X: 3, Y: 4, Width: 10, Height: 5}
	assert.Equal(t, b, boxOf(b.Rect()))
}

func TestFingerprintIsUnitLength(t *testing.T) {
	root := recognizePage(t, 400, 400, "a heading", "", "body text here", "more body text")
	fp := Fingerprint(root)
	require.Len(t, fp, FingerprintSize)

	var norm float64
	for _, v := range fp {
		assert.GreaterOrEqual(t, v, float32(0))
		norm += float64(v) * float64(v)
	}
	assert.InDelta(t, 1, math.Sqrt(norm), 1e-5)

	// text sits in the top-left corner of the page
	assert.Greater(t, fp[0], fp[FingerprintSize-1])
}

func TestFingerprintEmptyPageIsUniform(t *testing.T) {
	want := float32(1 / math.Sqrt(FingerprintSize))
	for _, root := range []*resulttree.Node{nil, recognizePage(t, 100, 100)} {
		fp := Fingerprint(root)
		require.Len(t, fp, FingerprintSize)
		for _, v := range fp {
			assert.InDelta(t, want, v, 1e-6)
		}
	}
}

func TestFingerprintSimilarity(t *testing.T) {
	a := Fingerprint(recognizePage(t, 400, 400, "alpha beta gamma", "delta epsilon"))
	b := Fingerprint(recognizePage(t, 400, 400, "omega sigma kappa", "theta lambda"))
	c := Fingerprint(recognizePage(t, 400, 400, "x", "", "", "", "", "", "", "", "", "", "y"))

	assert.InDelta(t, 1, Similarity(a, a), 1e-6)
	assert.Greater(t, Similarity(a, b), Similarity(a, c))
	assert.Zero(t, Similarity(a, a[:10]))
	assert.Zero(t, Similarity(nil, nil))
}

func TestLayoutHeaderAndText(t *testing.T) {
	root := recognizePage(t, 400, 400, "Title", "", "body of the page", "continues here")
	layout := NewLayoutAnalyzer().Analyze(root)

	require.Len(t, layout.Regions, 2)
	assert.Equal(t, "header", layout.Regions[0].Type)
	assert.Equal(t, "Title", layout.Regions[0].Content)
	assert.Equal(t, "text", layout.Regions[1].Type)
	assert.Equal(t, "body of the page\ncontinues here", layout.Regions[1].Content)
	assert.Equal(t, []int{0, 1}, layout.ReadingOrder)
	assert.Empty(t, layout.Tables)
	assert.InDelta(t, 90, layout.Confidence, 0.001)
}

func TestLayoutSingleBlockIsText(t *testing.T) {
	root := recognizePage(t, 400, 400, "Title")
	layout := NewLayoutAnalyzer().Analyze(root)
	require.Len(t, layout.Regions, 1)
	assert.Equal(t, "text", layout.Regions[0].Type)
}

func TestLayoutNilTree(t *testing.T) {
	layout := NewLayoutAnalyzer().Analyze(nil)
	assert.Empty(t, layout.Regions)
	assert.Empty(t, layout.ReadingOrder)
}

func TestLayoutDelimitedTable(t *testing.T) {
	root := recognizePage(t, 800, 600,
		"Quarterly report",
		"",
		"| Header 1 | Header 2 | Header 3 |",
		"| Data 1 | Data 2 | Data 3 |",
		"| Data 4 | Data 5 | Data 6 |",
	)
	layout := NewLayoutAnalyzer().Analyze(root)

	require.Len(t, layout.Tables, 1)
	table := layout.Tables[0]
	assert.Equal(t, 1, table.RegionID)
	assert.Equal(t, "table", layout.Regions[1].Type)

	truth := [][]string{
		{"Header 1", "Header 2", "Header 3"},
		{"Data 1", "Data 2", "Data 3"},
		{"Data 4", "Data 5", "Data 6"},
	}
	accuracy := tableAccuracy(table, truth)
	t.Logf("Accuracy: %.2f%%", accuracy*100)
	assert.Equal(t, 1.0, accuracy)
}

func TestLayoutAlignedTable(t *testing.T) {
	root := recognizePage(t, 400, 400, "aa bb", "cc dd", "ee ff")
	layout := NewLayoutAnalyzer().Analyze(root)

	require.Len(t, layout.Tables, 1)
	table := layout.Tables[0]
	assert.Equal(t, 1.0, tableAccuracy(table, [][]string{{"aa", "bb"}, {"cc", "dd"}, {"ee", "ff"}}))
	assert.Equal(t, BoundingBox{X: 10, Y: 10, Width: 50, Height: 80}, table.BoundingBox)
	assert.Equal(t, 40, table.Rows[1].Cells[1].BoundingBox.X)
}

func TestLayoutProseIsNotATable(t *testing.T) {
	root := recognizePage(t, 400, 400, "hello world", "foo bar")
	layout := NewLayoutAnalyzer().Analyze(root)
	assert.Empty(t, layout.Tables)
	assert.Equal(t, "text", layout.Regions[0].Type)
}

func TestDetectTableRegions(t *testing.T) {
	lines := []string{
		"intro",
		"a,b,c",
		"d,e,f",
		"g,h,i,j,k,l",
		"plain",
		"x|y|z",
	}
	regions := detectTableRegions(lines)
	require.Len(t, regions, 1)
	assert.Equal(t, 1, regions[0].StartLine)
	assert.Equal(t, 2, regions[0].EndLine)
	assert.Equal(t, ",", regions[0].Delimiter)
}

func TestExtractCellsFromLine(t *testing.T) {
	assert.Equal(t, []string{" a ", " b "}, extractCellsFromLine("| a | b |", "|"))
	assert.Equal(t, []string{"a", "b", ""}, extractCellsFromLine("a,b,", ","))
	assert.Empty(t, extractCellsFromLine("a b", ""))
}

func TestReadingOrderColumns(t *testing.T) {
	regions := []LayoutRegion{
		{ID: 0, BoundingBox: BoundingBox{X: 300, Y: 100, Width: 100, Height: 50}},
		{ID: 1, BoundingBox: BoundingBox{X: 10, Y: 110, Width: 100, Height: 50}},
		{ID: 2, BoundingBox: BoundingBox{X: 10, Y: 10, Width: 400, Height: 30}},
	}
	order := NewLayoutAnalyzer().determineReadingOrder(regions)
	assert.Equal(t, []int{2, 1, 0}, order)
}

func tableAccuracy(table Table, truth [][]string) float64 {
	total, correct := 0, 0
	for r, row := range truth {
		for c, want := range row {
			total++
			if r < len(table.Rows) && c < len(table.Rows[r].Cells) && table.Rows[r].Cells[c].Content == want {
				correct++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(correct) / float64(total)
}

func writePreset(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func TestPresetStoreReload(t *testing.T) {
	dir := t.TempDir()
	writePreset(t, dir, "digits.yaml", "tessedit_char_whitelist: \"0123456789\"\n")
	writePreset(t, dir, "README.md", "not a preset")

	store, err := NewPresetStore(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"digits"}, store.Names())

	writePreset(t, dir, "receipts.toml", "tessedit_pageseg_mode = 4\n")
	require.NoError(t, store.Reload())
	assert.Equal(t, []string{"digits", "receipts"}, store.Names())

	// a bad preset fails the reload and leaves the loaded set alone
	writePreset(t, dir, "broken.yaml", "no_such_option: 1\n")
	assert.Error(t, store.Reload())
	assert.Equal(t, []string{"digits", "receipts"}, store.Names())

	_, err = NewPresetStore(dir)
	assert.Error(t, err)
}

func TestPresetStoreWatch(t *testing.T) {
	dir := t.TempDir()
	writePreset(t, dir, "digits.yaml", "tessedit_char_whitelist: \"0123456789\"\n")
	store, err := NewPresetStore(dir)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- store.Watch(ctx, 20*time.Millisecond) }()

	// give the watcher time to register the directory
	time.Sleep(50 * time.Millisecond)
	writePreset(t, dir, "lines.conf", "tessedit_pageseg_mode 7\n")

	assert.Eventually(t, func() bool {
		_, ok := store.Get("lines")
		return ok
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("watch did not stop")
	}
}

func TestPresetStoreWatchNeedsDir(t *testing.T) {
	store, err := NewPresetStore("")
	require.NoError(t, err)
	assert.Error(t, store.Watch(context.Background(), time.Millisecond))
}
