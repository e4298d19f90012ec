package tesseract

import (
	"errors"
	"image"
	"testing"

	"github.com/adverant/nexus/ocr-worker/internal/engine"
	"github.com/adverant/nexus/ocr-worker/internal/pix"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNestBuildsDepthFirstStream(t *testing.T) {
	page := engine.Element{Level: engine.LevelPage, Box: image.Rect(0, 0, 200, 100)}
	levels := [][]Box{
		{{Rect: image.Rect(0, 0, 200, 100), Text: "ab cd"}},
		{{Rect: image.Rect(0, 0, 200, 100), Text: "ab cd"}},
		{
			{Rect: image.Rect(0, 0, 200, 40), Text: "ab"},
			{Rect: image.Rect(0, 50, 200, 90), Text: "cd"},
		},
		{
			{Rect: image.Rect(10, 10, 30, 30), Text: "ab"},
			{Rect: image.Rect(10, 60, 30, 80), Text: "cd"},
		},
		{
			{Rect: image.Rect(10, 10, 20, 30), Text: "a"},
			{Rect: image.Rect(20, 10, 30, 30), Text: "b"},
			{Rect: image.Rect(10, 60, 20, 80), Text: "c"},
			{Rect: image.Rect(20, 60, 30, 80), Text: "d"},
		},
	}

	got := Nest(page, levels)
	var shape []string
	for _, e := range got {
		shape = append(shape, e.Level.String()+":"+e.Text)
	}
	assert.Equal(t, []string{
		"page:", "block:ab cd", "paragraph:ab cd",
		"line:ab", "word:ab", "symbol:a", "symbol:b",
		"line:cd", "word:cd", "symbol:c", "symbol:d",
	}, shape)
}

func TestNestFallsBackToOverlap(t *testing.T) {
	page := engine.Element{Level: engine.LevelPage, Box: image.Rect(0, 0, 100, 100)}
	levels := [][]Box{
		{
			{Rect: image.Rect(0, 0, 50, 50)},
			{Rect: image.Rect(50, 0, 100, 50)},
		},
		// center lies outside both blocks, overlap decides
		{{Rect: image.Rect(60, 30, 100, 80), Text: "p"}},
	}
	got := Nest(page, levels)
	require.Len(t, got, 4)
	assert.Equal(t, engine.LevelBlock, got[2].Level)
	assert.Equal(t, engine.LevelParagraph, got[3].Level)
	assert.Equal(t, image.Rect(50, 0, 100, 50), got[2].Box)
}

func TestStubUnavailable(t *testing.T) {
	if Available {
		t.Skip("native engine compiled in")
	}
	_, err := New(Options{})
	assert.True(t, errors.Is(err, engine.ErrEngineUnavailable))
}

func TestDetachOutlivesImage(t *testing.T) {
	img, err := pix.New(40, 20, pix.Depth8)
	require.NoError(t, err)

	busy := make(chan struct{})
	release := make(chan struct{})
	done := detach(img, busy, func(bounds image.Rectangle) ([]engine.Element, error) {
		<-release
		return []engine.Element{{Level: engine.LevelPage, Box: bounds}}, nil
	})

	// the operation frees its image as soon as a cancelled Recognize returns
	pix.Destroy(img)
	close(release)

	res := <-done
	require.NoError(t, res.err)
	require.Len(t, res.elems, 1)
	assert.Equal(t, image.Rect(0, 0, 40, 20), res.elems[0].Box)
	<-busy
}
