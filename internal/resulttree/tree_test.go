package resulttree

import (
	stderrors "errors"
	"image"
	"math"
	"testing"

	"github.com/adverant/nexus/ocr-worker/internal/engine"
	"github.com/adverant/nexus/ocr-worker/internal/engine/enginetest"
	werrors "github.com/adverant/nexus/ocr-worker/internal/errors"
	"github.com/adverant/nexus/ocr-worker/internal/pix"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func el(level engine.Level, text string, box image.Rectangle, conf float64) engine.Element {
	return engine.Element{Level: level, Text: text, Box: box, Confidence: conf}
}

func build(t *testing.T, elems ...engine.Element) *Node {
	t.Helper()
	root, err := Build(engine.NewSliceIterator(elems))
	require.NoError(t, err)
	return root
}

func assertContained(t *testing.T, root *Node) {
	t.Helper()
	root.Walk(func(n *Node, _ int) bool {
		for _, c := range n.Children() {
			assert.True(t, c.BoundingBox().In(n.BoundingBox()),
				"%s %v not inside %s %v", c.Level(), c.BoundingBox(), n.Level(), n.BoundingBox())
		}
		return true
	})
}

func TestBuildKeepsOrderAndEmptyLayoutNodes(t *testing.T) {
	root := build(t,
		el(engine.LevelPage, "", image.Rect(0, 0, 100, 100), 80),
		el(engine.LevelBlock, "", image.Rect(0, 0, 50, 50), 0),
		el(engine.LevelBlock, "zb", image.Rect(50, 50, 100, 100), 70),
		el(engine.LevelParagraph, "zb", image.Rect(50, 50, 100, 100), 70),
		el(engine.LevelLine, "zb", image.Rect(50, 50, 100, 70), 70),
		el(engine.LevelWord, "z", image.Rect(50, 50, 60, 70), 60),
		el(engine.LevelWord, "b", image.Rect(70, 50, 80, 70), 80),
	)
	require.Equal(t, 2, root.NumChildren())
	assert.Equal(t, "", root.Child(0).Text())
	assert.Equal(t, image.Rect(0, 0, 50, 50), root.Child(0).BoundingBox())
	assert.Equal(t, 0, root.Child(0).NumChildren())
	assert.Equal(t, []string{"z", "b"}, root.Words())
	assert.Equal(t, 2, root.Count(engine.LevelWord))
}

func TestBuildWidensParents(t *testing.T) {
	root := build(t,
		el(engine.LevelPage, "", image.Rect(0, 0, 100, 100), 0),
		el(engine.LevelBlock, "", image.Rect(10, 10, 20, 20), 0),
		el(engine.LevelParagraph, "", image.Rect(5, 5, 30, 30), 0),
		el(engine.LevelLine, "", image.Rect(5, 5, 120, 25), 0),
	)
	assertContained(t, root)
	assert.Equal(t, image.Rect(0, 0, 120, 100), root.BoundingBox())
	assert.Equal(t, image.Rect(5, 5, 120, 30), root.Child(0).BoundingBox())
}

func TestBuildClampsAndNormalizes(t *testing.T) {
	root := build(t,
		el(engine.LevelPage, "", image.Rect(0, 0, 10, 10), 140),
		el(engine.LevelBlock, "cafe\u0301", image.Rect(0, 0, 10, 10), -3),
		el(engine.LevelParagraph, "", image.Rect(0, 0, 10, 10), math.NaN()),
	)
	assert.Equal(t, 100.0, root.Confidence())
	assert.Equal(t, 0.0, root.Child(0).Confidence())
	assert.Equal(t, 0.0, root.Child(0).Child(0).Confidence())
	assert.Equal(t, "caf\u00e9", root.Child(0).Text())
}

func TestBuildRejectsMalformedStreams(t *testing.T) {
	page := el(engine.LevelPage, "", image.Rect(0, 0, 10, 10), 0)
	tests := []struct {
		name  string
		elems []engine.Element
	}{
		{"empty", nil},
		{"no page", []engine.Element{el(engine.LevelBlock, "", image.Rectangle{}, 0)}},
		{"level gap", []engine.Element{page, el(engine.LevelWord, "x", image.Rectangle{}, 0)}},
		{"second page", []engine.Element{page, page}},
		{"bad level", []engine.Element{page, el(engine.Level(42), "", image.Rectangle{}, 0)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(engine.NewSliceIterator(tt.elems))
			require.Error(t, err)
			assert.True(t, stderrors.Is(err, werrors.ErrFailed))
		})
	}
}

func TestTreeFromFakeEngineIsContained(t *testing.T) {
	e := enginetest.New("the quick brown fox", "jumps over", "", "the lazy dog")
	img, err := pix.New(600, 300, pix.Depth8)
	require.NoError(t, err)
	require.Equal(t, engine.StatusOK, e.Recognize(img, nil))

	it, err := e.Results()
	require.NoError(t, err)
	root, err := Build(it)
	require.NoError(t, err)

	assertContained(t, root)
	assert.Equal(t, "thequickbrownfoxjumpsoverthelazydog", root.LeafText())
	assert.Len(t, root.Find(engine.LevelBlock), 2)
	assert.Len(t, root.Find(engine.LevelLine), 3)
}

func TestSnapshotRoundTrip(t *testing.T) {
	root := build(t,
		el(engine.LevelPage, "hi", image.Rect(0, 0, 40, 20), 90),
		el(engine.LevelBlock, "hi", image.Rect(0, 0, 20, 20), 90),
	)
	data, err := root.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"level":"page","text":"hi","box":[0,0,40,20],"confidence":90,
		"children":[{"level":"block","text":"hi","box":[0,0,20,20],"confidence":90}]}`, string(data))

	back, err := Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, root.Snapshot(), back.Snapshot())

	_, err = FromSnapshot(Snapshot{Level: "chapter"})
	assert.Error(t, err)
}

func TestWalkSkipsChildren(t *testing.T) {
	root := build(t,
		el(engine.LevelPage, "", image.Rect(0, 0, 10, 10), 0),
		el(engine.LevelBlock, "", image.Rect(0, 0, 10, 10), 0),
		el(engine.LevelParagraph, "", image.Rect(0, 0, 10, 10), 0),
	)
	var seen []engine.Level
	root.Walk(func(n *Node, depth int) bool {
		seen = append(seen, n.Level())
		return depth < 1
	})
	assert.Equal(t, []engine.Level{engine.LevelPage, engine.LevelBlock}, seen)
}
