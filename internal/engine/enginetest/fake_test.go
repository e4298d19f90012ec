package enginetest

import (
	"testing"

	"github.com/adverant/nexus/ocr-worker/internal/engine"
	"github.com/adverant/nexus/ocr-worker/internal/pix"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func page(t *testing.T) *pix.Pix {
	t.Helper()
	p, err := pix.New(400, 200, pix.Depth8)
	require.NoError(t, err)
	return p
}

func collect(t *testing.T, e *Engine) []engine.Element {
	t.Helper()
	it, err := e.Results()
	require.NoError(t, err)
	var out []engine.Element
	for el, ok := it.Next(); ok; el, ok = it.Next() {
		out = append(out, el)
	}
	return out
}

func TestFakeStreamShape(t *testing.T) {
	e := New("hello world", "", "again")
	require.Equal(t, engine.StatusOK, e.Recognize(page(t), nil))

	var levels []engine.Level
	for _, el := range collect(t, e) {
		if el.Level <= engine.LevelWord {
			levels = append(levels, el.Level)
		}
	}
	assert.Equal(t, []engine.Level{
		engine.LevelPage,
		engine.LevelBlock, engine.LevelParagraph, engine.LevelLine, engine.LevelWord, engine.LevelWord,
		engine.LevelBlock, engine.LevelParagraph, engine.LevelLine, engine.LevelWord,
	}, levels)
}

func TestFakeHonoursWhitelist(t *testing.T) {
	e := New("A1B2 C3")
	require.True(t, e.SetParameter("tessedit_char_whitelist", "0123456789"))
	require.Equal(t, engine.StatusOK, e.Recognize(page(t), nil))

	var words []string
	for _, el := range collect(t, e) {
		if el.Level == engine.LevelWord {
			words = append(words, el.Text)
		}
	}
	assert.Equal(t, []string{"12", "3"}, words)
	assert.Equal(t, []Param{{"tessedit_char_whitelist", "0123456789"}}, e.Calls())
}

func TestFakeRejectAndStatus(t *testing.T) {
	e := New("x")
	e.Reject = map[string]bool{"bad": true}
	assert.False(t, e.SetParameter("bad", "1"))
	assert.Empty(t, e.Calls())

	e.Status = engine.StatusFailed
	assert.Equal(t, engine.StatusFailed, e.Recognize(page(t), nil))
	_, err := e.Results()
	assert.Error(t, err)

	assert.Equal(t, engine.StatusBadImage, New("x").Recognize(nil, nil))
}
