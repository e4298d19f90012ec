package cli

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adverant/nexus/ocr-worker/internal/engine"
	"github.com/adverant/nexus/ocr-worker/internal/engine/enginetest"
	werrors "github.com/adverant/nexus/ocr-worker/internal/errors"
	"github.com/adverant/nexus/ocr-worker/internal/queue"
	"github.com/adverant/nexus/ocr-worker/internal/resulttree"
)

// resetFlags restores flag variables between Execute calls, which share
// the package-level command tree
func resetFlags() {
	verbose = false
	paramsGroup, paramsSearch, paramsJSON = "", "", false
	recognizeParams = nil
	recognizePreset, recognizePresetDir = "", ""
	recognizeDeadline = 0
	recognizeFormat = "text"
	recognizeLanguages = []string{"eng"}
	recognizeTessdata = ""
	enqueueParams = nil
	enqueuePreset, enqueueUser = "", ""
	enqueueDeadline = 0
	storeDatabaseURL = ""
	similarLimit = 10
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func useScriptedEngine(t *testing.T, lines ...string) {
	t.Helper()
	orig := newEngineFactory
	newEngineFactory = func([]string, string) (engine.Factory, error) {
		return enginetest.New(lines...).Factory(), nil
	}
	t.Cleanup(func() { newEngineFactory = orig })
}

func writePNG(t *testing.T, dir string, w, h int) string {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0xFF
	}
	img.SetGray(2, 2, color.Gray{Y: 0})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	path := filepath.Join(dir, "page.png")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func TestRootCommands(t *testing.T) {
	var names []string
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"params", "recognize", "enqueue", "similar", "job", "version"} {
		assert.Contains(t, names, want)
	}
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "ocrctl dev (none)")
	assert.Contains(t, out, "Parameters:")
}

func TestParamsListGroup(t *testing.T) {
	out, err := run(t, "params", "list", "--group", "debug")
	require.NoError(t, err)
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "tessedit_dump_pageseg_images")
	assert.NotContains(t, out, "invert_threshold")

	_, err = run(t, "params", "list", "--group", "nope")
	assert.ErrorContains(t, err, "unknown parameter group")
}

func TestParamsListSearchJSON(t *testing.T) {
	out, err := run(t, "params", "list", "--search", "invert", "--json")
	require.NoError(t, err)

	var views []paramView
	require.NoError(t, json.Unmarshal([]byte(out), &views))
	byName := make(map[string]paramView)
	for _, v := range views {
		byName[v.Name] = v
	}
	require.Contains(t, byName, "invert_threshold")
	assert.Equal(t, "double", byName["invert_threshold"].Kind)
	assert.Equal(t, "0.7", byName["invert_threshold"].Default)
	assert.Equal(t, "invert_threshold", byName["tessedit_do_invert"].Deprecated)
}

func TestParamsListGroupAndSearch(t *testing.T) {
	out, err := run(t, "params", "list", "--group", "segmentation", "--search", "invert", "--json")
	require.NoError(t, err)

	var views []paramView
	require.NoError(t, json.Unmarshal([]byte(out), &views))
	require.NotEmpty(t, views)
	for _, v := range views {
		assert.Equal(t, "segmentation", v.Group)
	}
}

func TestParamsGet(t *testing.T) {
	out, err := run(t, "params", "get", "tessedit_pageseg_mode")
	require.NoError(t, err)
	assert.Contains(t, out, "Kind:        int")
	assert.Contains(t, out, "Default:     6")
	assert.NotContains(t, out, "Deprecated")

	out, err = run(t, "params", "get", "tessedit_do_invert")
	require.NoError(t, err)
	assert.Contains(t, out, "Deprecated:  use invert_threshold")

	_, err = run(t, "params", "get", "no_such_option")
	assert.ErrorIs(t, err, werrors.ErrUnknownParameter)

	_, err = run(t, "params", "get")
	assert.Error(t, err)
}

func TestParamsCheck(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "fast.yaml")
	require.NoError(t, os.WriteFile(good, []byte("tessedit_pageseg_mode: 4\ntessedit_do_invert: false\n"), 0o644))

	out, err := run(t, "params", "check", good)
	require.NoError(t, err)
	assert.Contains(t, out, "fast: ok (2 changed)")
	assert.Contains(t, out, "  tessedit_pageseg_mode = 4\n")
	assert.Contains(t, out, "  invert_threshold = 0\n")

	bad := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("no_such_option = 1\n"), 0o644))
	_, err = run(t, "params", "check", good, bad)
	assert.ErrorIs(t, err, werrors.ErrUnknownParameter)
}

func TestRecognizeText(t *testing.T) {
	useScriptedEngine(t, "abc 123 x9")
	img := writePNG(t, t.TempDir(), 200, 60)

	out, err := run(t, "recognize", img)
	require.NoError(t, err)
	assert.Equal(t, "abc 123 x9\n", out)

	out, err = run(t, "recognize", img, "-p", "tessedit_char_whitelist=0123456789")
	require.NoError(t, err)
	assert.Equal(t, "123 9\n", out)
}

func TestRecognizePresetFile(t *testing.T) {
	useScriptedEngine(t, "abc 123 x9")
	dir := t.TempDir()
	img := writePNG(t, dir, 200, 60)
	preset := filepath.Join(dir, "digits.yaml")
	require.NoError(t, os.WriteFile(preset, []byte("tessedit_char_whitelist: \"0123456789\"\n"), 0o644))

	out, err := run(t, "recognize", img, "--preset", preset, "--format", "json")
	require.NoError(t, err)

	var res struct {
		Text    string   `json:"text"`
		Preset  string   `json:"preset"`
		Changed []string `json:"changedParameters"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "123 9", res.Text)
	assert.Equal(t, "digits", res.Preset)
	assert.Equal(t, []string{"tessedit_char_whitelist"}, res.Changed)
}

func TestRecognizeTree(t *testing.T) {
	useScriptedEngine(t, "one two", "three")
	img := writePNG(t, t.TempDir(), 200, 100)

	out, err := run(t, "recognize", img, "--format", "tree")
	require.NoError(t, err)

	tree, err := resulttree.Unmarshal([]byte(out))
	require.NoError(t, err)
	assert.Equal(t, engine.LevelPage, tree.Level())
	assert.Equal(t, 2, tree.Count(engine.LevelLine))
	assert.Equal(t, []string{"one", "two", "three"}, tree.Words())
}

func TestRecognizeErrors(t *testing.T) {
	useScriptedEngine(t, "hello")
	img := writePNG(t, t.TempDir(), 100, 50)

	_, err := run(t, "recognize", img, "-p", "tessedit_pageseg_mode")
	assert.ErrorContains(t, err, "want name=value")

	_, err = run(t, "recognize", img, "-p", "tessedit_pageseg_mode=many")
	assert.ErrorIs(t, err, werrors.ErrTypeMismatch)

	_, err = run(t, "recognize", img, "--format", "xml")
	assert.ErrorContains(t, err, "unknown output format")

	_, err = run(t, "recognize", img, "--preset", "missing")
	assert.ErrorContains(t, err, "unknown preset")

	_, err = run(t, "recognize", filepath.Join(t.TempDir(), "none.png"))
	assert.ErrorContains(t, err, "failed to read image")

	_, err = run(t, "recognize")
	assert.Error(t, err)
}

func TestParseAssignments(t *testing.T) {
	got, err := parseAssignments([]string{"a=1", " b =x=y", "c="})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "1", "b": "x=y", "c": ""}, got)

	got, err = parseAssignments(nil)
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = parseAssignments([]string{"=1"})
	assert.Error(t, err)
}

func TestBuildPayload(t *testing.T) {
	resetFlags()
	enqueueParams = []string{"tessedit_pageseg_mode=4"}
	enqueuePreset = "digits"
	enqueueDeadline = 1500

	p, err := buildPayload("https://files.example.com/scans/page.png")
	require.NoError(t, err)
	assert.Equal(t, "https://files.example.com/scans/page.png", p.ImageURL)
	assert.Equal(t, "page.png", p.Filename)
	assert.Empty(t, p.ImageBuffer)
	assert.Equal(t, map[string]string{"tessedit_pageseg_mode": "4"}, p.Parameters)
	assert.Equal(t, "digits", p.Preset)
	assert.Equal(t, 1500, p.DeadlineMs)

	img := writePNG(t, t.TempDir(), 10, 10)
	p, err = buildPayload(img)
	require.NoError(t, err)
	assert.Empty(t, p.ImageURL)
	assert.NotEmpty(t, p.ImageBuffer)

	task, err := queue.NewRecognizeTask(p, "ocr:jobs", 3, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, queue.TaskRecognize, task.Type())
	assert.NotEmpty(t, p.JobID)

	_, err = buildPayload(filepath.Join(t.TempDir(), "none.png"))
	assert.Error(t, err)
}

func TestStorageCommandsNeedDatabase(t *testing.T) {
	_, err := run(t, "similar", "result-1")
	assert.ErrorContains(t, err, "DATABASE_URL")

	_, err = run(t, "job", "job-1")
	assert.ErrorContains(t, err, "DATABASE_URL")

	_, err = run(t, "similar", "result-1", "--limit", "0")
	assert.ErrorContains(t, err, "--limit")
}

func TestSnippet(t *testing.T) {
	assert.Equal(t, "a b", snippet("a\nb", 10))
	assert.Equal(t, "abcd…", snippet("abcdefgh", 5))
}
