package logging

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoggerWritesKeyValues(t *testing.T) {
	defer func() {
		SetOutput(os.Stdout)
		SetLevel(LevelInfo)
	}()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetLevel(LevelInfo)

	l := NewLogger("Operation")
	l.Info("state changed", "from", "Idle", "to", "Running", "dangling")

	out := buf.String()
	assert.Contains(t, out, "[Operation] ")
	assert.Contains(t, out, "[INFO] state changed from=Idle to=Running")
	assert.NotContains(t, out, "dangling")
}

func TestLoggerLevelGate(t *testing.T) {
	defer func() {
		SetOutput(os.Stdout)
		SetLevel(LevelInfo)
	}()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetLevel(LevelWarn)

	l := NewLogger("Registry")
	l.Debug("hidden")
	l.Info("hidden")
	assert.Empty(t, buf.String())

	l.Warn("shown")
	assert.Contains(t, buf.String(), "[WARN] shown")
}

func TestWithExtendsPrefix(t *testing.T) {
	defer SetOutput(os.Stdout)

	var buf bytes.Buffer
	SetOutput(&buf)

	NewLogger("Worker").With("job").Error("boom")
	assert.Contains(t, buf.String(), "[Worker/job] ")
}

func TestNilLoggerIsSilent(t *testing.T) {
	var l *Logger
	assert.NotPanics(t, func() { l.Info("nothing") })
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, LevelWarn, ParseLevel("warning"))
	assert.Equal(t, LevelError, ParseLevel("error"))
	assert.Equal(t, LevelInfo, ParseLevel("bogus"))
}
