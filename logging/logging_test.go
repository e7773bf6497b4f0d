package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingWriter struct{}

func (fw *failingWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

func TestTUIMode(t *testing.T) {
	require.NoError(t, Init(Options{Buffer: true, Level: "DEBUG", Format: "text"}))

	slog.Info("Initial log")

	var tuiPane bytes.Buffer
	require.NoError(t, SetOutput(&tuiPane))
	assert.Contains(t, tuiPane.String(), "Initial log", "buffered records are flushed to the pane")

	slog.Info("Live log")
	assert.Contains(t, tuiPane.String(), "Live log")

	BufferOutput()
	slog.Info("Buffered log")
	assert.NotContains(t, tuiPane.String(), "Buffered log")

	assert.NoError(t, Close())
}

func TestHardwareMode_FileLogging(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "fcleds-logtest")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(tempDir) })
	logFile := filepath.Join(tempDir, "fcleds.log")

	require.NoError(t, Init(Options{Level: "INFO", Format: "json", File: logFile}))
	var stderr bytes.Buffer
	require.NoError(t, SetOutput(&stderr))

	slog.Info("frame sent", "seq", 42)
	slog.Debug("not logged at INFO")
	require.NoError(t, Close())

	content, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(content), `"msg":"frame sent"`)
	assert.Contains(t, string(content), `"seq":42`)
	assert.NotContains(t, string(content), "not logged")
}

func TestInit_BadFile(t *testing.T) {
	err := Init(Options{File: filepath.Join(t.TempDir(), "missing", "dir", "x.log")})
	assert.Error(t, err)
}

func TestStderrFallback(t *testing.T) {
	require.NoError(t, Init(Options{Buffer: true, Level: "DEBUG"}))

	slog.Info("Shutdown log")

	oldStderr := os.Stderr
	r, w, _ := os.Pipe()
	os.Stderr = w

	var wg sync.WaitGroup
	wg.Add(1)
	var capturedOutput string
	go func() {
		defer wg.Done()
		buf := make([]byte, 1024)
		n, _ := r.Read(buf)
		capturedOutput = string(buf[:n])
	}()

	assert.NoError(t, Close())

	w.Close()
	wg.Wait()
	os.Stderr = oldStderr

	assert.Contains(t, capturedOutput, "Shutdown log")
}

func TestTail(t *testing.T) {
	require.NoError(t, Init(Options{Buffer: true}))
	for i := 0; i < tailSize+5; i++ {
		slog.Info("line", "i", i)
	}

	lines := Tail(3)
	require.Len(t, lines, 3)
	assert.Contains(t, lines[2], "i=204")
	assert.Contains(t, lines[0], "i=202")
	assert.Len(t, Tail(1000), tailSize)
	assert.NoError(t, Close())
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
		ok   bool
	}{
		{"debug", slog.LevelDebug, true},
		{"INFO", slog.LevelInfo, true},
		{"", slog.LevelInfo, true},
		{"Warn", slog.LevelWarn, true},
		{"ERROR", slog.LevelError, true},
		{"TRACE", slog.LevelInfo, false},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.ok, err == nil, tt.in)
	}
}

func TestWriteError(t *testing.T) {
	require.NoError(t, Init(Options{}))
	writer.target = &failingWriter{}

	_, err := writer.Write([]byte("x\n"))
	assert.Error(t, err)
	assert.True(t, strings.HasSuffix(Tail(1)[0], "x"))
}
