package logging

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/gammazero/deque"
)

// tailSize is the number of log lines kept for Tail.
const tailSize = 200

// bufferingTeeWriter buffers output until a target is set, tees it to an
// optional file and remembers the most recent lines.
type bufferingTeeWriter struct {
	mu          sync.Mutex
	buffer      *bytes.Buffer
	target      io.Writer
	file        *os.File
	isBuffering bool
	tail        deque.Deque[string]
}

func (w *bufferingTeeWriter) Write(p []byte) (n int, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	var firstErr error

	if w.isBuffering {
		w.buffer.Write(p)
	} else if w.target != nil {
		if _, err := w.target.Write(p); err != nil {
			firstErr = err
		}
	}

	if w.file != nil {
		if _, err := w.file.Write(p); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	for _, line := range strings.Split(strings.TrimRight(string(p), "\n"), "\n") {
		if w.tail.Len() >= tailSize {
			w.tail.PopFront()
		}
		w.tail.PushBack(line)
	}

	return len(p), firstErr
}

// Options select where and how the process logs.
type Options struct {
	// Buffer holds output back until SetOutput is called, e.g. until the
	// TUI log pane exists.
	Buffer bool
	Level  string
	Format string
	// File additionally appends every record to this path when set.
	File string
}

var writer = &bufferingTeeWriter{buffer: &bytes.Buffer{}}

// ParseLevel accepts DEBUG, INFO, WARN and ERROR in any case.
func ParseLevel(levelStr string) (slog.Level, error) {
	switch strings.ToUpper(levelStr) {
	case "DEBUG":
		return slog.LevelDebug, nil
	case "INFO", "":
		return slog.LevelInfo, nil
	case "WARN":
		return slog.LevelWarn, nil
	case "ERROR":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", levelStr)
}

// Init installs the default slog logger. An unknown level falls back to
// INFO.
func Init(opts Options) error {
	w := &bufferingTeeWriter{
		buffer:      &bytes.Buffer{},
		isBuffering: opts.Buffer,
	}
	if !opts.Buffer {
		w.target = os.Stderr
	}

	if opts.File != "" {
		file, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
		if err != nil {
			return fmt.Errorf("failed to open log file %s: %w", opts.File, err)
		}
		w.file = file
	}
	writer = w

	level, _ := ParseLevel(opts.Level)
	handlerOpts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if strings.ToLower(opts.Format) == "json" {
		handler = slog.NewJSONHandler(writer, handlerOpts)
	} else {
		handler = slog.NewTextHandler(writer, handlerOpts)
	}

	slog.SetDefault(slog.New(handler))
	return nil
}

// SetOutput flushes the buffer to the new writer and starts live logging.
func SetOutput(newTarget io.Writer) error {
	writer.mu.Lock()
	defer writer.mu.Unlock()

	if writer.buffer.Len() > 0 {
		if _, err := newTarget.Write(writer.buffer.Bytes()); err != nil {
			return err
		}
		writer.buffer.Reset()
	}

	writer.target = newTarget
	writer.isBuffering = false
	return nil
}

// BufferOutput stops live logging and starts buffering.
func BufferOutput() {
	writer.mu.Lock()
	defer writer.mu.Unlock()

	writer.target = nil
	writer.isBuffering = true
}

// Tail returns up to n of the most recent log lines, oldest first.
func Tail(n int) []string {
	writer.mu.Lock()
	defer writer.mu.Unlock()

	n = min(n, writer.tail.Len())
	ret := make([]string, 0, n)
	for i := writer.tail.Len() - n; i < writer.tail.Len(); i++ {
		ret = append(ret, writer.tail.At(i))
	}
	return ret
}

// Close flushes any remaining buffered output and closes the log file.
// Without a file or target the buffer goes to stderr.
func Close() error {
	writer.mu.Lock()
	defer writer.mu.Unlock()

	var firstErr error

	if writer.file != nil {
		if err := writer.file.Close(); err != nil {
			firstErr = err
		}
		writer.file = nil
	}
	if writer.target == nil && writer.buffer.Len() > 0 {
		if _, err := os.Stderr.Write(writer.buffer.Bytes()); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	writer.buffer.Reset()
	return firstErr
}
