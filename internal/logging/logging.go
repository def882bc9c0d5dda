// Package logging sets up per-session logging: one line per notable event,
// written to both the console and a numbered file under the log directory
// (log_1.txt, log_2.txt, ...), a fresh file per run, never appended.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// Session is an open logging session.
type Session struct {
	Logger *slog.Logger
	// Path is the numbered log file for this run.
	Path string

	file *os.File
}

// Setup creates the log directory if needed, claims the next free numbered
// log file, and returns a logger writing to it and to console. Pass
// io.Discard as console when a TUI owns the terminal.
func Setup(dir string, console io.Writer) (*Session, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir %s: %w", dir, err)
	}

	path, file, err := nextLogFile(dir)
	if err != nil {
		return nil, err
	}

	var w io.Writer = file
	if console != nil && console != io.Discard {
		w = io.MultiWriter(file, console)
	}

	return &Session{
		Logger: slog.New(newLineHandler(w, slog.LevelInfo)),
		Path:   path,
		file:   file,
	}, nil
}

// Close flushes and closes the session log file.
func (s *Session) Close() error {
	if s.file == nil {
		return nil
	}
	return s.file.Close()
}

// nextLogFile claims the first free logs/log_N.txt. O_EXCL makes the claim
// atomic against concurrent runs.
func nextLogFile(dir string) (string, *os.File, error) {
	for n := 1; ; n++ {
		path := filepath.Join(dir, fmt.Sprintf("log_%d.txt", n))
		file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			return path, file, nil
		}
		if !os.IsExist(err) {
			return "", nil, fmt.Errorf("open log file %s: %w", path, err)
		}
	}
}

// lineHandler renders records as "2006-01-02 15:04:05 - message key=value".
type lineHandler struct {
	mu    *sync.Mutex
	w     io.Writer
	level slog.Level
	attrs []slog.Attr
}

func newLineHandler(w io.Writer, level slog.Level) *lineHandler {
	return &lineHandler{mu: &sync.Mutex{}, w: w, level: level}
}

func (h *lineHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *lineHandler) Handle(_ context.Context, rec slog.Record) error {
	line := rec.Time.Format("2006-01-02 15:04:05") + " - "
	if rec.Level >= slog.LevelError {
		line += "ERROR: "
	}
	line += rec.Message
	for _, a := range h.attrs {
		line += fmt.Sprintf(" %s=%v", a.Key, a.Value)
	}
	rec.Attrs(func(a slog.Attr) bool {
		line += fmt.Sprintf(" %s=%v", a.Key, a.Value)
		return true
	})
	line += "\n"

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, line)
	return err
}

func (h *lineHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &lineHandler{mu: h.mu, w: h.w, level: h.level, attrs: merged}
}

func (h *lineHandler) WithGroup(string) slog.Handler { return h }
