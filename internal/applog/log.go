// Package applog wires a truncate-on-open log file in the
// "<ISO-timestamp> - <message>" line format used throughout this system.
package applog

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"
)

// tsWriter formats each write as an ISO-8601-timestamped line, leaving
// timestamping to the writer rather than log.Logger's own flags so the
// format matches exactly rather than approximately.
type tsWriter struct {
	w io.Writer
}

func (t tsWriter) Write(p []byte) (int, error) {
	line := fmt.Sprintf("%s - %s", time.Now().Format("2006-01-02T15:04:05.000Z07:00"), p)
	if _, err := io.WriteString(t.w, line); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Open truncates (or creates) the file at path and returns a *log.Logger
// that writes "<ISO-timestamp> - <message>" lines to it, plus a close
// function the caller should defer.
func Open(path string) (*log.Logger, func() error, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file %s: %w", path, err)
	}
	logger := log.New(tsWriter{w: f}, "", 0)
	return logger, f.Close, nil
}

// Discard returns a logger that throws every line away, for runs with no
// log file configured.
func Discard() *log.Logger {
	return log.New(io.Discard, "", 0)
}
