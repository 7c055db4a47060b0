package log

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
)

// ProcessLogger turns the output stream of a child process into log records.
type ProcessLogger interface {
	// Writer returns a line-buffered writer for one stage and stream ("stdout"/"stderr").
	Writer(stage, stream string) *LineWriter
}

// processLogger implements ProcessLogger on top of a slog.Logger.
type processLogger struct {
	logger *slog.Logger
	level  slog.Level
}

// NewProcess creates a new ProcessLogger. If logger is nil, returns a no-op logger.
func NewProcess(logger *slog.Logger, level slog.Level) ProcessLogger {
	return &processLogger{logger: logger, level: level}
}

func (p *processLogger) Writer(stage, stream string) *LineWriter {
	return &LineWriter{logger: p.logger, level: p.level, stage: stage, stream: stream}
}

// LineWriter emits one record per complete line written to it.
// Partial lines are held until the next newline or Flush.
type LineWriter struct {
	logger *slog.Logger
	level  slog.Level
	stage  string
	stream string

	mu  sync.Mutex
	buf bytes.Buffer
}

func (w *LineWriter) Write(p []byte) (int, error) {
	if w.logger == nil {
		return len(p), nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf.Write(p)
	for {
		idx := bytes.IndexByte(w.buf.Bytes(), '\n')
		if idx < 0 {
			break
		}
		line := string(bytes.TrimRight(w.buf.Next(idx+1), "\r\n"))
		w.emit(line)
	}
	return len(p), nil
}

// Flush emits any trailing partial line.
func (w *LineWriter) Flush() {
	if w.logger == nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.buf.Len() == 0 {
		return
	}
	line := string(bytes.TrimRight(w.buf.Bytes(), "\r\n"))
	w.buf.Reset()
	w.emit(line)
}

func (w *LineWriter) emit(line string) {
	if line == "" {
		return
	}
	w.logger.Log(context.Background(), w.level, line, StageKey, w.stage, "stream", w.stream)
}
