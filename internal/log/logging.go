// Package log builds the slog.Logger shared by every kipr-scratch command.
//
// Console output is split by severity: records below Error go to stdout so
// build progress can be piped, errors go to stderr. An optional log file
// receives every enabled record regardless of severity.
package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// LevelTrace sits below Debug. Per-parameter extraction records and, when
// requested, child process output are logged at this level.
const LevelTrace slog.Level = -8

// StageKey is the attribute naming the build stage a record belongs to.
const StageKey = "stage"

// Options configures SetupLogger.
type Options struct {
	Level  string
	File   string
	Format string // "text" or "json"
}

func ParseLevel(s string) slog.Level {
	switch s {
	case "trace":
		return LevelTrace
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// traceName renders LevelTrace as TRACE rather than slog's "DEBUG-4".
func traceName(_ []string, a slog.Attr) slog.Attr {
	if a.Key != slog.LevelKey {
		return a
	}
	if lvl, ok := a.Value.Any().(slog.Level); ok && lvl == LevelTrace {
		a.Value = slog.StringValue("TRACE")
	}
	return a
}

func newHandler(w io.Writer, format string, level slog.Leveler) (slog.Handler, error) {
	opts := &slog.HandlerOptions{Level: level, ReplaceAttr: traceName}
	switch format {
	case "", "text":
		return slog.NewTextHandler(w, opts), nil
	case "json":
		return slog.NewJSONHandler(w, opts), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
}

// splitHandler sends records below slog.LevelError to out and the rest to
// errs. file, when set, sees every record.
type splitHandler struct {
	out  slog.Handler
	errs slog.Handler
	file slog.Handler
}

func (s splitHandler) console(level slog.Level) slog.Handler {
	if level >= slog.LevelError {
		return s.errs
	}
	return s.out
}

func (s splitHandler) Enabled(ctx context.Context, level slog.Level) bool {
	if s.console(level).Enabled(ctx, level) {
		return true
	}
	return s.file != nil && s.file.Enabled(ctx, level)
}

func (s splitHandler) Handle(ctx context.Context, r slog.Record) error {
	var err error
	if h := s.console(r.Level); h.Enabled(ctx, r.Level) {
		err = h.Handle(ctx, r.Clone())
	}
	if s.file != nil && s.file.Enabled(ctx, r.Level) {
		if ferr := s.file.Handle(ctx, r); ferr != nil {
			err = ferr
		}
	}
	return err
}

func (s splitHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return s.apply(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

func (s splitHandler) WithGroup(name string) slog.Handler {
	return s.apply(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (s splitHandler) apply(fn func(slog.Handler) slog.Handler) slog.Handler {
	out := splitHandler{out: fn(s.out), errs: fn(s.errs)}
	if s.file != nil {
		out.file = fn(s.file)
	}
	return out
}

// SetupLogger builds the console logger and, when opts.File is set, opens
// (truncating) the log file. The returned closers must be closed on exit.
func SetupLogger(opts Options) (*slog.Logger, []io.Closer, error) {
	return setup(opts, os.Stdout, os.Stderr)
}

func setup(opts Options, stdout, stderr io.Writer) (*slog.Logger, []io.Closer, error) {
	level := ParseLevel(opts.Level)
	out, err := newHandler(stdout, opts.Format, level)
	if err != nil {
		return nil, nil, err
	}
	errs, _ := newHandler(stderr, opts.Format, level)
	h := splitHandler{out: out, errs: errs}

	var closers []io.Closer
	if opts.File != "" {
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		closers = append(closers, f)
		h.file, _ = newHandler(f, opts.Format, level)
	}
	return slog.New(h), closers, nil
}

// ForStage returns logger tagged with the build stage name.
func ForStage(logger *slog.Logger, stage string) *slog.Logger {
	return logger.With(StageKey, stage)
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
