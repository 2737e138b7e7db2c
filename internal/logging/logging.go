// Package logging configures the slog logger shared by the CLI.
//
// Console output goes to stderr so it never mixes with images written to
// stdout. An optional log file receives JSON records through a rotating
// lumberjack writer.
package logging

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"

	lj "gopkg.in/natefinch/lumberjack.v2"
)

// Environment variables consulted by FromEnv.
const (
	EnvLevel  = "XKCD_LOG_LEVEL"
	EnvFormat = "XKCD_LOG_FORMAT"
	EnvFile   = "XKCD_LOG_FILE"
)

// Options controls logger initialization. Defaults: warn level, text format,
// no file.
type Options struct {
	Level  string
	Format string // "text" or "json"
	File   string
	// Output receives console records; nil means stderr.
	Output io.Writer
}

// FromEnv fills unset fields of base from the environment. Values already
// set in base win, so command line flags take precedence.
func FromEnv(base Options) Options {
	if strings.TrimSpace(base.Level) == "" {
		base.Level = os.Getenv(EnvLevel)
	}
	if strings.TrimSpace(base.Format) == "" {
		base.Format = os.Getenv(EnvFormat)
	}
	if strings.TrimSpace(base.File) == "" {
		base.File = os.Getenv(EnvFile)
	}
	return base
}

// New builds a logger from opts. The returned closer flushes and closes the
// log file and must be called before exit; it is a no-op without a file.
func New(opts Options) (*slog.Logger, io.Closer) {
	lvl := ParseLevel(opts.Level)
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	handlerOpts := &slog.HandlerOptions{Level: lvl}
	var console slog.Handler
	if strings.EqualFold(strings.TrimSpace(opts.Format), "json") {
		console = slog.NewJSONHandler(out, handlerOpts)
	} else {
		console = slog.NewTextHandler(out, handlerOpts)
	}

	var closer io.Closer = nopCloser{}
	handler := console
	if path := strings.TrimSpace(opts.File); path != "" {
		w := &lj.Logger{Filename: path, MaxSize: 5, MaxBackups: 3, MaxAge: 28, Compress: true}
		closer = w
		handler = fanout{console, slog.NewJSONHandler(w, handlerOpts)}
	}
	return slog.New(handler), closer
}

// Init builds the logger and installs it as slog's default.
func Init(opts Options) (*slog.Logger, io.Closer) {
	logger, closer := New(opts)
	slog.SetDefault(logger)
	return logger, closer
}

// ParseLevel converts a level name to slog.Level. Unknown or empty names
// mean warn.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// fanout sends each record to every handler that accepts its level.
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	res := make(fanout, len(f))
	for i, h := range f {
		res[i] = h.WithAttrs(attrs)
	}
	return res
}

func (f fanout) WithGroup(name string) slog.Handler {
	res := make(fanout, len(f))
	for i, h := range f {
		res[i] = h.WithGroup(name)
	}
	return res
}
