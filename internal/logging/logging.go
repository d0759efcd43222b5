// Package logging builds the structured loggers used by the CLI and the
// background helpers. The planner core takes no logger.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/rnwolfe/rack/internal/config"
)

// Options configures NewLogger.
type Options struct {
	Level     string // debug, info, warn, error; unknown values mean info
	Format    string // json or text
	Writer    io.Writer
	Component string
}

// NewLogger returns a slog logger writing to opts.Writer (stderr by default).
func NewLogger(opts Options) *slog.Logger {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}
	level, ok := config.ParseLevel(opts.Level)
	if !ok {
		level = slog.LevelInfo
	}
	ho := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	if strings.EqualFold(strings.TrimSpace(opts.Format), "text") {
		h = slog.NewTextHandler(w, ho)
	} else {
		h = slog.NewJSONHandler(w, ho)
	}
	lg := slog.New(h)
	if c := strings.TrimSpace(opts.Component); c != "" {
		lg = lg.With("component", c)
	}
	return lg
}

// FromConfig builds a logger from the [log] section.
func FromConfig(cfg *config.Config, w io.Writer, component string) *slog.Logger {
	return NewLogger(Options{
		Level:     cfg.Log.Level,
		Format:    cfg.Log.Format,
		Writer:    w,
		Component: component,
	})
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(discardHandler{})
}

type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }
