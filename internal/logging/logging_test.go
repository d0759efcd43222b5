package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/rnwolfe/rack/internal/config"
)

func TestNewLoggerJSONAndLevel(t *testing.T) {
	var buf bytes.Buffer
	lg := NewLogger(Options{Level: "debug", Writer: &buf, Component: "backup"})
	lg.Debug("scheduled", "in", "30s")

	out := strings.TrimSpace(buf.String())
	if !strings.Contains(out, `"level":"DEBUG"`) {
		t.Fatalf("expected DEBUG level, got %s", out)
	}
	if !strings.Contains(out, `"component":"backup"`) {
		t.Fatalf("expected component field, got %s", out)
	}
}

func TestNewLoggerFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	lg := NewLogger(Options{Level: "warn", Writer: &buf})
	lg.Info("quiet")
	if buf.Len() != 0 {
		t.Fatalf("info logged at warn level: %s", buf.String())
	}
	lg.Warn("loud")
	if !strings.Contains(buf.String(), "loud") {
		t.Fatalf("warn not logged: %s", buf.String())
	}
}

func TestNewLoggerTextFormat(t *testing.T) {
	var buf bytes.Buffer
	lg := NewLogger(Options{Format: "text", Writer: &buf})
	lg.Info("hello", "k", "v")
	out := buf.String()
	if !strings.Contains(out, "msg=hello") || !strings.Contains(out, "k=v") {
		t.Fatalf("unexpected text output: %s", out)
	}
}

func TestNewLoggerUnknownLevelIsInfo(t *testing.T) {
	var buf bytes.Buffer
	lg := NewLogger(Options{Level: "chatty", Writer: &buf})
	lg.Debug("hidden")
	lg.Info("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Fatalf("unexpected output: %s", buf.String())
	}
}

func TestFromConfig(t *testing.T) {
	var buf bytes.Buffer
	cfg := &config.Config{Log: config.LogConfig{Level: "error", Format: "json"}}
	lg := FromConfig(cfg, &buf, "cli")
	lg.Warn("dropped")
	lg.Error("kept")
	out := buf.String()
	if strings.Contains(out, "dropped") || !strings.Contains(out, `"component":"cli"`) {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestDiscard(t *testing.T) {
	lg := Discard()
	if lg.Enabled(context.Background(), slog.LevelError) {
		t.Error("discard logger should be disabled at every level")
	}
	lg.Error("nothing")
}
