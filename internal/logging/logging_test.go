package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if err != nil {
			t.Fatalf("ParseLevel(%q) error = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if _, err := ParseLevel("loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestNew(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := New(&buf, "info", "json")
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		logger.Debug("hidden")
		logger.Info("shown", "file", "a.json")

		var record map[string]any
		if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
			t.Fatalf("expected a single JSON record, got %q", buf.String())
		}
		if record["msg"] != "shown" || record["file"] != "a.json" {
			t.Errorf("unexpected record %v", record)
		}
	})

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := New(&buf, "debug", "text")
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		logger.Debug("visible")
		if !strings.Contains(buf.String(), "msg=visible") {
			t.Errorf("unexpected output %q", buf.String())
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		if _, err := New(&bytes.Buffer{}, "info", "xml"); !errors.Is(err, ErrUnknownFormat) {
			t.Errorf("expected ErrUnknownFormat, got %v", err)
		}
	})
}
