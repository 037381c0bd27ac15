package svcctx

import (
	"context"
	"log/slog"
	"testing"

	"github.com/cambridge-collection/cudl-pack/internal/home"
)

func TestServices(t *testing.T) {
	t.Run("empty context", func(t *testing.T) {
		ctx := context.Background()
		if ServicesFrom(ctx) != nil {
			t.Error("expected nil services")
		}
		if ConfigFrom(ctx) != nil || HomeFrom(ctx) != nil {
			t.Error("expected nil extractors")
		}
		if LoggerFrom(ctx) != slog.Default() {
			t.Error("expected default logger")
		}
	})

	t.Run("attached", func(t *testing.T) {
		h, err := home.New(t.TempDir())
		if err != nil {
			t.Fatal(err)
		}
		logger := slog.New(slog.DiscardHandler)
		ctx := WithServices(context.Background(), &Services{Logger: logger, Home: h})

		if LoggerFrom(ctx) != logger {
			t.Error("LoggerFrom() returned a different logger")
		}
		if HomeFrom(ctx) != h {
			t.Error("HomeFrom() returned a different home")
		}
	})
}
