package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cambridge-collection/cudl-pack/internal/batch"
)

func startWatcher(t *testing.T, cfg Config) (results chan batch.Result, stop func()) {
	t.Helper()

	results = make(chan batch.Result, 16)
	cfg.OnResult = func(r batch.Result) { results <- r }
	if cfg.Debounce == 0 {
		cfg.Debounce = 20 * time.Millisecond
	}

	w, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	return results, func() {
		cancel()
		select {
		case err := <-done:
			if err != nil {
				t.Errorf("Run() error = %v", err)
			}
		case <-time.After(5 * time.Second):
			t.Error("Run() did not return after cancel")
		}
	}
}

func waitResult(t *testing.T, results <-chan batch.Result) batch.Result {
	t.Helper()
	select {
	case r := <-results:
		return r
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for conversion")
		return batch.Result{}
	}
}

func TestWatcher(t *testing.T) {
	t.Run("converts written files", func(t *testing.T) {
		in, out := t.TempDir(), t.TempDir()
		results, stop := startWatcher(t, Config{
			Dir:       in,
			OutputDir: out,
			Handler:   func(context.Context, *batch.WorkUnit) error { return nil },
		})
		defer stop()

		src := filepath.Join(in, "item.json")
		if err := os.WriteFile(src, []byte("{}"), 0o644); err != nil {
			t.Fatal(err)
		}

		r := waitResult(t, results)
		if r.Err != nil {
			t.Errorf("unexpected error: %v", r.Err)
		}
		if r.Unit.Source != src {
			t.Errorf("Source = %q, want %q", r.Unit.Source, src)
		}
		if r.Unit.Dest != filepath.Join(out, "item.json") {
			t.Errorf("Dest = %q", r.Unit.Dest)
		}
	})

	t.Run("ignores non-matching files", func(t *testing.T) {
		in := t.TempDir()
		results, stop := startWatcher(t, Config{
			Dir:     in,
			Handler: func(context.Context, *batch.WorkUnit) error { return nil },
		})
		defer stop()

		if err := os.WriteFile(filepath.Join(in, "notes.txt"), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(in, "item.json"), []byte("{}"), 0o644); err != nil {
			t.Fatal(err)
		}

		r := waitResult(t, results)
		if filepath.Base(r.Unit.Source) != "item.json" {
			t.Errorf("converted %s, want item.json", r.Unit.Source)
		}
	})

	t.Run("debounces repeated writes", func(t *testing.T) {
		in := t.TempDir()
		results, stop := startWatcher(t, Config{
			Dir:      in,
			Debounce: 200 * time.Millisecond,
			Handler:  func(context.Context, *batch.WorkUnit) error { return nil },
		})
		defer stop()

		src := filepath.Join(in, "item.json")
		for i := 0; i < 5; i++ {
			if err := os.WriteFile(src, []byte("{}"), 0o644); err != nil {
				t.Fatal(err)
			}
		}

		waitResult(t, results)
		select {
		case r := <-results:
			t.Errorf("expected a single conversion, got another for %s", r.Unit.Source)
		case <-time.After(400 * time.Millisecond):
		}
	})

	t.Run("reports handler errors", func(t *testing.T) {
		in := t.TempDir()
		boom := errors.New("invalid item")
		results, stop := startWatcher(t, Config{
			Dir:     in,
			Handler: func(context.Context, *batch.WorkUnit) error { return boom },
		})
		defer stop()

		if err := os.WriteFile(filepath.Join(in, "bad.json"), []byte("{"), 0o644); err != nil {
			t.Fatal(err)
		}

		if r := waitResult(t, results); !errors.Is(r.Err, boom) {
			t.Errorf("expected handler error, got %v", r.Err)
		}
	})
}

func TestNew_Errors(t *testing.T) {
	noop := func(context.Context, *batch.WorkUnit) error { return nil }

	if _, err := New(Config{Dir: t.TempDir()}); !errors.Is(err, ErrNoHandler) {
		t.Errorf("expected ErrNoHandler, got %v", err)
	}
	if _, err := New(Config{Dir: t.TempDir(), Pattern: "[", Handler: noop}); err == nil {
		t.Error("expected error for invalid pattern")
	}
	if _, err := New(Config{Dir: filepath.Join(t.TempDir(), "missing"), Handler: noop}); err == nil {
		t.Error("expected error for missing directory")
	}
}
