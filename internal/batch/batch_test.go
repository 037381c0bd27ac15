package batch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("{}"), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
}

func TestPool(t *testing.T) {
	t.Run("processes all units", func(t *testing.T) {
		var seen sync.Map
		pool := NewPool(PoolConfig{Name: "test", WorkerCount: 3}, func(_ context.Context, u *WorkUnit) error {
			seen.Store(u.Source, true)
			return nil
		})
		results := pool.Start(context.Background())

		for _, src := range []string{"a", "b", "c", "d"} {
			if err := pool.Submit(NewWorkUnit(src, "")); err != nil {
				t.Fatalf("Submit() error = %v", err)
			}
		}
		pool.Close()

		count := 0
		for r := range results {
			if r.Err != nil {
				t.Errorf("unexpected error for %s: %v", r.Unit.Source, r.Err)
			}
			count++
		}
		if count != 4 {
			t.Errorf("expected 4 results, got %d", count)
		}
		for _, src := range []string{"a", "b", "c", "d"} {
			if _, ok := seen.Load(src); !ok {
				t.Errorf("unit %s not processed", src)
			}
		}

		status := pool.Status()
		if status.Completed != 4 || status.Failed != 0 || status.InFlight != 0 {
			t.Errorf("unexpected status: %+v", status)
		}
	})

	t.Run("assigns unique ids", func(t *testing.T) {
		a, b := NewWorkUnit("x", "y"), NewWorkUnit("x", "y")
		if a.ID == "" || a.ID == b.ID {
			t.Errorf("expected distinct ids, got %q and %q", a.ID, b.ID)
		}
	})

	t.Run("records failures", func(t *testing.T) {
		boom := errors.New("boom")
		pool := NewPool(PoolConfig{}, func(_ context.Context, u *WorkUnit) error {
			if u.Source == "bad" {
				return boom
			}
			return nil
		})
		results := pool.Start(context.Background())
		_ = pool.Submit(NewWorkUnit("good", ""))
		_ = pool.Submit(NewWorkUnit("bad", ""))
		pool.Close()

		var failed []Result
		for r := range results {
			if r.Err != nil {
				failed = append(failed, r)
			}
		}
		if len(failed) != 1 || !errors.Is(failed[0].Err, boom) {
			t.Errorf("expected one boom failure, got %+v", failed)
		}
		if s := pool.Status(); s.Completed != 1 || s.Failed != 1 {
			t.Errorf("unexpected status: %+v", s)
		}
	})

	t.Run("queue full", func(t *testing.T) {
		pool := NewPool(PoolConfig{QueueSize: 1}, func(context.Context, *WorkUnit) error { return nil })

		if err := pool.Submit(NewWorkUnit("a", "")); err != nil {
			t.Fatalf("Submit() error = %v", err)
		}
		if err := pool.Submit(NewWorkUnit("b", "")); !errors.Is(err, ErrQueueFull) {
			t.Errorf("expected ErrQueueFull, got %v", err)
		}
	})

	t.Run("closed", func(t *testing.T) {
		pool := NewPool(PoolConfig{}, func(context.Context, *WorkUnit) error { return nil })
		pool.Close()
		pool.Close()

		if err := pool.Submit(NewWorkUnit("a", "")); !errors.Is(err, ErrPoolClosed) {
			t.Errorf("expected ErrPoolClosed, got %v", err)
		}
	})

	t.Run("limits concurrency", func(t *testing.T) {
		var running, peak atomic.Int32
		pool := NewPool(PoolConfig{WorkerCount: 2}, func(context.Context, *WorkUnit) error {
			n := running.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			running.Add(-1)
			return nil
		})
		results := pool.Start(context.Background())
		for i := 0; i < 8; i++ {
			_ = pool.Submit(NewWorkUnit("f", ""))
		}
		pool.Close()
		for range results {
		}

		if p := peak.Load(); p > 2 {
			t.Errorf("expected at most 2 concurrent units, got %d", p)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		called := false
		pool := NewPool(PoolConfig{}, func(context.Context, *WorkUnit) error {
			called = true
			return nil
		})
		results := pool.Start(ctx)
		_ = pool.Submit(NewWorkUnit("a", ""))
		pool.Close()

		r := <-results
		if !errors.Is(r.Err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", r.Err)
		}
		for range results {
		}
		if called {
			t.Error("handler should not run after cancellation")
		}
	})
}

func TestMatch(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "b.json", "a.json", "notes.txt")
	if err := os.Mkdir(filepath.Join(dir, "sub.json"), 0o755); err != nil {
		t.Fatal(err)
	}

	files, err := Match(dir, "")
	if err != nil {
		t.Fatalf("Match() error = %v", err)
	}
	want := []string{filepath.Join(dir, "a.json"), filepath.Join(dir, "b.json")}
	if strings.Join(files, ",") != strings.Join(want, ",") {
		t.Errorf("Match() = %v, want %v", files, want)
	}

	if _, err := Match(dir, "["); err == nil {
		t.Error("expected error for invalid pattern")
	}
	if _, err := Match(filepath.Join(dir, "missing"), "*"); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestRun(t *testing.T) {
	t.Run("converts matching files", func(t *testing.T) {
		in, out := t.TempDir(), t.TempDir()
		touch(t, in, "one.json", "two.json", "skip.txt")

		var mu sync.Mutex
		dests := map[string]string{}
		summary, err := Run(context.Background(), Options{
			InputDir:  in,
			OutputDir: out,
			Workers:   2,
		}, func(_ context.Context, u *WorkUnit) error {
			mu.Lock()
			defer mu.Unlock()
			dests[filepath.Base(u.Source)] = u.Dest
			return nil
		})
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if summary.Converted != 2 || len(summary.Failed) != 0 || summary.Total() != 2 {
			t.Errorf("unexpected summary: %+v", summary)
		}
		if got := dests["one.json"]; got != filepath.Join(out, "one.json") {
			t.Errorf("dest for one.json = %q", got)
		}
		if _, ok := dests["skip.txt"]; ok {
			t.Error("non-matching file was converted")
		}
	})

	t.Run("collects failures", func(t *testing.T) {
		in := t.TempDir()
		touch(t, in, "ok.json", "z-bad.json", "a-bad.json")

		summary, err := Run(context.Background(), Options{InputDir: in, OutputDir: t.TempDir()},
			func(_ context.Context, u *WorkUnit) error {
				if strings.Contains(u.Source, "bad") {
					return errors.New("invalid item")
				}
				return nil
			})
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if summary.Converted != 1 || len(summary.Failed) != 2 {
			t.Fatalf("unexpected summary: %+v", summary)
		}
		if filepath.Base(summary.Failed[0].Unit.Source) != "a-bad.json" {
			t.Errorf("failures should be sorted by source, got %s first", summary.Failed[0].Unit.Source)
		}
	})

	t.Run("custom destination", func(t *testing.T) {
		in := t.TempDir()
		touch(t, in, "item.json")

		var dest string
		_, err := Run(context.Background(), Options{
			InputDir:  in,
			OutputDir: "/out",
			DestFunc: func(outDir, src string) string {
				return filepath.Join(outDir, "x-"+filepath.Base(src))
			},
		}, func(_ context.Context, u *WorkUnit) error {
			dest = u.Dest
			return nil
		})
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if dest != filepath.Join("/out", "x-item.json") {
			t.Errorf("dest = %q", dest)
		}
	})

	t.Run("empty directory", func(t *testing.T) {
		summary, err := Run(context.Background(), Options{InputDir: t.TempDir()}, func(context.Context, *WorkUnit) error {
			t.Error("handler should not be called")
			return nil
		})
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if summary.Total() != 0 {
			t.Errorf("expected empty summary, got %+v", summary)
		}
	})
}
