package batch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// Options configures Run.
type Options struct {
	InputDir  string
	OutputDir string
	Pattern   string // matched against file names (default: "*.json")
	Workers   int
	Logger    *slog.Logger

	// DestFunc maps an input file to its output path. Defaults to the same
	// file name in OutputDir.
	DestFunc func(outDir, src string) string
}

// Summary reports the outcome of a batch run.
type Summary struct {
	Converted int
	Failed    []Result
	Duration  time.Duration
}

// Total returns the number of files processed.
func (s *Summary) Total() int {
	return s.Converted + len(s.Failed)
}

// Match returns the regular files in dir whose names match pattern, sorted.
func Match(dir, pattern string) ([]string, error) {
	if pattern == "" {
		pattern = "*.json"
	}
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read input directory: %w", err)
	}

	var files []string
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		if ok, _ := filepath.Match(pattern, e.Name()); ok {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// Run applies handler to every matching file in opts.InputDir. Failures of
// individual files are collected in the Summary; the returned error is only
// set when the batch could not run at all.
func Run(ctx context.Context, opts Options, handler Handler) (*Summary, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	dest := opts.DestFunc
	if dest == nil {
		dest = func(outDir, src string) string {
			return filepath.Join(outDir, filepath.Base(src))
		}
	}

	files, err := Match(opts.InputDir, opts.Pattern)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	summary := &Summary{}
	if len(files) == 0 {
		logger.Info("no files to convert", "dir", opts.InputDir, "pattern", opts.Pattern)
		return summary, nil
	}

	pool := NewPool(PoolConfig{
		Name:        "batch",
		Logger:      logger,
		WorkerCount: opts.Workers,
		QueueSize:   len(files),
	}, handler)
	results := pool.Start(ctx)

	for _, f := range files {
		if err := pool.Submit(NewWorkUnit(f, dest(opts.OutputDir, f))); err != nil {
			pool.Close()
			for range results {
			}
			return nil, err
		}
	}
	pool.Close()

	for r := range results {
		if r.Err != nil {
			logger.Error("conversion failed", "source", r.Unit.Source, "error", r.Err)
			summary.Failed = append(summary.Failed, r)
			continue
		}
		summary.Converted++
	}
	sort.Slice(summary.Failed, func(i, j int) bool {
		return summary.Failed[i].Unit.Source < summary.Failed[j].Unit.Source
	})

	summary.Duration = time.Since(start)
	logger.Info("batch complete",
		"converted", summary.Converted,
		"failed", len(summary.Failed),
		"duration", summary.Duration)
	return summary, nil
}
