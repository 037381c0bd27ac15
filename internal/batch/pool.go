// Package batch converts many item files concurrently.
package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Sentinel errors for the batch package.
var (
	// ErrQueueFull is returned when a pool's queue cannot accept more work.
	ErrQueueFull = errors.New("worker queue full")

	// ErrPoolClosed is returned when submitting to a closed pool.
	ErrPoolClosed = errors.New("worker pool closed")
)

// WorkUnit is one file to convert.
type WorkUnit struct {
	ID     string
	Source string
	Dest   string
}

// NewWorkUnit creates a work unit with a fresh ID.
func NewWorkUnit(source, dest string) *WorkUnit {
	return &WorkUnit{ID: uuid.NewString(), Source: source, Dest: dest}
}

// Result is the outcome of processing a WorkUnit.
type Result struct {
	Unit     *WorkUnit
	Err      error
	Duration time.Duration
}

// Handler processes a work unit. Implementations must be safe for
// concurrent use.
type Handler func(ctx context.Context, unit *WorkUnit) error

// PoolConfig configures a new Pool.
type PoolConfig struct {
	Name        string
	Logger      *slog.Logger
	WorkerCount int // Number of worker goroutines (default: 1)
	QueueSize   int // Queue size (default: 10000)
}

// PoolStatus reports a pool's current load.
type PoolStatus struct {
	Name       string `json:"name"`
	Workers    int    `json:"workers"`
	InFlight   int    `json:"in_flight"`
	QueueDepth int    `json:"queue_depth"`
	Completed  int    `json:"completed"`
	Failed     int    `json:"failed"`
}

// Pool runs a Handler over submitted work units with a fixed number of
// workers sharing one queue.
type Pool struct {
	name        string
	logger      *slog.Logger
	workerCount int
	handler     Handler

	queue   chan *WorkUnit
	results chan Result
	wg      sync.WaitGroup

	mu     sync.RWMutex
	closed bool

	inFlight  atomic.Int32
	completed atomic.Int32
	failed    atomic.Int32
}

// NewPool creates a pool that processes work units with handler.
func NewPool(cfg PoolConfig, handler Handler) *Pool {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	name := cfg.Name
	if name == "" {
		name = "batch"
	}

	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 10000
	}

	workerCount := cfg.WorkerCount
	if workerCount <= 0 {
		workerCount = 1
	}

	return &Pool{
		name:        name,
		logger:      logger.With("pool", name, "workers", workerCount),
		workerCount: workerCount,
		handler:     handler,
		queue:       make(chan *WorkUnit, queueSize),
		results:     make(chan Result, queueSize),
	}
}

// Start launches the workers. Results are delivered on the returned channel,
// which is closed once Close has been called and the queue has drained.
func (p *Pool) Start(ctx context.Context) <-chan Result {
	p.logger.Debug("pool starting")
	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}
	go func() {
		p.wg.Wait()
		close(p.results)
		p.logger.Debug("pool stopped")
	}()
	return p.results
}

// worker processes work units from the shared queue.
func (p *Pool) worker(ctx context.Context, id int) {
	defer p.wg.Done()
	p.logger.Debug("worker started", "worker_id", id)
	for unit := range p.queue {
		p.inFlight.Add(1)
		result := p.process(ctx, unit)
		p.inFlight.Add(-1)
		if result.Err != nil {
			p.failed.Add(1)
		} else {
			p.completed.Add(1)
		}
		p.results <- result
	}
}

func (p *Pool) process(ctx context.Context, unit *WorkUnit) Result {
	start := time.Now()
	result := Result{Unit: unit}

	if err := ctx.Err(); err != nil {
		result.Err = err
		return result
	}

	if err := p.handler(ctx, unit); err != nil {
		result.Err = err
		p.logger.Debug("work unit failed", "unit_id", unit.ID, "source", unit.Source, "error", err)
	} else {
		p.logger.Debug("work unit completed", "unit_id", unit.ID, "source", unit.Source)
	}
	result.Duration = time.Since(start)
	return result
}

// Submit adds a work unit to the pool's queue.
func (p *Pool) Submit(unit *WorkUnit) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return fmt.Errorf("%w: %s", ErrPoolClosed, p.name)
	}
	select {
	case p.queue <- unit:
		p.logger.Debug("pool accepted unit", "unit_id", unit.ID, "queue_len", len(p.queue))
		return nil
	default:
		p.logger.Warn("pool queue full", "unit_id", unit.ID)
		return fmt.Errorf("%w: %s", ErrQueueFull, p.name)
	}
}

// Close stops accepting work. Queued units are still processed.
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.closed {
		p.closed = true
		close(p.queue)
	}
}

// Status returns current pool status.
func (p *Pool) Status() PoolStatus {
	return PoolStatus{
		Name:       p.name,
		Workers:    p.workerCount,
		InFlight:   int(p.inFlight.Load()),
		QueueDepth: len(p.queue),
		Completed:  int(p.completed.Load()),
		Failed:     int(p.failed.Load()),
	}
}
