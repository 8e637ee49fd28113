package matching

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/erazemk/lostfound/internal/metrics"
	"github.com/erazemk/lostfound/internal/model"
)

var (
	// ErrQueueFull is returned by Dispatch when no queue slot is free.
	ErrQueueFull = errors.New("match queue is full")
	// ErrDispatcherClosed is returned by Dispatch after Shutdown.
	ErrDispatcherClosed = errors.New("match dispatcher is shut down")
)

// Runner runs the match pipeline for one report.
type Runner interface {
	Run(ctx context.Context, report model.LostReport) (Result, error)
}

// Dispatcher runs pipelines in the background on a fixed pool of workers so
// that creating a report never waits for matching.
type Dispatcher struct {
	runner     Runner
	pending    chan model.LostReport
	runTimeout time.Duration

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// NewDispatcher starts workers goroutines reading from a queue of queueSize
// reports. Each run is bounded by runTimeout when it is positive.
func NewDispatcher(runner Runner, workers, queueSize int, runTimeout time.Duration) *Dispatcher {
	if workers <= 0 {
		workers = 2
	}
	if queueSize <= 0 {
		queueSize = 100
	}

	ctx, cancel := context.WithCancel(context.Background())
	d := &Dispatcher{
		runner:     runner,
		pending:    make(chan model.LostReport, queueSize),
		runTimeout: runTimeout,
		ctx:        ctx,
		cancel:     cancel,
	}

	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
	return d
}

// Dispatch queues a pipeline run for report and returns immediately.
func (d *Dispatcher) Dispatch(report model.LostReport) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		metrics.IncDispatchDropped()
		return ErrDispatcherClosed
	}

	select {
	case d.pending <- report:
		metrics.SetQueuedRuns(len(d.pending))
		return nil
	default:
		metrics.IncDispatchDropped()
		return ErrQueueFull
	}
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()

	for report := range d.pending {
		metrics.SetQueuedRuns(len(d.pending))
		d.runOne(report)
	}
}

func (d *Dispatcher) runOne(report model.LostReport) {
	ctx := d.ctx
	if d.runTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.runTimeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			slog.Error("match pipeline panicked", "report_id", report.ID, "panic", r)
		}
	}()

	// Run logs its own failures.
	_, _ = d.runner.Run(ctx, report)
}

// Shutdown stops accepting reports and waits up to timeout for queued runs to
// finish. Runs still going after the timeout are canceled.
func (d *Dispatcher) Shutdown(timeout time.Duration) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.pending)
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.cancel()
		return nil
	case <-time.After(timeout):
		d.cancel()
		<-done
		return fmt.Errorf("match dispatcher: shutdown timed out after %s", timeout)
	}
}
