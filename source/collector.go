package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"

	"github.com/panjf2000/ants/v2"

	"github.com/poiesic/assessor/core"
)

// Result is the outcome of one document task. A task may return a recovered
// proposal together with the error it recovered from.
type Result struct {
	Proposal *core.Proposal
	Err      error
}

// Task produces one proposal.
type Task func(ctx context.Context) (*core.Proposal, error)

// Collector runs document tasks on a bounded worker pool. Each submitted
// task gets its own completion channel so results can be gathered in
// submission order.
type Collector struct {
	pool   *ants.Pool
	logger *slog.Logger
}

// NewCollector creates a collector running up to workers tasks at once.
// workers < 1 uses runtime.NumCPU().
func NewCollector(workers int, logger *slog.Logger) (*Collector, error) {
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	if logger == nil {
		logger = slog.Default()
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("failed to create worker pool: %w", err)
	}
	return &Collector{pool: pool, logger: logger}, nil
}

// Submit schedules task and returns the channel its result is delivered on.
// The channel is buffered and receives exactly one value.
func (c *Collector) Submit(ctx context.Context, task Task) <-chan Result {
	done := make(chan Result, 1)
	run := func() {
		if err := ctx.Err(); err != nil {
			done <- Result{Err: err}
			return
		}
		p, err := task(ctx)
		done <- Result{Proposal: p, Err: err}
	}
	if err := c.pool.Submit(run); err != nil {
		c.logger.Warn("pool rejected task, running inline", "error", err)
		run()
	}
	return done
}

// Gather waits for every channel in order. It returns the proposals that
// were produced and the joined errors of all tasks. Cancellation stops the
// wait and is returned as is.
func (c *Collector) Gather(ctx context.Context, pending []<-chan Result) ([]*core.Proposal, error) {
	proposals := make([]*core.Proposal, 0, len(pending))
	var errs []error
	for _, ch := range pending {
		select {
		case <-ctx.Done():
			return proposals, ctx.Err()
		case r := <-ch:
			if r.Proposal != nil {
				proposals = append(proposals, r.Proposal)
			}
			if r.Err != nil {
				errs = append(errs, r.Err)
			}
		}
	}
	if len(errs) > 0 {
		c.logger.Warn("document failures", "failed", len(errs), "total", len(pending))
	}
	return proposals, errors.Join(errs...)
}

// Release stops the worker pool.
func (c *Collector) Release() {
	c.pool.Release()
}
