package ingestion

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// ProgressTracker writes "Progress: n/total" lines as records are submitted.
// A nil tracker ignores every call.
type ProgressTracker struct {
	writer    io.Writer
	total     int
	current   int
	startTime time.Time
	started   bool
	mu        sync.Mutex
}

// NewProgressTracker creates a tracker. A total of 0 means unknown.
func NewProgressTracker(writer io.Writer, total int) *ProgressTracker {
	return &ProgressTracker{
		writer: writer,
		total:  total,
	}
}

// Start begins tracking progress.
func (p *ProgressTracker) Start() {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	p.startTime = time.Now()
	p.started = true
	p.current = 0
}

// Increment advances the count and reports it.
func (p *ProgressTracker) Increment(delta int) {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}
	p.current += delta
	if p.total > 0 && p.current > p.total {
		p.current = p.total
	}
	p.report()
}

// Finish prints the final count followed by a newline. The count is left
// where it is, so a run stopped early shows where it stopped.
func (p *ProgressTracker) Finish() {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}
	p.report()
	fmt.Fprintln(p.writer)
	p.started = false
}

// Current returns the number of records counted so far.
func (p *ProgressTracker) Current() int {
	if p == nil {
		return 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// Elapsed returns the time elapsed since Start was called.
func (p *ProgressTracker) Elapsed() time.Duration {
	if p == nil {
		return 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return 0
	}
	return time.Since(p.startTime)
}

// report prints the current progress. Must be called with lock held.
func (p *ProgressTracker) report() {
	elapsed := time.Since(p.startTime).Seconds()
	rate := 0.0
	if elapsed > 0 {
		rate = float64(p.current) / elapsed
	}

	if p.total <= 0 {
		fmt.Fprintf(p.writer, "\rProgress: %d - %.1f records/s", p.current, rate)
		return
	}
	percentage := float64(p.current) / float64(p.total) * 100.0
	fmt.Fprintf(p.writer, "\rProgress: %d/%d (%.1f%%) - %.1f records/s",
		p.current, p.total, percentage, rate)
}
