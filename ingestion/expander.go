package ingestion

import (
	"errors"
	"iter"
	"log/slog"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/assessor/chunking"
	"github.com/poiesic/assessor/core"
)

// ExpandStats counts what an Expander did with its input.
type ExpandStats struct {
	Proposals int // proposals seen
	Dropped   int // proposals rejected by validation
	Records   int // chunk records produced
}

// Expander validates proposals and splits each one into chunk records.
// Proposals are chunked concurrently on a worker pool; records are still
// produced in input order.
type Expander struct {
	chunker *chunking.Chunker
	pool    *ants.Pool
	workers int
	logger  *slog.Logger

	mu    sync.Mutex
	stats ExpandStats
}

// NewExpander creates an expander chunking up to workers proposals at once.
// workers < 1 uses runtime.NumCPU() / 2, with a minimum of 1.
func NewExpander(chunker *chunking.Chunker, workers int, logger *slog.Logger) (*Expander, error) {
	if chunker == nil {
		return nil, ErrChunkerRequired
	}
	if workers < 1 {
		workers = max(runtime.NumCPU()/2, 1)
	}
	if logger == nil {
		logger = slog.Default()
	}

	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, err
	}

	return &Expander{
		chunker: chunker,
		pool:    pool,
		workers: workers,
		logger:  logger.With("component", "expander"),
	}, nil
}

// Release releases the worker pool.
// The expander should not be used after calling Release.
func (e *Expander) Release() {
	e.pool.Release()
}

// Stats returns the counters accumulated so far.
func (e *Expander) Stats() ExpandStats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats
}

// Records returns the chunk records of every valid proposal, proposal by
// proposal and chunk by chunk. Proposals missing a required field are logged
// and skipped. The sequence is lazy: proposals are chunked a window at a
// time as records are consumed.
func (e *Expander) Records(proposals []*core.Proposal) iter.Seq[*core.ChunkRecord] {
	return func(yield func(*core.ChunkRecord) bool) {
		for start := 0; start < len(proposals); start += e.workers {
			window := proposals[start:min(start+e.workers, len(proposals))]
			for _, chunks := range e.expandWindow(window) {
				for _, record := range chunks {
					if !yield(record) {
						return
					}
				}
			}
		}
	}
}

func (e *Expander) expandWindow(window []*core.Proposal) [][]*core.ChunkRecord {
	results := make([][]*core.ChunkRecord, len(window))
	var wg sync.WaitGroup

	for n, p := range window {
		e.count(func(s *ExpandStats) { s.Proposals++ })
		if err := core.ValidateProposal(p); err != nil {
			e.drop(p, err)
			continue
		}

		task := func() {
			defer wg.Done()
			results[n] = e.expand(p)
		}
		wg.Add(1)
		if err := e.pool.Submit(task); err != nil {
			// pool closed or overloaded
			task()
		}
	}

	wg.Wait()
	return results
}

func (e *Expander) expand(p *core.Proposal) []*core.ChunkRecord {
	chunks := e.chunker.Chunk(p.FullText)
	records := make([]*core.ChunkRecord, len(chunks))
	for n, chunk := range chunks {
		records[n] = core.NewChunkRecord(*p, chunk)
	}
	e.count(func(s *ExpandStats) { s.Records += len(records) })
	return records
}

func (e *Expander) drop(p *core.Proposal, err error) {
	e.count(func(s *ExpandStats) { s.Dropped++ })
	attrs := []any{"err", err}
	if p != nil {
		attrs = append(attrs, "title", p.Title, "url", p.URL)
	}
	var verr *core.ValidationError
	if errors.As(err, &verr) {
		attrs = append(attrs, "missing", verr.Missing)
	}
	e.logger.Warn("dropping invalid proposal", attrs...)
}

func (e *Expander) count(fn func(*ExpandStats)) {
	e.mu.Lock()
	fn(&e.stats)
	e.mu.Unlock()
}
