// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ingestion

import (
	"context"
	"io"
	"iter"
	"log/slog"
	"time"

	"github.com/poiesic/assessor/core"
	"github.com/poiesic/assessor/storage"
)

const (
	DefaultBatchSize        = 10
	DefaultFailureThreshold = 10
	DefaultSampleSize       = 5
)

// Report summarizes one ingestion run.
type Report struct {
	// Attempted counts records submitted to the store, or in a dry run,
	// records that would have been.
	Attempted int
	// Failed counts records the store reported as failed.
	Failed int
	// Failures holds the first few failed records.
	Failures []storage.FailedRecord
	// IDs lists the computed identifiers in a dry run.
	IDs []core.ChunkID
	// Batches counts batches submitted.
	Batches int
	// Stopped is set when the failure threshold was exceeded.
	Stopped bool
	DryRun  bool
	Elapsed time.Duration
}

// Succeeded returns the number of records written.
func (r *Report) Succeeded() int {
	if r.DryRun {
		return 0
	}
	return r.Attempted - r.Failed
}

// Ingestor submits chunk records to a store in bounded batches.
// An Ingestor holds no state between runs and may be reused.
type Ingestor struct {
	store            storage.ChunkStore
	collection       string
	batchSize        int
	failureThreshold int
	sampleSize       int
	dryRun           bool
	progress         io.Writer
	progressTotal    int
	logger           *slog.Logger
}

// Option configures an Ingestor.
type Option func(*Ingestor) error

// WithBatchSize sets how many records go into one upsert call.
// Default is 10.
func WithBatchSize(size int) Option {
	return func(i *Ingestor) error {
		if size < 1 {
			return ErrInvalidBatchSize
		}
		i.batchSize = size
		return nil
	}
}

// WithFailureThreshold sets the number of failed records the run tolerates.
// The run stops once the total exceeds it. Default is 10.
func WithFailureThreshold(threshold int) Option {
	return func(i *Ingestor) error {
		if threshold < 0 {
			return ErrInvalidThreshold
		}
		i.failureThreshold = threshold
		return nil
	}
}

// WithSampleSize sets how many failed records the report keeps.
// Default is 5.
func WithSampleSize(n int) Option {
	return func(i *Ingestor) error {
		if n < 0 {
			n = 0
		}
		i.sampleSize = n
		return nil
	}
}

// WithDryRun computes identifiers without writing to the store.
func WithDryRun(dryRun bool) Option {
	return func(i *Ingestor) error {
		i.dryRun = dryRun
		return nil
	}
}

// WithProgress writes a progress line to w after every batch. total is the
// expected record count, or 0 when unknown.
func WithProgress(w io.Writer, total int) Option {
	return func(i *Ingestor) error {
		i.progress = w
		i.progressTotal = total
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(i *Ingestor) error {
		if logger == nil {
			logger = slog.Default()
		}
		i.logger = logger
		return nil
	}
}

// NewIngestor creates an ingestor writing to the named collection. The
// collection must already exist; see storage.EnsureCollection.
func NewIngestor(store storage.ChunkStore, collection string, opts ...Option) (*Ingestor, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if collection == "" {
		return nil, ErrCollectionRequired
	}

	i := &Ingestor{
		store:            store,
		collection:       collection,
		batchSize:        DefaultBatchSize,
		failureThreshold: DefaultFailureThreshold,
		sampleSize:       DefaultSampleSize,
		logger:           slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(i); err != nil {
			return nil, err
		}
	}
	i.logger = i.logger.With("component", "ingestor", "collection", collection)
	return i, nil
}

// Ingest consumes records and submits them in batches. Batches are flushed
// sequentially in input order. The failure count is checked after each batch
// completes; once it exceeds the threshold no more records are consumed.
func (i *Ingestor) Ingest(ctx context.Context, records iter.Seq[*core.ChunkRecord]) (*Report, error) {
	start := time.Now()
	report := &Report{DryRun: i.dryRun}
	var tracker *ProgressTracker
	if i.progress != nil {
		tracker = NewProgressTracker(i.progress, i.progressTotal)
		tracker.Start()
	}

	batch := make([]*core.ChunkRecord, 0, i.batchSize)
	var runErr error
	for record := range records {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		batch = append(batch, record)
		if len(batch) < i.batchSize {
			continue
		}
		if runErr = i.flush(ctx, batch, report, tracker); runErr != nil || report.Stopped {
			batch = batch[:0]
			break
		}
		batch = batch[:0]
	}
	if runErr == nil && !report.Stopped && len(batch) > 0 {
		runErr = i.flush(ctx, batch, report, tracker)
	}

	if tracker != nil {
		tracker.Finish()
	}
	report.Elapsed = time.Since(start)
	i.logReport(report)
	return report, runErr
}

func (i *Ingestor) flush(ctx context.Context, batch []*core.ChunkRecord, report *Report, tracker *ProgressTracker) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if i.dryRun {
		for _, record := range batch {
			i.logger.Info("dry run", "title", record.Proposal.Title, "chunk", record.ChunkNumber, "id", record.Id.String())
			report.IDs = append(report.IDs, record.Id)
		}
		report.Attempted += len(batch)
		report.Batches++
		tracker.Increment(len(batch))
		return nil
	}

	failed, err := i.store.UpsertChunks(ctx, i.collection, batch...)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		i.logger.Error("batch upsert failed", "records", len(batch), "err", err)
		failed = make([]storage.FailedRecord, len(batch))
		for n, record := range batch {
			failed[n] = storage.FailedRecord{
				Id:          record.Id,
				Title:       record.Proposal.Title,
				ChunkNumber: record.ChunkNumber,
				Err:         err,
			}
		}
	}

	report.Attempted += len(batch)
	report.Batches++
	report.Failed += len(failed)
	for _, f := range failed {
		i.logger.Warn("record failed", "title", f.Title, "chunk", f.ChunkNumber, "id", f.Id.String(), "err", f.Err)
		if len(report.Failures) < i.sampleSize {
			report.Failures = append(report.Failures, f)
		}
	}
	tracker.Increment(len(batch))

	if report.Failed > i.failureThreshold {
		report.Stopped = true
		i.logger.Error("too many failures, stopping import", "failed", report.Failed, "threshold", i.failureThreshold)
	}
	return nil
}

func (i *Ingestor) logReport(report *Report) {
	attrs := []any{
		"attempted", report.Attempted,
		"failed", report.Failed,
		"batches", report.Batches,
		"elapsed", report.Elapsed,
	}
	switch {
	case report.DryRun:
		i.logger.Info("dry run finished", attrs...)
	case report.Stopped:
		i.logger.Error("import stopped early", attrs...)
	case report.Failed > 0:
		i.logger.Warn("import finished with failures", attrs...)
	default:
		i.logger.Info("import finished", attrs...)
	}
}
