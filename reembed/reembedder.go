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



package reembed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/poiesic/assessor/ai"
	"github.com/poiesic/assessor/core"
	"github.com/poiesic/assessor/ingestion"
	"github.com/poiesic/assessor/storage"
)

// Config holds configuration for the reembedding operation.
type Config struct {
	// BatchSize is the number of records to process in each batch
	BatchSize int

	// Backoff is the retry policy for embedding calls
	Backoff ai.Backoff
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize: DefaultBatchSize,
		Backoff:   ai.DefaultBackoff(),
	}
}

// Stats summarizes a run.
type Stats struct {
	Total    int
	Updated  int
	Failures []storage.FailedRecord
	Elapsed  time.Duration
}

// Reembedder orchestrates the reembedding of every record in a collection.
type Reembedder struct {
	collection string
	config     *Config
	progress   io.Writer
	logger     *slog.Logger
	processor  *BatchProcessor
	iterator   *ChunkIterator
}

// NewReembedder creates a new reembedder. The store is used for both reads
// and writes and must not vectorize on its own.
// progress: where to write progress output (typically os.Stderr), may be nil
func NewReembedder(store storage.ChunkStore, collection string, embedder ai.Embedder, config *Config, progress io.Writer, logger *slog.Logger) *Reembedder {
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Reembedder{
		collection: collection,
		config:     config,
		progress:   progress,
		logger:     logger.With("component", "reembedder", "collection", collection),
		processor:  NewBatchProcessor(store, collection, embedder, config.Backoff),
		iterator:   NewChunkIterator(store, collection, config.BatchSize),
	}
}

// Run reembeds every record in the collection. Records the store refuses
// are collected in the stats; an embedding failure that survives the retry
// policy stops the run.
func (r *Reembedder) Run(ctx context.Context) (*Stats, error) {
	start := time.Now()
	stats := &Stats{}

	ids, err := r.iterator.IDs(ctx)
	if err != nil {
		return stats, fmt.Errorf("failed to list records: %w", err)
	}
	stats.Total = len(ids)
	if stats.Total == 0 {
		r.logger.Info("no records to reembed")
		return stats, nil
	}

	r.logger.Info("starting reembedding", "records", stats.Total, "batch_size", r.config.BatchSize)

	var tracker *ingestion.ProgressTracker
	if r.progress != nil {
		tracker = ingestion.NewProgressTracker(r.progress, stats.Total)
		tracker.Start()
	}

	err = r.iterator.ForEach(ctx, ids, func(records []*core.ChunkRecord) error {
		failed, err := r.processor.Process(ctx, records)
		stats.Failures = append(stats.Failures, failed...)
		if err != nil {
			return fmt.Errorf("failed to process batch: %w", err)
		}
		stats.Updated += len(records) - len(failed)
		tracker.Increment(len(records))
		return nil
	})
	tracker.Finish()
	stats.Elapsed = time.Since(start)
	if err != nil {
		return stats, err
	}

	r.logger.Info("reembedding complete",
		"updated", stats.Updated,
		"failed", len(stats.Failures),
		"elapsed", stats.Elapsed.Round(time.Millisecond))
	return stats, nil
}
