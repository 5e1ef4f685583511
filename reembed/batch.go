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

	"github.com/poiesic/assessor/ai"
	"github.com/poiesic/assessor/core"
	"github.com/poiesic/assessor/storage"
)

// BatchProcessor embeds batches of chunk records and writes them back.
// The store must not carry a vectorizer of its own.
type BatchProcessor struct {
	store      storage.ChunkStore
	collection string
	embedder   ai.Embedder
	backoff    ai.Backoff
}

// NewBatchProcessor creates a new batch processor.
func NewBatchProcessor(store storage.ChunkStore, collection string, embedder ai.Embedder, backoff ai.Backoff) *BatchProcessor {
	return &BatchProcessor{
		store:      store,
		collection: collection,
		embedder:   embedder,
		backoff:    backoff,
	}
}

// Process generates embeddings for a batch of records and updates them in
// the store. It returns the records the store refused.
func (bp *BatchProcessor) Process(ctx context.Context, records []*core.ChunkRecord) ([]storage.FailedRecord, error) {
	if len(records) == 0 {
		return nil, nil
	}

	texts := make([]string, len(records))
	for i, record := range records {
		texts[i] = record.VectorText()
	}

	var embeddings [][]float32
	err := bp.backoff.Retry(ctx, func(ctx context.Context) error {
		var err error
		embeddings, err = bp.embedder.EmbedTexts(ctx, texts)
		if err == nil && len(embeddings) != len(texts) {
			return fmt.Errorf("%w: expected %d, got %d", ai.ErrEmbeddingCount, len(texts), len(embeddings))
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate embeddings after %d attempts: %w", bp.backoff.Attempts, err)
	}

	for i := range records {
		records[i].Vector = ai.NormalizeVector(embeddings[i])
	}

	failed, err := bp.store.UpsertChunks(ctx, bp.collection, records...)
	if err != nil {
		return failed, fmt.Errorf("failed to update records: %w", err)
	}
	return failed, nil
}
