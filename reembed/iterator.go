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
	"errors"
	"fmt"

	"github.com/poiesic/assessor/core"
	"github.com/poiesic/assessor/storage"
)

const (
	// DefaultBatchSize is the default number of records to fetch in each batch
	DefaultBatchSize = 100
)

// ChunkIterator walks every record of a collection in batches.
type ChunkIterator struct {
	store      storage.ChunkStore
	collection string
	batchSize  int
}

// NewChunkIterator creates a new iterator.
// batchSize: number of records to fetch in each batch (must be > 0)
func NewChunkIterator(store storage.ChunkStore, collection string, batchSize int) *ChunkIterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	return &ChunkIterator{
		store:      store,
		collection: collection,
		batchSize:  batchSize,
	}
}

// IDs snapshots the collection's record IDs.
func (it *ChunkIterator) IDs(ctx context.Context) ([]core.ChunkID, error) {
	return it.store.ChunkIDs(ctx, it.collection)
}

// ForEach calls fn for each batch of records, loaded from the given IDs.
// Iteration stops on the first error from fn or when ctx is done. IDs that
// disappear between the snapshot and the load are skipped.
func (it *ChunkIterator) ForEach(ctx context.Context, ids []core.ChunkID, fn func([]*core.ChunkRecord) error) error {
	for start := 0; start < len(ids); start += it.batchSize {
		if err := ctx.Err(); err != nil {
			return err
		}

		end := min(start+it.batchSize, len(ids))
		batch := make([]*core.ChunkRecord, 0, end-start)
		for _, id := range ids[start:end] {
			record, err := it.store.GetChunk(ctx, it.collection, id)
			if errors.Is(err, storage.ErrNotFound) {
				continue
			}
			if err != nil {
				return fmt.Errorf("failed to load chunk %s: %w", id, err)
			}
			batch = append(batch, record)
		}
		if len(batch) == 0 {
			continue
		}

		if err := fn(batch); err != nil {
			return err
		}
	}

	return nil
}
