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


package storage

import (
	"context"
	"fmt"

	"github.com/poiesic/assessor/core"
)

// FailedRecord describes a record a store could not write.
type FailedRecord struct {
	Id          core.ChunkID
	Title       string
	ChunkNumber int
	Err         error
}

func (f FailedRecord) String() string {
	return fmt.Sprintf("%s #%d (%s): %v", f.Title, f.ChunkNumber, f.Id, f.Err)
}

// CollectionManager manages named collections of chunk records.
type CollectionManager interface {
	// CollectionExists reports whether the named collection exists.
	CollectionExists(ctx context.Context, name string) (bool, error)

	// CreateCollection creates an empty collection.
	// Returns ErrCollectionExists if it already exists.
	CreateCollection(ctx context.Context, name string) error

	// DeleteCollection removes a collection and every record in it.
	// Returns ErrCollectionNotFound if it does not exist.
	DeleteCollection(ctx context.Context, name string) error
}

// ChunkStore is the downstream store chunk records are loaded into.
type ChunkStore interface {
	CollectionManager

	// UpsertChunks writes records keyed by their ID, replacing any record
	// already stored under the same ID. Failures of individual records are
	// returned as FailedRecords and do not stop the rest of the batch. A
	// non-nil error means the batch as a whole was not applied.
	UpsertChunks(ctx context.Context, collection string, records ...*core.ChunkRecord) ([]FailedRecord, error)

	// GetChunk retrieves a record by ID.
	// Returns ErrNotFound if the record doesn't exist.
	GetChunk(ctx context.Context, collection string, id core.ChunkID) (*core.ChunkRecord, error)

	// ChunkIDs returns the IDs of every record in the collection.
	ChunkIDs(ctx context.Context, collection string) ([]core.ChunkID, error)

	// CountChunks returns the number of records in the collection.
	CountChunks(ctx context.Context, collection string) (int, error)

	// FindSimilar returns records whose vector scores at least minSimilarity
	// against vector, best first, up to limit results.
	FindSimilar(ctx context.Context, collection string, vector []float32, minSimilarity float32, limit int) ([]*core.SearchResult, error)

	// Close releases resources held by the store.
	Close() error
}
