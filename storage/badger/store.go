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


package badger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/assessor/ai"
	"github.com/poiesic/assessor/core"
	"github.com/poiesic/assessor/storage"
)

// Store implements storage.ChunkStore on BadgerDB. When an embedder is
// configured it acts as the collection's vectorizer: every upserted record
// is embedded from its title, subject and chunk text.
type Store struct {
	backend     *Backend
	ownsBackend bool
	embedder    ai.Embedder
	logger      *slog.Logger
}

var _ storage.ChunkStore = (*Store)(nil)

// StoreOption configures a Store.
type StoreOption func(*Store) error

// WithEmbedder vectorizes records on upsert.
func WithEmbedder(embedder ai.Embedder) StoreOption {
	return func(s *Store) error {
		s.embedder = embedder
		return nil
	}
}

// WithLogger sets the logger for the store.
func WithLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		s.logger = logger
		return nil
	}
}

// NewStore opens (or creates) a store in the directory at path.
func NewStore(path string, opts ...StoreOption) (*Store, error) {
	backend, err := OpenBackend(path, false)
	if err != nil {
		return nil, err
	}
	s, err := NewStoreWithBackend(backend, opts...)
	if err != nil {
		backend.Close()
		return nil, err
	}
	s.ownsBackend = true
	return s, nil
}

// NewStoreWithBackend creates a store over an already open backend. The
// caller keeps ownership of the backend.
func NewStoreWithBackend(backend *Backend, opts ...StoreOption) (*Store, error) {
	s := &Store{
		backend: backend,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.logger = s.logger.With("component", "chunk-store")
	return s, nil
}

// Close closes the backend if the store opened it.
func (s *Store) Close() error {
	if s.ownsBackend && !s.backend.IsClosed() {
		return s.backend.Close()
	}
	return nil
}

// CollectionExists reports whether the named collection exists.
func (s *Store) CollectionExists(ctx context.Context, name string) (bool, error) {
	if s.backend.IsClosed() {
		return false, storage.ErrStorageClosed
	}
	var exists bool
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		exists, err = collectionExists(tx, name)
		return err
	}, false)
	return exists, err
}

// CreateCollection creates an empty collection.
func (s *Store) CreateCollection(ctx context.Context, name string) error {
	if err := storage.ValidateCollectionName(name); err != nil {
		return err
	}
	if s.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	return s.backend.WithTx(func(tx *badger.Txn) error {
		exists, err := collectionExists(tx, name)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("%w: %s", storage.ErrCollectionExists, name)
		}
		created := []byte(time.Now().UTC().Format(time.RFC3339))
		if err := tx.Set(makeCollectionKey(name), created); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// DeleteCollection removes a collection and every record in it.
func (s *Store) DeleteCollection(ctx context.Context, name string) error {
	exists, err := s.CollectionExists(ctx, name)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s", storage.ErrCollectionNotFound, name)
	}

	if err := s.backend.DropPrefix(makeChunkPrefix(name)); err != nil {
		return err
	}
	return s.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Delete(makeCollectionKey(name)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// UpsertChunks writes records keyed by their content ID. A record already
// stored under the same ID is replaced and keeps its original InsertedAt.
// Records that fail validation or vectorization are reported back and the
// rest of the batch is still written.
func (s *Store) UpsertChunks(ctx context.Context, collection string, records ...*core.ChunkRecord) ([]storage.FailedRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	exists, err := s.CollectionExists(ctx, collection)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", storage.ErrCollectionNotFound, collection)
	}

	var failed []storage.FailedRecord
	pending := make([]*core.ChunkRecord, 0, len(records))
	for _, record := range records {
		if err := core.ValidateChunkRecord(record); err != nil {
			failed = append(failed, failure(record, err))
			continue
		}
		pending = append(pending, record)
	}

	if s.embedder != nil && len(pending) > 0 {
		var embedFailed []storage.FailedRecord
		pending, embedFailed = s.vectorize(ctx, pending)
		failed = append(failed, embedFailed...)
		if err := ctx.Err(); err != nil {
			return failed, err
		}
	}

	now := time.Now().UTC()
	err = s.backend.WithTx(func(tx *badger.Txn) error {
		for _, record := range pending {
			key := makeChunkKey(collection, record.Id)

			old, err := readChunkRecord(tx, key)
			if err != nil {
				failed = append(failed, failure(record, err))
				continue
			}
			if old != nil && !old.InsertedAt.IsZero() {
				record.InsertedAt = old.InsertedAt
			} else {
				record.InsertedAt = now
			}
			record.UpdatedAt = now

			if err := tx.Set(key, storage.MarshalChunkRecord(record)); err != nil {
				if errors.Is(err, badger.ErrTxnTooBig) {
					return err
				}
				failed = append(failed, failure(record, err))
			}
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return failed, err
	}

	if len(failed) > 0 {
		s.logger.Warn("batch upsert finished with failures", "collection", collection, "records", len(records), "failed", len(failed))
	} else {
		s.logger.Debug("batch upsert finished", "collection", collection, "records", len(records))
	}
	return failed, nil
}

// vectorize embeds the records in one call. If the batch call fails each
// record is retried alone so one bad text does not fail its neighbours.
func (s *Store) vectorize(ctx context.Context, records []*core.ChunkRecord) ([]*core.ChunkRecord, []storage.FailedRecord) {
	texts := make([]string, len(records))
	for i, record := range records {
		texts[i] = record.VectorText()
	}

	vectors, err := s.embedder.EmbedTexts(ctx, texts)
	if err == nil && len(vectors) == len(records) {
		for i, record := range records {
			record.Vector = ai.NormalizeVector(vectors[i])
		}
		return records, nil
	}
	s.logger.Debug("batch embedding failed, embedding records one by one", "records", len(records), "err", err)

	var (
		ok     []*core.ChunkRecord
		failed []storage.FailedRecord
	)
	for i, record := range records {
		if ctx.Err() != nil {
			failed = append(failed, failure(record, ctx.Err()))
			continue
		}
		vector, err := s.embedder.EmbedText(ctx, texts[i])
		if err == nil && len(vector) == 0 {
			err = ai.ErrEmptyEmbedding
		}
		if err != nil {
			failed = append(failed, failure(record, fmt.Errorf("%w: %w", storage.ErrEmbeddingFailed, err)))
			continue
		}
		record.Vector = ai.NormalizeVector(vector)
		ok = append(ok, record)
	}
	return ok, failed
}

// GetChunk retrieves a record by ID.
func (s *Store) GetChunk(ctx context.Context, collection string, id core.ChunkID) (*core.ChunkRecord, error) {
	var result *core.ChunkRecord
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readChunkRecord(tx, makeChunkKey(collection, id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// ChunkIDs returns the IDs of every record in the collection, in key order.
func (s *Store) ChunkIDs(ctx context.Context, collection string) ([]core.ChunkID, error) {
	var ids []core.ChunkID
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		if exists, err := collectionExists(tx, collection); err != nil {
			return err
		} else if !exists {
			return fmt.Errorf("%w: %s", storage.ErrCollectionNotFound, collection)
		}
		return scanPrefix(tx, makeChunkPrefix(collection), false, func(item *badger.Item) error {
			if id, ok := chunkIDFromKey(item.Key()); ok {
				ids = append(ids, id)
			}
			return nil
		})
	}, false)
	return ids, err
}

// CountChunks returns the number of records in the collection.
func (s *Store) CountChunks(ctx context.Context, collection string) (int, error) {
	ids, err := s.ChunkIDs(ctx, collection)
	return len(ids), err
}

// FindSimilar finds records in the collection similar to the given vector.
func (s *Store) FindSimilar(ctx context.Context, collection string, vector []float32, minSimilarity float32, limit int) ([]*core.SearchResult, error) {
	var results []*core.SearchResult
	query := ai.NormalizeVector(vector)

	err := s.backend.WithTx(func(tx *badger.Txn) error {
		return scanPrefix(tx, makeChunkPrefix(collection), true, func(item *badger.Item) error {
			if err := ctx.Err(); err != nil {
				return err
			}

			var record *core.ChunkRecord
			err := item.Value(func(val []byte) error {
				var err error
				record, err = storage.UnmarshalChunkRecord(val)
				return err
			})
			if err != nil {
				return err
			}

			// Skip records stored without a vectorizer
			if len(record.Vector) == 0 {
				return nil
			}

			similarity := ai.Dot(query, record.Vector)
			if similarity >= minSimilarity {
				results = append(results, &core.SearchResult{
					Record: record,
					Score:  similarity,
				})
			}
			return nil
		})
	}, false)
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(results, func(a, b *core.SearchResult) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func collectionExists(tx *badger.Txn, name string) (bool, error) {
	_, err := tx.Get(makeCollectionKey(name))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// readChunkRecord returns nil, nil when the key is absent.
func readChunkRecord(tx *badger.Txn, key []byte) (*core.ChunkRecord, error) {
	item, err := tx.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var record *core.ChunkRecord
	err = item.Value(func(val []byte) error {
		var err error
		record, err = storage.UnmarshalChunkRecord(val)
		return err
	})
	return record, err
}

func failure(record *core.ChunkRecord, err error) storage.FailedRecord {
	if record == nil {
		return storage.FailedRecord{Err: err}
	}
	return storage.FailedRecord{
		Id:          record.Id,
		Title:       record.Proposal.Title,
		ChunkNumber: record.ChunkNumber,
		Err:         err,
	}
}
