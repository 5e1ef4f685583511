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

package assessor

import (
	"context"
	"io"
	"log/slog"

	"github.com/poiesic/assessor/ai"
	"github.com/poiesic/assessor/ai/openai"
	"github.com/poiesic/assessor/chunking"
	"github.com/poiesic/assessor/ingestion"
	"github.com/poiesic/assessor/reembed"
	"github.com/poiesic/assessor/search"
	"github.com/poiesic/assessor/storage"
	"github.com/poiesic/assessor/storage/badger"
)

// Database bundles the chunk store with the embedding provider that
// vectorizes and queries it.
type Database struct {
	backend  *badger.Backend
	store    *badger.Store
	provider ai.AIProvider
	aiConfig *ai.Config
	logger   *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig   *ai.Config
	provider   ai.AIProvider
	vectorizer bool
	logger     *slog.Logger
}

// WithAIConfig sets the embedding service configuration.
func WithAIConfig(cfg *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		if cfg != nil {
			o.aiConfig = cfg
		}
	}
}

// WithProvider uses provider instead of building one from the AI config.
func WithProvider(provider ai.AIProvider) DatabaseOption {
	return func(o *databaseOptions) {
		o.provider = provider
	}
}

// WithoutVectorizer stores chunks without embedding them. Search is not
// available on such a database.
func WithoutVectorizer() DatabaseOption {
	return func(o *databaseOptions) {
		o.vectorizer = false
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) DatabaseOption {
	return func(o *databaseOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// NewDatabase opens the store at filePath.
func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	options := &databaseOptions{
		aiConfig:   ai.DefaultConfig(),
		vectorizer: true,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, false)
	if err != nil {
		return nil, err
	}

	provider := options.provider
	if provider == nil && options.vectorizer {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			backend.Close()
			return nil, err
		}
	}

	storeOpts := []badger.StoreOption{badger.WithLogger(options.logger)}
	if provider != nil && options.vectorizer {
		storeOpts = append(storeOpts, badger.WithEmbedder(provider.Embedder()))
	}
	store, err := badger.NewStoreWithBackend(backend, storeOpts...)
	if err != nil {
		if provider != nil {
			provider.Close()
		}
		backend.Close()
		return nil, err
	}

	return &Database{
		backend:  backend,
		store:    store,
		provider: provider,
		aiConfig: options.aiConfig,
		logger:   options.logger,
	}, nil
}

func (db *Database) Close() error {
	if db.provider != nil {
		if err := db.provider.Close(); err != nil {
			db.logger.Error("error closing AI provider", "err", err)
		}
	}

	if err := db.store.Close(); err != nil {
		db.logger.Error("error closing chunk store", "err", err)
		return err
	}

	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (db *Database) Store() storage.ChunkStore {
	return db.store
}

// EnsureCollection creates collection if needed, dropping it first when
// reset is set.
func (db *Database) EnsureCollection(ctx context.Context, collection string, reset bool) error {
	return storage.EnsureCollection(ctx, db.store, collection, reset, db.logger)
}

// NewChunker returns a chunker whose token counts match the configured
// embedding model.
func (db *Database) NewChunker(window, overlap int) (*chunking.Chunker, error) {
	tokenizer, err := chunking.NewTiktokenTokenizer(db.aiConfig.EmbeddingModel)
	if err != nil {
		return nil, err
	}
	return chunking.New(tokenizer, window, overlap)
}

func (db *Database) NewExpander(chunker *chunking.Chunker, workers int) (*ingestion.Expander, error) {
	return ingestion.NewExpander(chunker, workers, db.logger)
}

func (db *Database) NewIngestor(collection string, opts ...ingestion.Option) (*ingestion.Ingestor, error) {
	opts = append([]ingestion.Option{ingestion.WithLogger(db.logger)}, opts...)
	return ingestion.NewIngestor(db.store, collection, opts...)
}

func (db *Database) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	if db.provider == nil {
		return nil, search.ErrAIProviderRequired
	}
	opts = append([]search.Option{search.WithLogger(db.logger)}, opts...)
	return search.NewSearcher(db.store, db.provider, opts...)
}

// NewReembedder returns a reembedder that recomputes the vectors of every
// chunk in collection with the configured provider.
func (db *Database) NewReembedder(collection string, config *reembed.Config, progress io.Writer) (*reembed.Reembedder, error) {
	if db.provider == nil {
		return nil, search.ErrAIProviderRequired
	}
	// Writes go through a store without a vectorizer so each record is
	// embedded once, by the reembedder.
	plain, err := badger.NewStoreWithBackend(db.backend, badger.WithLogger(db.logger))
	if err != nil {
		return nil, err
	}
	return reembed.NewReembedder(plain, collection, db.provider.Embedder(), config, progress, db.logger), nil
}
