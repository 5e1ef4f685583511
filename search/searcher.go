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

package search

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/poiesic/assessor/ai"
	"github.com/poiesic/assessor/core"
	"github.com/poiesic/assessor/storage"
)

const (
	// DefaultMinSimilarity is the lowest cosine similarity a chunk needs to be a hit.
	DefaultMinSimilarity float32 = 0.60

	// VerbatimBoost is added to the score of chunks containing every query word.
	VerbatimBoost float32 = 0.3
)

// Searcher ranks the chunks of a collection against a query.
type Searcher struct {
	store         storage.ChunkStore
	embedder      ai.Embedder
	minSimilarity float32
	logger        *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithMinSimilarity sets the similarity threshold for hits.
func WithMinSimilarity(min float32) Option {
	return func(s *Searcher) error {
		if min < -1 || min > 1 {
			return fmt.Errorf("min similarity must be within [-1, 1]: %v", min)
		}
		s.minSimilarity = min
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(store storage.ChunkStore, provider ai.AIProvider, opts ...Option) (*Searcher, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	s := &Searcher{
		store:         store,
		embedder:      provider.Embedder(),
		minSimilarity: DefaultMinSimilarity,
		logger:        slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.logger = s.logger.With("component", "searcher")

	return s, nil
}

// Search returns up to limit chunks of collection ranked by relevance to
// query. A limit of zero or less returns every hit.
func (s *Searcher) Search(ctx context.Context, collection, query string, limit int) ([]*core.SearchResult, error) {
	return s.SearchWithMonitor(ctx, collection, query, limit, nil)
}

// SearchWithMonitor is Search with callbacks at each stage.
func (s *Searcher) SearchWithMonitor(ctx context.Context, collection, query string, limit int, monitor SearchMonitor) ([]*core.SearchResult, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}

	monitor.Start(query)

	embedding, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		s.logger.Error("error generating embedding for query", "query", query, "err", err)
		return nil, err
	}

	// The verbatim boost can reorder hits, so the limit is applied afterwards.
	matches, err := s.store.FindSimilar(ctx, collection, embedding, s.minSimilarity, 0)
	if err != nil {
		s.logger.Error("error querying for similar chunks", "collection", collection, "err", err)
		return nil, err
	}
	monitor.AfterSemanticSearch(matches)

	results := make([]*core.SearchResult, 0, len(matches))
	for _, match := range matches {
		if match == nil || match.Record == nil {
			continue
		}
		score := match.Score
		if containsAllQueryWords(searchableText(match.Record), query) {
			score += VerbatimBoost
			monitor.VerbatimHit(match.Record)
		}
		results = append(results, &core.SearchResult{
			Record: match.Record,
			Score:  score,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	monitor.Finish(results)

	s.logger.Debug("search complete", "collection", collection, "matches", len(matches), "returned", len(results))
	return results, nil
}

func searchableText(r *core.ChunkRecord) string {
	return r.Proposal.Title + " " + r.Proposal.Subject + " " + r.ChunkText
}
