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

package source

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/poiesic/assessor/core"
	"github.com/poiesic/assessor/normalize"
)

// Source produces the proposals of one house.
type Source interface {
	House() *House
	Collect(ctx context.Context) ([]*core.Proposal, error)
}

type options struct {
	datasetsDir string
	client      *http.Client
	fetcher     Fetcher
	baseURL     string
	pageSize    int
	limit       int
	workers     int
	normalizer  *normalize.Normalizer
	extract     PDFExtractor
	logger      *slog.Logger
	now         func() time.Time
}

// Option configures a Source.
type Option func(*options) error

// WithDatasetsDir sets the directory holding the per-house dataset files.
func WithDatasetsDir(dir string) Option {
	return func(o *options) error {
		o.datasetsDir = dir
		return nil
	}
}

// WithHTTPClient sets the client used for remote listings and documents.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) error {
		if client == nil {
			return fmt.Errorf("http client cannot be nil")
		}
		o.client = client
		return nil
	}
}

// WithFetcher replaces the remote fetcher entirely.
func WithFetcher(f Fetcher) Option {
	return func(o *options) error {
		if f == nil {
			return fmt.Errorf("fetcher cannot be nil")
		}
		o.fetcher = f
		return nil
	}
}

// WithBaseURL overrides the base URL of a remote source.
func WithBaseURL(u string) Option {
	return func(o *options) error {
		o.baseURL = u
		return nil
	}
}

// WithPageSize sets how many listing rows are requested per page.
func WithPageSize(n int) Option {
	return func(o *options) error {
		if n <= 0 {
			return fmt.Errorf("page size must be positive: %d", n)
		}
		o.pageSize = n
		return nil
	}
}

// WithLimit caps the number of items a source collects. Zero means no cap.
func WithLimit(n int) Option {
	return func(o *options) error {
		if n < 0 {
			return fmt.Errorf("limit must not be negative: %d", n)
		}
		o.limit = n
		return nil
	}
}

// WithWorkers sets the number of documents processed concurrently.
func WithWorkers(n int) Option {
	return func(o *options) error {
		o.workers = n
		return nil
	}
}

// WithNormalizer sets the normalizer applied to extracted document text.
func WithNormalizer(n *normalize.Normalizer) Option {
	return func(o *options) error {
		o.normalizer = n
		return nil
	}
}

// WithPDFExtractor replaces the PDF text extractor.
func WithPDFExtractor(fn PDFExtractor) Option {
	return func(o *options) error {
		if fn == nil {
			return fmt.Errorf("PDF extractor cannot be nil")
		}
		o.extract = fn
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) error {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger
		return nil
	}
}

// WithClock sets the clock used for scraped_at timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) error {
		if now == nil {
			return fmt.Errorf("clock cannot be nil")
		}
		o.now = now
		return nil
	}
}

// New builds the source that serves house.
func New(house *House, opts ...Option) (Source, error) {
	if house == nil {
		return nil, ErrUnknownHouse
	}
	o := &options{
		baseURL:  CIDSPBaseURL,
		pageSize: DefaultPageSize,
		extract:  PDFText,
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	o.logger = o.logger.With("component", "source", "house", house.Slug)

	switch house.Kind {
	case KindLegislAPI:
		return newLegislAPISource(house, o)
	case KindCamara:
		return newCamaraSource(house, o)
	case KindCIDSP:
		return newCIDSPSource(house, o)
	default:
		return nil, fmt.Errorf("%w: %s", ErrWrongKind, house.Kind)
	}
}

// keepValid drops proposals missing a required field and logs why.
func keepValid(proposals []*core.Proposal, logger *slog.Logger) []*core.Proposal {
	kept := proposals[:0]
	for _, p := range proposals {
		if p == nil {
			continue
		}
		if err := core.ValidateProposal(p); err != nil {
			logger.Warn("dropping incomplete proposal", "uuid", p.UUID, "title", p.Title, "error", err)
			continue
		}
		kept = append(kept, p)
	}
	return kept
}

func limitProposals(proposals []*core.Proposal, limit int) []*core.Proposal {
	if limit > 0 && len(proposals) > limit {
		return proposals[:limit]
	}
	return proposals
}

func runeLen(s string) int {
	return len([]rune(s))
}
