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


package normalize

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/poiesic/assessor/core"
)

const (
	// DefaultMaxLength caps the stored body size in characters.
	DefaultMaxLength = 2500

	// Unreadable replaces the body when no legal text could be isolated.
	Unreadable = "[PDF_ILEGIVEL]"

	// NotFound replaces the body when the source document could not be retrieved.
	NotFound = "[PDF_NAO_LOCALIZADO]"
)

// Normalizer turns raw extracted text into a single-line legal body.
// It is safe for concurrent use once built.
type Normalizer struct {
	noise      []*regexp.Regexp
	maxLength  int
	unreadable string
	logger     *slog.Logger
}

// Option configures a Normalizer.
type Option func(*Normalizer) error

// WithNoise replaces the default noise patterns.
func WithNoise(patterns ...*regexp.Regexp) Option {
	return func(n *Normalizer) error {
		n.noise = patterns
		return nil
	}
}

// WithExtraNoise adds patterns to the current noise list.
func WithExtraNoise(patterns ...*regexp.Regexp) Option {
	return func(n *Normalizer) error {
		n.noise = append(append([]*regexp.Regexp{}, n.noise...), patterns...)
		return nil
	}
}

// WithMaxLength sets the character cap applied to the cleaned body.
// Zero disables the cap.
func WithMaxLength(max int) Option {
	return func(n *Normalizer) error {
		if max < 0 {
			return fmt.Errorf("max length must not be negative: %d", max)
		}
		n.maxLength = max
		return nil
	}
}

// WithUnreadable sets the sentinel body used when extraction fails.
func WithUnreadable(sentinel string) Option {
	return func(n *Normalizer) error {
		if sentinel == "" {
			return fmt.Errorf("unreadable sentinel cannot be empty")
		}
		n.unreadable = sentinel
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(n *Normalizer) error {
		if logger == nil {
			logger = slog.Default()
		}
		n.logger = logger
		return nil
	}
}

// New creates a Normalizer with the default noise patterns, a 2500 character
// cap and the Unreadable sentinel.
func New(opts ...Option) (*Normalizer, error) {
	n := &Normalizer{
		noise:      DefaultNoise,
		maxLength:  DefaultMaxLength,
		unreadable: Unreadable,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(n); err != nil {
			return nil, err
		}
	}
	n.logger = n.logger.With("component", "normalizer")
	return n, nil
}

// ExtractAndClean isolates the body of raw, removes noise and reflows it to
// a single line. The cap is not applied here.
func (n *Normalizer) ExtractAndClean(raw string) core.ExtractionResult {
	result := Extract(raw)
	if !result.OK {
		return result
	}
	result.Body = Reflow(Clean(result.Body, n.noise))
	result.OK = result.Body != ""
	return result
}

// Normalize produces the body text and presentation date to store for raw.
// It never fails: when no body can be isolated the sentinel is returned with
// a nil date.
func (n *Normalizer) Normalize(raw string) (string, *string) {
	if strings.TrimSpace(raw) == "" {
		n.logger.Debug("empty raw text")
		return n.unreadable, nil
	}

	result := n.ExtractAndClean(raw)
	if !result.OK {
		n.logger.Debug("no body marker found", "length", len(raw))
		return n.unreadable, nil
	}

	var date *string
	if result.PresentationDate != "" {
		d := result.PresentationDate
		date = &d
	}
	return Truncate(result.Body, n.maxLength), date
}

// Apply replaces the raw FullText of p with its normalized body and sets
// Length and PresentationDate from the result.
func (n *Normalizer) Apply(p *core.Proposal) {
	text, date := n.Normalize(p.FullText)
	p.FullText = text
	p.Length = len([]rune(text))
	p.PresentationDate = date
}
