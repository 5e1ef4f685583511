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


package chunking

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/poiesic/assessor/core"
)

const (
	// DefaultWindow is the maximum number of tokens per chunk.
	DefaultWindow = 3500

	// DefaultOverlap is the number of tokens repeated between neighbours.
	DefaultOverlap = 150
)

// Chunker splits text into windows of at most window tokens, each starting
// about overlap tokens before the end of its predecessor.
// A Chunker is immutable and safe for concurrent use.
type Chunker struct {
	tokenizer Tokenizer
	window    int
	overlap   int
}

// ValidateWindow checks that 0 <= overlap < window.
func ValidateWindow(window, overlap int) error {
	if window <= 0 {
		return fmt.Errorf("%w: window must be positive, got %d", ErrInvalidWindow, window)
	}
	if overlap < 0 || overlap >= window {
		return fmt.Errorf("%w: overlap must be in [0, %d), got %d", ErrInvalidWindow, window, overlap)
	}
	return nil
}

// New creates a Chunker. Misconfigured windows are rejected here so they
// never surface halfway through a run.
func New(tokenizer Tokenizer, window, overlap int) (*Chunker, error) {
	if tokenizer == nil {
		return nil, ErrTokenizerRequired
	}
	if err := ValidateWindow(window, overlap); err != nil {
		return nil, err
	}
	return &Chunker{tokenizer: tokenizer, window: window, overlap: overlap}, nil
}

// Chunk is a convenience wrapper for New(tokenizer, window, overlap).Chunk(text).
func Chunk(text string, window, overlap int, tokenizer Tokenizer) ([]core.Chunk, error) {
	c, err := New(tokenizer, window, overlap)
	if err != nil {
		return nil, err
	}
	return c.Chunk(text), nil
}

// Window returns the configured window size in tokens.
func (c *Chunker) Window() int { return c.window }

// Overlap returns the configured overlap in tokens.
func (c *Chunker) Overlap() int { return c.overlap }

// Chunk splits text into chunks numbered from zero.
//
// Every chunk except the last is cut back to the last token boundary at or
// before its last whitespace character, so a chunk's text is always the
// decoding of the tokens it consumed. The next
// window starts overlap tokens before that point, moved forward to just past
// the first whitespace in the overlap when it would otherwise open mid-word. Empty
// text yields no chunks.
func (c *Chunker) Chunk(text string) []core.Chunk {
	tokens := c.tokenizer.Encode(text)
	total := len(tokens)

	var chunks []core.Chunk
	start := 0
	for start < total {
		end := min(start+c.window, total)
		chunkText := c.tokenizer.Decode(tokens[start:end])

		if end < total {
			if cut := lastSpace(chunkText); cut > 0 {
				if k := c.fit(tokens[start:end], chunkText[:cut]); k > 0 {
					end = start + k
					chunkText = c.tokenizer.Decode(tokens[start:end])
				}
			}
		}

		chunks = append(chunks, core.Chunk{Text: chunkText, Index: len(chunks)})
		if end >= total {
			break
		}

		start = c.nextStart(tokens, start, end)
	}
	return chunks
}

// fit returns the largest k such that the first k tokens decode to a prefix
// of trimmed, or 0 when not even one token does. Re-encoding trimmed only
// gives a starting guess: tokenizers that glue whitespace to the following
// word encode a trailing space as a token the stream does not have.
func (c *Chunker) fit(tokens []int, trimmed string) int {
	fits := func(k int) bool {
		return strings.HasPrefix(trimmed, c.tokenizer.Decode(tokens[:k]))
	}

	k := min(len(c.tokenizer.Encode(trimmed)), len(tokens))
	for k > 0 && !fits(k) {
		k--
	}
	for k < len(tokens) && fits(k+1) {
		k++
	}
	return k
}

// nextStart computes where the window after [start, end) begins.
// The result is always greater than start, so Chunk terminates.
func (c *Chunker) nextStart(tokens []int, start, end int) int {
	next := end - c.overlap
	if c.overlap > 0 && next > start && !c.atWordStart(tokens, next) {
		region := c.tokenizer.Decode(tokens[next:end])
		if cut := firstSpace(region); cut > 0 {
			next = min(next+len(c.tokenizer.Encode(region[:cut])), end)
		}
	}
	if next <= start {
		// The trimmed chunk was shorter than the overlap; continue without one.
		next = end
	}
	return next
}

// atWordStart reports whether the token at i begins a word, that is, it is
// preceded by whitespace or starts with whitespace itself.
func (c *Chunker) atWordStart(tokens []int, i int) bool {
	if i == 0 {
		return true
	}
	prev, _ := utf8.DecodeLastRuneInString(c.tokenizer.Decode(tokens[i-1 : i]))
	if unicode.IsSpace(prev) {
		return true
	}
	first, _ := utf8.DecodeRuneInString(c.tokenizer.Decode(tokens[i : i+1]))
	return unicode.IsSpace(first)
}

// lastSpace returns the byte offset just past the last whitespace rune in s,
// or 0 when s has none.
func lastSpace(s string) int {
	i := strings.LastIndexFunc(s, unicode.IsSpace)
	if i < 0 {
		return 0
	}
	_, size := utf8.DecodeRuneInString(s[i:])
	return i + size
}

// firstSpace returns the byte offset just past the first whitespace rune in
// s, or 0 when s has none.
func firstSpace(s string) int {
	i := strings.IndexFunc(s, unicode.IsSpace)
	if i < 0 {
		return 0
	}
	_, size := utf8.DecodeRuneInString(s[i:])
	return i + size
}
