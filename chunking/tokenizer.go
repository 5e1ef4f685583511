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

	"github.com/pkoukk/tiktoken-go"
)

const (
	// DefaultModel is the embedding model whose encoding sizes the chunks.
	DefaultModel = "text-embedding-ada-002"

	// DefaultEncoding is used when the model has no registered encoding.
	DefaultEncoding = "cl100k_base"
)

// Tokenizer converts between text and token ids.
// Implementations must be safe for concurrent use.
type Tokenizer interface {
	Encode(text string) []int
	Decode(tokens []int) string
}

// TiktokenTokenizer implements Tokenizer with a tiktoken BPE encoding.
type TiktokenTokenizer struct {
	encoding *tiktoken.Tiktoken
}

var _ Tokenizer = (*TiktokenTokenizer)(nil)

// NewTiktokenTokenizer returns the encoding registered for model, falling
// back to cl100k_base for unknown models. Encoding files are fetched on first
// use and cached in TIKTOKEN_CACHE_DIR.
func NewTiktokenTokenizer(model string) (*TiktokenTokenizer, error) {
	if model == "" {
		model = DefaultModel
	}
	encoding, err := tiktoken.EncodingForModel(model)
	if err != nil {
		encoding, err = tiktoken.GetEncoding(DefaultEncoding)
		if err != nil {
			return nil, fmt.Errorf("failed to load encoding %s: %w", DefaultEncoding, err)
		}
	}
	return &TiktokenTokenizer{encoding: encoding}, nil
}

// Encode tokenizes text. Special tokens are encoded as ordinary text.
func (t *TiktokenTokenizer) Encode(text string) []int {
	return t.encoding.Encode(text, nil, nil)
}

// Decode turns token ids back into text.
func (t *TiktokenTokenizer) Decode(tokens []int) string {
	return t.encoding.Decode(tokens)
}
