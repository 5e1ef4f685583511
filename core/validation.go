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


package core

import (
	"fmt"
	"strings"
)

// RequiredFields lists the JSON names of the fields a proposal must carry
// before it may be stored.
var RequiredFields = []string{"title", "house", "subject", "full_text", "url"}

// MissingFields returns the required fields of p that are empty, in
// RequiredFields order.
func MissingFields(p *Proposal) []string {
	if p == nil {
		return RequiredFields
	}
	values := map[string]string{
		"title":     p.Title,
		"house":     p.House,
		"subject":   p.Subject,
		"full_text": p.FullText,
		"url":       p.URL,
	}
	var missing []string
	for _, field := range RequiredFields {
		if strings.TrimSpace(values[field]) == "" {
			missing = append(missing, field)
		}
	}
	return missing
}

// ValidationError lists the required fields a proposal is missing.
// It matches both ErrInvalidProposal and ErrMissingFields.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%v: %v: %s", ErrInvalidProposal, ErrMissingFields, strings.Join(e.Missing, ", "))
}

func (e *ValidationError) Unwrap() []error {
	return []error{ErrInvalidProposal, ErrMissingFields}
}

// ValidateProposal checks that every required field of p is present.
func ValidateProposal(p *Proposal) error {
	if p == nil {
		return fmt.Errorf("%w: proposal is nil", ErrInvalidProposal)
	}
	if missing := MissingFields(p); len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}
	return nil
}

// ValidateChunkRecord checks that a record is fit to be written to a store.
func ValidateChunkRecord(record *ChunkRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidChunkRecord)
	}
	if record.ChunkText == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunkRecord, ErrEmptyChunk)
	}
	if record.ChunkNumber < 0 {
		return fmt.Errorf("%w: %w", ErrInvalidChunkRecord, ErrNegativeChunkNumber)
	}
	if record.Id != IDFromContent(record.ChunkText) {
		return fmt.Errorf("%w: %w", ErrInvalidChunkRecord, ErrIDMismatch)
	}
	return nil
}
