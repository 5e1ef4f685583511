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
	"encoding/hex"
	"time"

	"github.com/go-crypt/x/blake2b"
	"github.com/google/uuid"
)

// ChunkID is the content address of a chunk of text.
type ChunkID uuid.UUID

// NilChunkID is the zero ChunkID. It is never produced by IDFromContent.
var NilChunkID ChunkID

// IDFromContent derives the identifier of a chunk from its text alone.
// Identical text always yields the same ID, no matter which proposal it came
// from or when it was ingested. The value is a name-based UUIDv5 in the DNS
// namespace, so it matches the object IDs vector stores derive the same way.
func IDFromContent(text string) ChunkID {
	return ChunkID(uuid.NewSHA1(uuid.NameSpaceDNS, []byte(text)))
}

// ParseChunkID parses the canonical string form of a ChunkID.
func ParseChunkID(s string) (ChunkID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return NilChunkID, err
	}
	return ChunkID(id), nil
}

func (id ChunkID) String() string {
	return uuid.UUID(id).String()
}

// IsNil reports whether id is the zero value.
func (id ChunkID) IsNil() bool {
	return id == NilChunkID
}

// JoinKey hashes a title into the key used to join a proposal's text entry to
// its metadata entry. Both sides must hash the exact same string.
func JoinKey(s string) string {
	h, _ := blake2b.New(16, nil) // 16 bytes = 128 bits
	h.Write([]byte(s))
	return hex.EncodeToString(h.Sum(nil))
}

// Proposal is a legislative proposal as handed over by a collector.
// FullText holds either the raw extracted text or the normalized body,
// depending on the stage. The JSON form is the intermediate file format
// shared between collection and import.
type Proposal struct {
	UUID             string         `json:"uuid"`
	Title            string         `json:"title"`
	House            string         `json:"house"`
	Type             string         `json:"type"`
	Number           *int           `json:"number"`
	Year             *int           `json:"year"`
	PresentationDate *string        `json:"presentation_date"`
	Author           []string       `json:"author"`
	Subject          string         `json:"subject"`
	FullText         string         `json:"full_text"`
	Length           int            `json:"length"`
	URL              string         `json:"url"`
	ScrapedAt        string         `json:"scraped_at"`
	Meta             map[string]any `json:"meta,omitempty"`
}

// ExtractionResult is the outcome of isolating the legal body of a raw text.
// OK is false exactly when Body is empty.
type ExtractionResult struct {
	Body             string
	OK               bool
	PresentationDate string // empty when no date pattern matched
}

// Chunk is a token-bounded slice of a proposal's text.
type Chunk struct {
	Text  string
	Index int // zero-based, no gaps within one proposal
}

// ChunkRecord is the unit written to a chunk store: the owning proposal's
// metadata by value plus one chunk of its text.
type ChunkRecord struct {
	Id          ChunkID
	Proposal    Proposal
	ChunkText   string
	ChunkNumber int
	Vector      []float32 // populated by the store's vectorizer, if any
	InsertedAt  time.Time
	UpdatedAt   time.Time
}

// NewChunkRecord pairs a proposal with one of its chunks and assigns the
// content-derived ID.
func NewChunkRecord(p Proposal, c Chunk) *ChunkRecord {
	p.Meta = nil
	return &ChunkRecord{
		Id:          IDFromContent(c.Text),
		Proposal:    p,
		ChunkText:   c.Text,
		ChunkNumber: c.Index,
	}
}

// Properties flattens the record into the property map stored alongside its ID.
func (r *ChunkRecord) Properties() map[string]any {
	p := r.Proposal
	props := map[string]any{
		"title":             p.Title,
		"house":             p.House,
		"type":              p.Type,
		"number":            nil,
		"presentation_date": nil,
		"year":              nil,
		"author":            p.Author,
		"subject":           p.Subject,
		"full_text":         p.FullText,
		"length":            p.Length,
		"url":               p.URL,
		"scraped_at":        p.ScrapedAt,
		"chunk_text":        r.ChunkText,
		"chunk_number":      r.ChunkNumber,
	}
	if p.Number != nil {
		props["number"] = *p.Number
	}
	if p.Year != nil {
		props["year"] = *p.Year
	}
	if p.PresentationDate != nil {
		props["presentation_date"] = *p.PresentationDate
	}
	return props
}

// VectorText is the text a vectorizer embeds for the record.
func (r *ChunkRecord) VectorText() string {
	return r.Proposal.Title + "\n" + r.Proposal.Subject + "\n" + r.ChunkText
}

type SearchResult struct {
	Record *ChunkRecord
	Score  float32
}
