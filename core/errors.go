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

import "errors"

var (
	// ErrInvalidProposal indicates a Proposal failed validation.
	ErrInvalidProposal = errors.New("invalid proposal")

	// ErrMissingFields indicates one or more required fields are empty.
	ErrMissingFields = errors.New("missing required fields")

	// ErrInvalidChunkRecord indicates a ChunkRecord failed validation.
	ErrInvalidChunkRecord = errors.New("invalid chunk record")

	// ErrEmptyChunk indicates the chunk text is empty.
	ErrEmptyChunk = errors.New("chunk text cannot be empty")

	// ErrIDMismatch indicates a record ID was not derived from its chunk text.
	ErrIDMismatch = errors.New("record id does not match chunk content")

	// ErrNegativeChunkNumber indicates a chunk number below zero.
	ErrNegativeChunkNumber = errors.New("chunk number cannot be negative")
)
