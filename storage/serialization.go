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


package storage

import (
	"fmt"
	"math"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/assessor/core"
)

const chunkRecordVersion = 1

const idSize = 16

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ChunkID) []byte {
	buf := make([]byte, idSize)
	copy(buf, id[:])
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ChunkID, error) {
	var id core.ChunkID
	if len(data) != idSize {
		return id, fmt.Errorf("%w: id is %d bytes, want %d", ErrSerializationFailed, len(data), idSize)
	}
	copy(id[:], data)
	return id, nil
}

// MarshalChunkRecord serializes a ChunkRecord to bytes.
func MarshalChunkRecord(record *core.ChunkRecord) []byte {
	var w musWriter
	w.sizing = true
	writeChunkRecord(&w, record)
	w.buf = make([]byte, w.n)
	w.n = 0
	w.sizing = false
	writeChunkRecord(&w, record)
	return w.buf
}

// UnmarshalChunkRecord deserializes a ChunkRecord from bytes.
func UnmarshalChunkRecord(data []byte) (*core.ChunkRecord, error) {
	r := musReader{bs: data}
	if v := r.int(); r.err == nil && v != chunkRecordVersion {
		return nil, fmt.Errorf("%w: unknown record version %d", ErrSerializationFailed, v)
	}

	record := &core.ChunkRecord{}
	if r.err == nil && len(r.bs)-r.n >= idSize {
		copy(record.Id[:], r.bs[r.n:r.n+idSize])
		r.n += idSize
	} else if r.err == nil {
		return nil, fmt.Errorf("%w: truncated id", ErrSerializationFailed)
	}

	p := &record.Proposal
	p.UUID = r.str()
	p.Title = r.str()
	p.House = r.str()
	p.Type = r.str()
	p.Number = r.optInt()
	p.Year = r.optInt()
	p.PresentationDate = r.optStr()
	if n := r.count(); n > 0 {
		p.Author = make([]string, 0, n)
		for range n {
			p.Author = append(p.Author, r.str())
		}
	}
	p.Subject = r.str()
	p.FullText = r.str()
	p.Length = r.int()
	p.URL = r.str()
	p.ScrapedAt = r.str()

	record.ChunkText = r.str()
	record.ChunkNumber = r.int()
	if n := r.count(); n > 0 {
		record.Vector = make([]float32, 0, n)
		for range n {
			record.Vector = append(record.Vector, math.Float32frombits(r.uint32()))
		}
	}
	record.InsertedAt = r.time()
	record.UpdatedAt = r.time()

	if r.err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, r.err)
	}
	return record, nil
}

func writeChunkRecord(w *musWriter, record *core.ChunkRecord) {
	w.int(chunkRecordVersion)
	w.raw(record.Id[:])

	p := &record.Proposal
	w.str(p.UUID)
	w.str(p.Title)
	w.str(p.House)
	w.str(p.Type)
	w.optInt(p.Number)
	w.optInt(p.Year)
	w.optStr(p.PresentationDate)
	w.int(len(p.Author))
	for _, a := range p.Author {
		w.str(a)
	}
	w.str(p.Subject)
	w.str(p.FullText)
	w.int(p.Length)
	w.str(p.URL)
	w.str(p.ScrapedAt)

	w.str(record.ChunkText)
	w.int(record.ChunkNumber)
	w.int(len(record.Vector))
	for _, f := range record.Vector {
		w.uint32(math.Float32bits(f))
	}
	w.time(record.InsertedAt)
	w.time(record.UpdatedAt)
}

// musWriter runs twice over a record: once to size the buffer, once to fill it.
type musWriter struct {
	buf    []byte
	n      int
	sizing bool
}

func (w *musWriter) raw(b []byte) {
	if !w.sizing {
		copy(w.buf[w.n:], b)
	}
	w.n += len(b)
}

func (w *musWriter) str(v string) {
	if w.sizing {
		w.n += ord.String.Size(v)
		return
	}
	w.n += ord.String.Marshal(v, w.buf[w.n:])
}

func (w *musWriter) bool(v bool) {
	if w.sizing {
		w.n += ord.Bool.Size(v)
		return
	}
	w.n += ord.Bool.Marshal(v, w.buf[w.n:])
}

func (w *musWriter) int(v int) {
	if w.sizing {
		w.n += varint.Int.Size(v)
		return
	}
	w.n += varint.Int.Marshal(v, w.buf[w.n:])
}

func (w *musWriter) int64(v int64) {
	if w.sizing {
		w.n += varint.Int64.Size(v)
		return
	}
	w.n += varint.Int64.Marshal(v, w.buf[w.n:])
}

func (w *musWriter) uint32(v uint32) {
	if w.sizing {
		w.n += varint.Uint32.Size(v)
		return
	}
	w.n += varint.Uint32.Marshal(v, w.buf[w.n:])
}

func (w *musWriter) optInt(v *int) {
	w.bool(v != nil)
	if v != nil {
		w.int(*v)
	}
}

func (w *musWriter) optStr(v *string) {
	w.bool(v != nil)
	if v != nil {
		w.str(*v)
	}
}

// time stores microsecond precision; the zero time round-trips as zero.
func (w *musWriter) time(t time.Time) {
	w.bool(!t.IsZero())
	if !t.IsZero() {
		w.int64(t.UnixMicro())
	}
}

// musReader stops at the first error; later reads return zero values.
type musReader struct {
	bs  []byte
	n   int
	err error
}

func (r *musReader) str() string {
	if r.err != nil {
		return ""
	}
	v, n, err := ord.String.Unmarshal(r.bs[r.n:])
	r.n += n
	r.err = err
	return v
}

func (r *musReader) bool() bool {
	if r.err != nil {
		return false
	}
	v, n, err := ord.Bool.Unmarshal(r.bs[r.n:])
	r.n += n
	r.err = err
	return v
}

func (r *musReader) int() int {
	if r.err != nil {
		return 0
	}
	v, n, err := varint.Int.Unmarshal(r.bs[r.n:])
	r.n += n
	r.err = err
	return v
}

func (r *musReader) int64() int64 {
	if r.err != nil {
		return 0
	}
	v, n, err := varint.Int64.Unmarshal(r.bs[r.n:])
	r.n += n
	r.err = err
	return v
}

func (r *musReader) uint32() uint32 {
	if r.err != nil {
		return 0
	}
	v, n, err := varint.Uint32.Unmarshal(r.bs[r.n:])
	r.n += n
	r.err = err
	return v
}

// count reads a slice length. Every element takes at least one byte, so a
// length beyond the remaining input is corrupt.
func (r *musReader) count() int {
	n := r.int()
	if r.err == nil && (n < 0 || n > len(r.bs)-r.n) {
		r.err = fmt.Errorf("invalid length %d", n)
		return 0
	}
	return n
}

func (r *musReader) optInt() *int {
	if !r.bool() {
		return nil
	}
	v := r.int()
	return &v
}

func (r *musReader) optStr() *string {
	if !r.bool() {
		return nil
	}
	v := r.str()
	return &v
}

func (r *musReader) time() time.Time {
	if !r.bool() {
		return time.Time{}
	}
	return time.UnixMicro(r.int64()).UTC()
}
