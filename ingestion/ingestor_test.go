package ingestion

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"iter"
	"slices"
	"sync"
	"testing"

	"github.com/poiesic/assessor/core"
	"github.com/poiesic/assessor/storage"
	"github.com/poiesic/assessor/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore records every upsert call. When failEvery is set, every
// failEvery-th record it receives (1-based, counted across calls) fails.
type fakeStore struct {
	mu        sync.Mutex
	failEvery int
	batchErr  error
	seen      int
	calls     [][]core.ChunkID
	stored    map[core.ChunkID]*core.ChunkRecord
}

var _ storage.ChunkStore = (*fakeStore)(nil)

func newFakeStore() *fakeStore {
	return &fakeStore{stored: map[core.ChunkID]*core.ChunkRecord{}}
}

func (f *fakeStore) CollectionExists(ctx context.Context, name string) (bool, error) { return true, nil }
func (f *fakeStore) CreateCollection(ctx context.Context, name string) error { return nil }
func (f *fakeStore) DeleteCollection(ctx context.Context, name string) error { return nil }

func (f *fakeStore) UpsertChunks(ctx context.Context, collection string, records ...*core.ChunkRecord) ([]storage.FailedRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ids := make([]core.ChunkID, len(records))
	for i, r := range records {
		ids[i] = r.Id
	}
	f.calls = append(f.calls, ids)
	if f.batchErr != nil {
		return nil, f.batchErr
	}

	var failed []storage.FailedRecord
	for _, r := range records {
		f.seen++
		if f.failEvery > 0 && f.seen%f.failEvery == 0 {
			failed = append(failed, storage.FailedRecord{Id: r.Id, Title: r.Proposal.Title, ChunkNumber: r.ChunkNumber, Err: errors.New("rejected")})
			continue
		}
		f.stored[r.Id] = r
	}
	return failed, nil
}

func (f *fakeStore) GetChunk(ctx context.Context, collection string, id core.ChunkID) (*core.ChunkRecord, error) {
	if r, ok := f.stored[id]; ok {
		return r, nil
	}
	return nil, storage.ErrNotFound
}

func (f *fakeStore) ChunkIDs(ctx context.Context, collection string) ([]core.ChunkID, error) {
	ids := make([]core.ChunkID, 0, len(f.stored))
	for id := range f.stored {
		ids = append(ids, id)
	}
	return ids, nil
}

func (f *fakeStore) CountChunks(ctx context.Context, collection string) (int, error) {
	return len(f.stored), nil
}

func (f *fakeStore) FindSimilar(ctx context.Context, collection string, vector []float32, minSimilarity float32, limit int) ([]*core.SearchResult, error) {
	return nil, nil
}

func (f *fakeStore) Close() error { return nil }

func (f *fakeStore) recordsSubmitted() int {
	n := 0
	for _, c := range f.calls {
		n += len(c)
	}
	return n
}

func makeRecords(n int) []*core.ChunkRecord {
	p := core.Proposal{Title: "PL 1/2020", House: "h", Subject: "s", FullText: "t", URL: "u"}
	records := make([]*core.ChunkRecord, n)
	for i := range records {
		records[i] = core.NewChunkRecord(p, core.Chunk{Text: fmt.Sprintf("chunk %d", i), Index: i})
	}
	return records
}

func TestNewIngestor_Validation(t *testing.T) {
	_, err := NewIngestor(nil, "Bill")
	assert.ErrorIs(t, err, ErrStoreRequired)

	_, err = NewIngestor(newFakeStore(), "")
	assert.ErrorIs(t, err, ErrCollectionRequired)

	_, err = NewIngestor(newFakeStore(), "Bill", WithBatchSize(0))
	assert.ErrorIs(t, err, ErrInvalidBatchSize)

	_, err = NewIngestor(newFakeStore(), "Bill", WithFailureThreshold(-1))
	assert.ErrorIs(t, err, ErrInvalidThreshold)

	i, err := NewIngestor(newFakeStore(), "Bill")
	require.NoError(t, err)
	assert.Equal(t, DefaultBatchSize, i.batchSize)
	assert.Equal(t, DefaultFailureThreshold, i.failureThreshold)
	assert.Equal(t, DefaultSampleSize, i.sampleSize)
}

func TestIngest_Batches(t *testing.T) {
	tests := []struct {
		name      string
		records   int
		batchSize int
		want      []int
	}{
		{"no records", 0, 10, nil},
		{"partial batch", 3, 10, []int{3}},
		{"exact batches", 20, 10, []int{10, 10}},
		{"trailing batch", 23, 10, []int{10, 10, 3}},
		{"batch of one", 3, 1, []int{1, 1, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			ingestor, err := NewIngestor(store, "Bill", WithBatchSize(tt.batchSize))
			require.NoError(t, err)

			records := makeRecords(tt.records)
			report, err := ingestor.Ingest(context.Background(), slices.Values(records))
			require.NoError(t, err)

			var sizes []int
			for _, c := range store.calls {
				sizes = append(sizes, len(c))
			}
			assert.Equal(t, tt.want, sizes)
			assert.Equal(t, tt.records, report.Attempted)
			assert.Equal(t, len(tt.want), report.Batches)
			assert.Zero(t, report.Failed)
			assert.Equal(t, tt.records, report.Succeeded())
			assert.False(t, report.Stopped)

			// batches preserve input order
			var order []core.ChunkID
			for _, c := range store.calls {
				order = append(order, c...)
			}
			for i, r := range records {
				assert.Equal(t, r.Id, order[i])
			}
		})
	}
}

func TestIngest_ThresholdStopsSubmission(t *testing.T) {
	// every 3rd record fails: 4 per batch of 10 at most, so the total
	// passes 10 after the 4th batch (3+3+4+3 = 13 > 10)
	store := newFakeStore()
	store.failEvery = 3
	ingestor, err := NewIngestor(store, "Bill")
	require.NoError(t, err)

	report, err := ingestor.Ingest(context.Background(), slices.Values(makeRecords(100)))
	require.NoError(t, err)

	assert.True(t, report.Stopped)
	assert.Len(t, store.calls, 4, "no batch submitted after the threshold tripped")
	assert.Equal(t, 40, report.Attempted)
	assert.Equal(t, 13, report.Failed, "failures observed before the stop")
	assert.Len(t, report.Failures, DefaultSampleSize)
	assert.Equal(t, 27, report.Succeeded())

	// records submitted before the stop stay in the store
	count, _ := store.CountChunks(context.Background(), "Bill")
	assert.Equal(t, 27, count)
}

func TestIngest_ThresholdNotExceeded(t *testing.T) {
	store := newFakeStore()
	store.failEvery = 10
	ingestor, err := NewIngestor(store, "Bill")
	require.NoError(t, err)

	// 100 records, 10 failures: equal to the threshold, not above it
	report, err := ingestor.Ingest(context.Background(), slices.Values(makeRecords(100)))
	require.NoError(t, err)

	assert.False(t, report.Stopped)
	assert.Equal(t, 100, report.Attempted)
	assert.Equal(t, 10, report.Failed)
	assert.Len(t, store.calls, 10)
}

func TestIngest_StopsConsumingInput(t *testing.T) {
	store := newFakeStore()
	store.failEvery = 1
	ingestor, err := NewIngestor(store, "Bill", WithBatchSize(5), WithFailureThreshold(4))
	require.NoError(t, err)

	consumed := 0
	records := makeRecords(50)
	var seq iter.Seq[*core.ChunkRecord] = func(yield func(*core.ChunkRecord) bool) {
		for _, r := range records {
			consumed++
			if !yield(r) {
				return
			}
		}
	}

	report, err := ingestor.Ingest(context.Background(), seq)
	require.NoError(t, err)
	assert.True(t, report.Stopped)
	assert.Equal(t, 5, consumed)
	assert.Equal(t, 5, report.Failed)
}

func TestIngest_WholeBatchFailureCountsEveryRecord(t *testing.T) {
	store := newFakeStore()
	store.batchErr = errors.New("connection refused")
	ingestor, err := NewIngestor(store, "Bill", WithBatchSize(4))
	require.NoError(t, err)

	report, err := ingestor.Ingest(context.Background(), slices.Values(makeRecords(30)))
	require.NoError(t, err)

	assert.True(t, report.Stopped)
	assert.Len(t, store.calls, 3)
	assert.Equal(t, 12, report.Failed)
	require.NotEmpty(t, report.Failures)
	assert.ErrorContains(t, report.Failures[0].Err, "connection refused")
}

func TestIngest_DryRun(t *testing.T) {
	store := newFakeStore()
	ingestor, err := NewIngestor(store, "Bill", WithDryRun(true), WithBatchSize(3))
	require.NoError(t, err)

	records := makeRecords(7)
	report, err := ingestor.Ingest(context.Background(), slices.Values(records))
	require.NoError(t, err)

	assert.Empty(t, store.calls, "dry run never calls the store")
	assert.True(t, report.DryRun)
	assert.Equal(t, 7, report.Attempted)
	assert.Zero(t, report.Succeeded())
	require.Len(t, report.IDs, 7)
	for i, r := range records {
		assert.Equal(t, core.IDFromContent(r.ChunkText), report.IDs[i])
	}
}

func TestIngest_ContextCanceled(t *testing.T) {
	store := newFakeStore()
	ingestor, err := NewIngestor(store, "Bill", WithBatchSize(2))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	records := makeRecords(10)
	var seq iter.Seq[*core.ChunkRecord] = func(yield func(*core.ChunkRecord) bool) {
		for i, r := range records {
			if i == 5 {
				cancel()
			}
			if !yield(r) {
				return
			}
		}
	}

	report, err := ingestor.Ingest(ctx, seq)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 4, report.Attempted)
	assert.Len(t, store.calls, 2)
}

func TestIngest_Progress(t *testing.T) {
	var buf bytes.Buffer
	ingestor, err := NewIngestor(newFakeStore(), "Bill", WithProgress(&buf, 12))
	require.NoError(t, err)

	_, err = ingestor.Ingest(context.Background(), slices.Values(makeRecords(12)))
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "Progress: 10/12")
	assert.Contains(t, buf.String(), "Progress: 12/12")
}

func TestIngest_IdempotentReingestion(t *testing.T) {
	store, err := badger.NewMemoryStore()
	require.NoError(t, err)
	defer store.Close()
	ctx := context.Background()
	require.NoError(t, storage.EnsureCollection(ctx, store, "Bill", false, nil))

	ingestor, err := NewIngestor(store, "Bill", WithBatchSize(4))
	require.NoError(t, err)

	_, err = ingestor.Ingest(ctx, slices.Values(makeRecords(9)))
	require.NoError(t, err)
	first, err := store.ChunkIDs(ctx, "Bill")
	require.NoError(t, err)

	report, err := ingestor.Ingest(ctx, slices.Values(makeRecords(9)))
	require.NoError(t, err)
	assert.Zero(t, report.Failed)

	second, err := store.ChunkIDs(ctx, "Bill")
	require.NoError(t, err)
	assert.Len(t, second, 9)
	assert.ElementsMatch(t, first, second)
}
