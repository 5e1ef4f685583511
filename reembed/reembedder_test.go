package reembed

import (
	"bytes"
	"context"
	"testing"

	"github.com/poiesic/assessor/ai"
	"github.com/poiesic/assessor/ai/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReembedder_Run(t *testing.T) {
	store := setupTestStore(t)
	records := seedRecords(t, store, 5)
	ctx := context.Background()

	var progress bytes.Buffer
	config := &Config{BatchSize: 2, Backoff: fastBackoff(1)}
	stats, err := NewReembedder(store, testCollection, mock.NewMockEmbedder(), config, &progress, nil).Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, 5, stats.Total)
	assert.Equal(t, 5, stats.Updated)
	assert.Empty(t, stats.Failures)
	assert.Contains(t, progress.String(), "5/5")

	for _, r := range records {
		stored, err := store.GetChunk(ctx, testCollection, r.Id)
		require.NoError(t, err)
		assert.InDeltaSlice(t, mock.Vector(r.VectorText(), mock.DefaultDimensions), stored.Vector, 1e-5)
	}

	// The reembedded collection is searchable.
	query := mock.Vector(records[2].VectorText(), mock.DefaultDimensions)
	results, err := store.FindSimilar(ctx, testCollection, query, 0.99, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, records[2].Id, results[0].Record.Id)
}

func TestReembedder_EmptyCollection(t *testing.T) {
	store := setupTestStore(t)
	embedder := mock.NewMockEmbedder()

	stats, err := NewReembedder(store, testCollection, embedder, nil, nil, nil).Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.Total)
	assert.Zero(t, embedder.CallCount())
}

func TestReembedder_MissingCollection(t *testing.T) {
	store := setupTestStore(t)

	_, err := NewReembedder(store, "Nope", mock.NewMockEmbedder(), nil, nil, nil).Run(context.Background())
	assert.Error(t, err)
}

func TestReembedder_StopsOnEmbeddingFailure(t *testing.T) {
	store := setupTestStore(t)
	seedRecords(t, store, 4)

	embedder := mock.NewMockEmbedder().WithEmbedTextsFunc(func(context.Context, []string) ([][]float32, error) {
		return nil, assert.AnError
	})
	config := &Config{BatchSize: 2, Backoff: ai.Backoff{Attempts: 1}}

	stats, err := NewReembedder(store, testCollection, embedder, config, nil, nil).Run(context.Background())
	require.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 4, stats.Total)
	assert.Zero(t, stats.Updated)
	assert.Equal(t, 1, embedder.CallCount())
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()
	assert.Equal(t, DefaultBatchSize, config.BatchSize)
	assert.Equal(t, ai.DefaultBackoff(), config.Backoff)
}
