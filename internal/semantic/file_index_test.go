package semantic

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIndex(t *testing.T) *FileIndex {
	t.Helper()
	logger := logrus.New()
	idx, err := OpenFileIndex(logger, filepath.Join(t.TempDir(), "index.json"))
	require.NoError(t, err)
	return idx
}

func TestUpsertIdempotent(t *testing.T) {
	ctx := context.Background()
	idx := newTestIndex(t)

	vector := []float32{1, 0, 0}
	require.NoError(t, idx.Upsert(ctx, "payments@1.0", vector))
	require.NoError(t, idx.Upsert(ctx, "payments@1.0", vector))

	assert.Equal(t, 1, idx.Len(), "repeated upsert must overwrite, not duplicate")

	neighbors, err := idx.QueryNearest(ctx, vector, 10, 0.0)
	require.NoError(t, err)
	require.Len(t, neighbors, 1)
	assert.Equal(t, "payments@1.0", neighbors[0].Identity)
	assert.InDelta(t, 1.0, neighbors[0].Score, 1e-9)
}

func TestQueryNearestOrdering(t *testing.T) {
	ctx := context.Background()
	idx := newTestIndex(t)

	require.NoError(t, idx.Upsert(ctx, "exact", []float32{1, 0}))
	require.NoError(t, idx.Upsert(ctx, "close", []float32{1, 0.5}))
	require.NoError(t, idx.Upsert(ctx, "orthogonal", []float32{0, 1}))

	neighbors, err := idx.QueryNearest(ctx, []float32{1, 0}, 10, 0.3)
	require.NoError(t, err)

	require.Len(t, neighbors, 2, "orthogonal vector must be filtered by minScore")
	assert.Equal(t, "exact", neighbors[0].Identity)
	assert.Equal(t, "close", neighbors[1].Identity)
	assert.Greater(t, neighbors[0].Score, neighbors[1].Score)
}

func TestQueryNearestTieBreak(t *testing.T) {
	ctx := context.Background()
	idx := newTestIndex(t)

	// Same vector stored under two identities: equal scores, ordered by
	// identity ascending.
	require.NoError(t, idx.Upsert(ctx, "beta", []float32{1, 1}))
	require.NoError(t, idx.Upsert(ctx, "alpha", []float32{1, 1}))

	neighbors, err := idx.QueryNearest(ctx, []float32{1, 1}, 10, 0.0)
	require.NoError(t, err)
	require.Len(t, neighbors, 2)
	assert.Equal(t, "alpha", neighbors[0].Identity)
	assert.Equal(t, "beta", neighbors[1].Identity)
}

func TestQueryNearestTopK(t *testing.T) {
	ctx := context.Background()
	idx := newTestIndex(t)

	require.NoError(t, idx.Upsert(ctx, "a", []float32{1, 0}))
	require.NoError(t, idx.Upsert(ctx, "b", []float32{1, 0.1}))
	require.NoError(t, idx.Upsert(ctx, "c", []float32{1, 0.2}))

	neighbors, err := idx.QueryNearest(ctx, []float32{1, 0}, 2, 0.0)
	require.NoError(t, err)
	assert.Len(t, neighbors, 2)
}

func TestFileIndexPersistence(t *testing.T) {
	ctx := context.Background()
	logger := logrus.New()
	path := filepath.Join(t.TempDir(), "index.json")

	idx, err := OpenFileIndex(logger, path)
	require.NoError(t, err)
	require.NoError(t, idx.Upsert(ctx, "payments@1.0", []float32{0.5, 0.5}))

	reopened, err := OpenFileIndex(logger, path)
	require.NoError(t, err)
	vector, ok, err := reopened.Vector(ctx, "payments@1.0")
	require.NoError(t, err)
	require.True(t, ok, "stored embedding must be retrievable after reopen")
	assert.Equal(t, []float32{0.5, 0.5}, vector)

	_, ok, err = reopened.Vector(ctx, "unknown")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCosine(t *testing.T) {
	assert.InDelta(t, 1.0, Cosine([]float32{1, 2, 3}, []float32{1, 2, 3}), 1e-9)
	assert.InDelta(t, 0.0, Cosine([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.Equal(t, 0.0, Cosine([]float32{1, 0}, []float32{1}), "mismatched lengths score 0")
	assert.Equal(t, 0.0, Cosine(nil, nil))
	assert.Equal(t, 0.0, Cosine([]float32{0, 0}, []float32{1, 1}), "zero vector scores 0")
}
