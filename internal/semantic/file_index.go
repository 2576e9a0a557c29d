package semantic

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/gregcmartin/doppel/internal/models"
	"github.com/sirupsen/logrus"
)

var _ VectorIndex = (*FileIndex)(nil)

// FileIndex is a vector index held in memory and persisted as a JSON
// file, so embeddings remain retrievable by API identity across runs.
// Safe for concurrent use.
type FileIndex struct {
	logger *logrus.Logger
	path   string

	mu      sync.RWMutex
	vectors map[string][]float32
}

// OpenFileIndex loads an index from the given path, starting empty when
// the file does not exist yet
func OpenFileIndex(logger *logrus.Logger, path string) (*FileIndex, error) {
	idx := &FileIndex{
		logger:  logger,
		path:    path,
		vectors: make(map[string][]float32),
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return idx, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read index file: %v", models.ErrIndexUnavailable, err)
	}
	if err := json.Unmarshal(data, &idx.vectors); err != nil {
		return nil, fmt.Errorf("%w: corrupt index file %s: %v", models.ErrIndexUnavailable, path, err)
	}

	logger.Debugf("Loaded vector index with %d entries from %s", len(idx.vectors), path)
	return idx, nil
}

// Upsert stores or replaces the embedding for an API identity and
// persists the index
func (f *FileIndex) Upsert(ctx context.Context, identity string, vector []float32) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", models.ErrIndexUnavailable, err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.vectors[identity] = vector
	return f.save()
}

// QueryNearest returns up to topK identities with cosine similarity
// >= minScore, descending by similarity, ties by identity ascending
func (f *FileIndex) QueryNearest(ctx context.Context, vector []float32, topK int, minScore float64) ([]Neighbor, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrIndexUnavailable, err)
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	var neighbors []Neighbor
	for identity, stored := range f.vectors {
		score := Cosine(vector, stored)
		if score >= minScore {
			neighbors = append(neighbors, Neighbor{Identity: identity, Score: score})
		}
	}

	sort.Slice(neighbors, func(i, j int) bool {
		if neighbors[i].Score != neighbors[j].Score {
			return neighbors[i].Score > neighbors[j].Score
		}
		return neighbors[i].Identity < neighbors[j].Identity
	})

	if topK > 0 && len(neighbors) > topK {
		neighbors = neighbors[:topK]
	}
	return neighbors, nil
}

// Vector returns the stored embedding for an identity
func (f *FileIndex) Vector(ctx context.Context, identity string) ([]float32, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, fmt.Errorf("%w: %v", models.ErrIndexUnavailable, err)
	}

	f.mu.RLock()
	defer f.mu.RUnlock()
	vector, ok := f.vectors[identity]
	return vector, ok, nil
}

// Len returns the number of stored embeddings
func (f *FileIndex) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.vectors)
}

// save writes the index to disk; callers must hold the write lock
func (f *FileIndex) save() error {
	data, err := json.Marshal(f.vectors)
	if err != nil {
		return fmt.Errorf("%w: failed to encode index: %v", models.ErrIndexUnavailable, err)
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("%w: failed to write index file: %v", models.ErrIndexUnavailable, err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("%w: failed to replace index file: %v", models.ErrIndexUnavailable, err)
	}
	return nil
}
