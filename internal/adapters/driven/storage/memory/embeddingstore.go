// Package memory provides in-memory implementations of the storage
// ports, used in tests and as a fallback when no data directory is
// available.
package memory

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/esgdev/amaranth/internal/core/domain"
	"github.com/esgdev/amaranth/internal/core/ports/driven"
)

// Ensure the stores implement the interface.
var (
	_ driven.EmbeddingStore[domain.TextEmbedding]      = (*EmbeddingStore[domain.TextEmbedding])(nil)
	_ driven.EmbeddingStore[domain.ChatChunkEmbedding] = (*EmbeddingStore[domain.ChatChunkEmbedding])(nil)
)

// EmbeddingStore is an in-memory implementation of
// driven.EmbeddingStore, generic over the record shape. Record
// mutation (id assignment, similarity annotation) goes through
// injected setters because the store only sees the VectorRecord
// capability.
type EmbeddingStore[R domain.VectorRecord] struct {
	mu      sync.RWMutex
	records map[int64]R
	nextID  int64

	withID         func(R, int64) R
	withSimilarity func(R, float64) R
	keepCreation   func(record, stored R) R
}

// NewTextEmbeddingStore creates an in-memory store for text
// embedding records.
func NewTextEmbeddingStore() *EmbeddingStore[domain.TextEmbedding] {
	return &EmbeddingStore[domain.TextEmbedding]{
		records: make(map[int64]domain.TextEmbedding),
		withID: func(r domain.TextEmbedding, id int64) domain.TextEmbedding {
			r.ID = id
			return r
		},
		withSimilarity: func(r domain.TextEmbedding, s float64) domain.TextEmbedding {
			r.Similarity = s
			return r
		},
		keepCreation: func(record, stored domain.TextEmbedding) domain.TextEmbedding {
			record.CreationDate = stored.CreationDate
			return record
		},
	}
}

// NewChatChunkEmbeddingStore creates an in-memory store for
// conversation chunk embedding records.
func NewChatChunkEmbeddingStore() *EmbeddingStore[domain.ChatChunkEmbedding] {
	return &EmbeddingStore[domain.ChatChunkEmbedding]{
		records: make(map[int64]domain.ChatChunkEmbedding),
		withID: func(r domain.ChatChunkEmbedding, id int64) domain.ChatChunkEmbedding {
			r.ID = id
			return r
		},
		withSimilarity: func(r domain.ChatChunkEmbedding, s float64) domain.ChatChunkEmbedding {
			r.Similarity = s
			return r
		},
		keepCreation: func(record, stored domain.ChatChunkEmbedding) domain.ChatChunkEmbedding {
			record.CreationDate = stored.CreationDate
			return record
		},
	}
}

// Add persists records, assigning sequential ids.
func (s *EmbeddingStore[R]) Add(_ context.Context, records []R) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range records {
		s.nextID++
		s.records[s.nextID] = s.withID(r, s.nextID)
	}
	return true
}

// GetByID returns the record with the given id, if present.
func (s *EmbeddingStore[R]) GetByID(_ context.Context, id int64) (R, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.records[id]
	return r, ok
}

// GetAll returns every stored record in unspecified order.
func (s *EmbeddingStore[R]) GetAll(_ context.Context) []R {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]R, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, r)
	}
	return out
}

// Update replaces the stored fields for an existing id. The creation
// timestamp never changes.
func (s *EmbeddingStore[R]) Update(_ context.Context, record R) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := record.RecordID()
	stored, ok := s.records[id]
	if !ok {
		return false
	}
	s.records[id] = s.keepCreation(record, stored)
	return true
}

// Delete removes the record with the given id.
func (s *EmbeddingStore[R]) Delete(_ context.Context, id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[id]; !ok {
		return false
	}
	delete(s.records, id)
	return true
}

// FindNearest ranks stored records by cosine similarity to the query
// vector, model-filtered, excluding non-comparable rows.
func (s *EmbeddingStore[R]) FindNearest(_ context.Context, query R, limit int) []R {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type scored struct {
		record     R
		similarity float64
	}

	var candidates []scored
	for _, r := range s.records {
		if r.ModelID() != query.ModelID() {
			continue
		}
		sim := domain.CosineSimilarity(r.Vector(), query.Vector())
		if math.IsNaN(sim) {
			continue
		}
		candidates = append(candidates, scored{record: r, similarity: sim})
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].similarity > candidates[j].similarity
	})
	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}

	out := make([]R, len(candidates))
	for i, c := range candidates {
		out[i] = s.withSimilarity(c.record, c.similarity)
	}
	return out
}

// SettingsStore is an in-memory implementation of
// driven.SettingsStore.
type SettingsStore struct {
	mu     sync.RWMutex
	values map[string]settingsEntry
}

type settingsEntry struct {
	value   string
	updated time.Time
}

// Ensure SettingsStore implements the interface.
var _ driven.SettingsStore = (*SettingsStore)(nil)

// NewSettingsStore creates an in-memory settings store.
func NewSettingsStore() *SettingsStore {
	return &SettingsStore{values: make(map[string]settingsEntry)}
}

// SaveValue upserts a value under key.
func (s *SettingsStore) SaveValue(key, value string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = settingsEntry{value: value, updated: time.Now()}
	return true
}

// GetValue returns the value stored under key, if present.
func (s *SettingsStore) GetValue(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.values[key]
	return e.value, ok
}
