package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/esgdev/amaranth/internal/core/domain"
)

func textRecord(chunk string, vector []float64, model string) domain.TextEmbedding {
	return domain.TextEmbedding{
		Chunk:          chunk,
		Embedding:      vector,
		EmbeddingModel: model,
	}
}

func TestEmbeddingStore_AddAssignsIDs(t *testing.T) {
	store := NewTextEmbeddingStore()
	ctx := context.Background()

	ok := store.Add(ctx, []domain.TextEmbedding{
		textRecord("a", []float64{1, 0}, "m"),
		textRecord("b", []float64{0, 1}, "m"),
	})
	require.True(t, ok)

	all := store.GetAll(ctx)
	require.Len(t, all, 2)
	assert.NotEqual(t, all[0].ID, all[1].ID)
}

func TestEmbeddingStore_RoundTrip(t *testing.T) {
	store := NewTextEmbeddingStore()
	ctx := context.Background()

	require.True(t, store.Add(ctx, []domain.TextEmbedding{textRecord("hello", []float64{0.1, 0.2, 0.3}, "m")}))
	all := store.GetAll(ctx)
	require.Len(t, all, 1)

	got, ok := store.GetByID(ctx, all[0].ID)
	require.True(t, ok)
	assert.Equal(t, "hello", got.Chunk)
	assert.Equal(t, []float64{0.1, 0.2, 0.3}, got.Embedding)
}

func TestEmbeddingStore_UpdateAndDelete(t *testing.T) {
	store := NewTextEmbeddingStore()
	ctx := context.Background()

	require.True(t, store.Add(ctx, []domain.TextEmbedding{textRecord("old", []float64{1}, "m")}))
	rec := store.GetAll(ctx)[0]

	rec.Chunk = "new"
	require.True(t, store.Update(ctx, rec))
	got, _ := store.GetByID(ctx, rec.ID)
	assert.Equal(t, "new", got.Chunk)

	require.True(t, store.Delete(ctx, rec.ID))
	_, ok := store.GetByID(ctx, rec.ID)
	assert.False(t, ok)

	assert.False(t, store.Delete(ctx, rec.ID), "second delete reports failure")
	assert.False(t, store.Update(ctx, rec), "update of missing id reports failure")
}

func TestEmbeddingStore_UpdateKeepsCreationDate(t *testing.T) {
	store := NewTextEmbeddingStore()
	ctx := context.Background()

	rec := textRecord("old", []float64{1}, "m")
	rec.CreationDate = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	require.True(t, store.Add(ctx, []domain.TextEmbedding{rec}))
	stored := store.GetAll(ctx)[0]

	stored.Chunk = "new"
	stored.CreationDate = time.Now()
	require.True(t, store.Update(ctx, stored))

	got, ok := store.GetByID(ctx, stored.ID)
	require.True(t, ok)
	assert.Equal(t, "new", got.Chunk)
	assert.Equal(t, rec.CreationDate, got.CreationDate)
}

func TestEmbeddingStore_FindNearest(t *testing.T) {
	store := NewTextEmbeddingStore()
	ctx := context.Background()

	require.True(t, store.Add(ctx, []domain.TextEmbedding{
		textRecord("exact", []float64{1, 0}, "m"),
		textRecord("close", []float64{0.9, 0.1}, "m"),
		textRecord("far", []float64{0, 1}, "m"),
		textRecord("other model", []float64{1, 0}, "other"),
		textRecord("zero", []float64{0, 0}, "m"),
	}))

	query := textRecord("query", []float64{1, 0}, "m")
	hits := store.FindNearest(ctx, query, 10)

	require.Len(t, hits, 3, "other-model and zero-vector rows are excluded")
	assert.Equal(t, "exact", hits[0].Chunk)
	assert.Equal(t, "close", hits[1].Chunk)
	assert.Equal(t, "far", hits[2].Chunk)

	for i := 1; i < len(hits); i++ {
		assert.LessOrEqual(t, hits[i].Similarity, hits[i-1].Similarity)
	}
}

func TestEmbeddingStore_FindNearestLimit(t *testing.T) {
	store := NewTextEmbeddingStore()
	ctx := context.Background()

	require.True(t, store.Add(ctx, []domain.TextEmbedding{
		textRecord("a", []float64{1, 0}, "m"),
		textRecord("b", []float64{0.8, 0.2}, "m"),
		textRecord("c", []float64{0.5, 0.5}, "m"),
	}))

	hits := store.FindNearest(ctx, textRecord("q", []float64{1, 0}, "m"), 2)
	assert.Len(t, hits, 2)
}

func TestSettingsStore(t *testing.T) {
	store := NewSettingsStore()

	_, ok := store.GetValue("missing")
	assert.False(t, ok)

	require.True(t, store.SaveValue("system_prompt", "be terse"))
	got, ok := store.GetValue("system_prompt")
	require.True(t, ok)
	assert.Equal(t, "be terse", got)

	require.True(t, store.SaveValue("system_prompt", "be verbose"))
	got, _ = store.GetValue("system_prompt")
	assert.Equal(t, "be verbose", got)
}
