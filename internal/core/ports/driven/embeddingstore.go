package driven

import (
	"context"

	"github.com/esgdev/amaranth/internal/core/domain"
)

// EmbeddingStore persists embedding records and answers nearest-by-
// cosine-similarity queries. It is generic over the record shape so
// text and conversation embeddings share one contract.
//
// The store degrades instead of aborting the caller's flow:
// persistence failures are logged and surface as false (writes) or
// empty results (reads), never as errors. An empty read means either
// no data or a failed query; callers cannot tell the two apart.
type EmbeddingStore[R domain.VectorRecord] interface {
	// Add persists one or more records in a single batched write.
	// The batch is best-effort, not transactional: a mid-batch
	// failure may leave earlier records persisted.
	Add(ctx context.Context, records []R) bool

	// GetByID returns the record with the given id, if present.
	GetByID(ctx context.Context, id int64) (R, bool)

	// GetAll returns every stored record. No ordering is guaranteed.
	GetAll(ctx context.Context) []R

	// Update replaces the stored fields for an existing id. The id
	// and creation timestamp never change.
	Update(ctx context.Context, record R) bool

	// Delete removes the record with the given id.
	Delete(ctx context.Context, id int64) bool

	// FindNearest returns up to limit records strictly descending by
	// cosine similarity to the query vector, restricted to records
	// whose embedding model matches the query's. Records whose
	// similarity is undefined (zero-norm vectors) are excluded.
	// Results carry the similarity annotation populated.
	FindNearest(ctx context.Context, query R, limit int) []R
}
