package services

import (
	"context"
	"fmt"
	"time"

	"github.com/esgdev/amaranth/internal/core/domain"
	"github.com/esgdev/amaranth/internal/core/ports/driven"
	"github.com/esgdev/amaranth/internal/logger"
)

// EmbeddingManager generates, persists, and retrieves embeddings for
// one record shape. It is generic over the record type R and the
// source type S; text and conversation embeddings differ only in how
// the persisted record is built from a chunk, so both share this
// implementation with an injected record constructor.
type EmbeddingManager[R domain.VectorRecord, S any] struct {
	store     driven.EmbeddingStore[R]
	inference driven.InferenceService
	chunking  domain.ChunkingConfig
	model     string
	text      func(S) string
	build     func(chunk string, vector []float64, now time.Time, src S) R
}

// TextEmbeddingManager handles knowledge-base text embeddings.
type TextEmbeddingManager = EmbeddingManager[domain.TextEmbedding, string]

// ChatEmbeddingManager handles conversation chunk embeddings.
type ChatEmbeddingManager = EmbeddingManager[domain.ChatChunkEmbedding, domain.ChatTurn]

// NewTextEmbeddingManager creates an embedding manager for plain text
// sources producing TextEmbedding records.
func NewTextEmbeddingManager(
	store driven.EmbeddingStore[domain.TextEmbedding],
	inference driven.InferenceService,
	chunking domain.ChunkingConfig,
	model string,
) *TextEmbeddingManager {
	return &TextEmbeddingManager{
		store:     store,
		inference: inference,
		chunking:  chunking,
		model:     model,
		text:      func(s string) string { return s },
		build: func(chunk string, vector []float64, now time.Time, _ string) domain.TextEmbedding {
			return domain.TextEmbedding{
				Chunk:          chunk,
				Embedding:      vector,
				CreationDate:   now,
				LastAccessed:   now,
				EmbeddingModel: model,
			}
		},
	}
}

// NewChatEmbeddingManager creates an embedding manager for chat turns
// producing ChatChunkEmbedding records carrying the turn's
// conversation metadata.
func NewChatEmbeddingManager(
	store driven.EmbeddingStore[domain.ChatChunkEmbedding],
	inference driven.InferenceService,
	chunking domain.ChunkingConfig,
	model string,
) *ChatEmbeddingManager {
	return &ChatEmbeddingManager{
		store:     store,
		inference: inference,
		chunking:  chunking,
		model:     model,
		text:      func(t domain.ChatTurn) string { return t.Text },
		build: func(chunk string, vector []float64, now time.Time, turn domain.ChatTurn) domain.ChatChunkEmbedding {
			return domain.ChatChunkEmbedding{
				TextEmbedding: domain.TextEmbedding{
					Chunk:          chunk,
					Embedding:      vector,
					CreationDate:   now,
					LastAccessed:   now,
					EmbeddingModel: model,
				},
				ConversationID: turn.ConversationID,
				UserID:         turn.UserID,
				Role:           turn.Role,
				ReplyToChunkID: turn.ReplyToChunkID,
				Topic:          turn.Topic,
			}
		},
	}
}

// GenerateEmbeddings chunks the source text and generates one record
// per chunk through a single batch embedding call. The call is
// all-or-nothing: on failure no records are returned.
func (m *EmbeddingManager[R, S]) GenerateEmbeddings(ctx context.Context, src S) ([]R, error) {
	text := m.text(src)
	chunks := SplitText(text, m.chunking)
	if len(chunks) == 0 {
		return nil, nil
	}
	logger.Debug("Generating embeddings for %d chunk(s) with model %s", len(chunks), m.model)

	vectors, err := m.inference.Embed(ctx, m.model, chunks)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingGeneration, err)
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("%w: got %d vectors for %d chunks", domain.ErrEmbeddingGeneration, len(vectors), len(chunks))
	}

	now := time.Now()
	records := make([]R, len(chunks))
	for i := range chunks {
		records[i] = m.build(chunks[i], vectors[i], now, src)
	}
	return records, nil
}

// SaveEmbeddings persists records through the store's best-effort
// batch write. Returns false when the store reports failure.
func (m *EmbeddingManager[R, S]) SaveEmbeddings(ctx context.Context, records []R) bool {
	if len(records) == 0 {
		return true
	}
	return m.store.Add(ctx, records)
}

// FindSimilar returns up to limit stored records nearest to the query
// record's vector, model-filtered and ordered by descending cosine
// similarity.
func (m *EmbeddingManager[R, S]) FindSimilar(ctx context.Context, query R, limit int) []R {
	return m.store.FindNearest(ctx, query, limit)
}

// Store returns the backing embedding store. For tests.
func (m *EmbeddingManager[R, S]) Store() driven.EmbeddingStore[R] {
	return m.store
}

// Model returns the embedding model identity this manager generates with.
func (m *EmbeddingManager[R, S]) Model() string {
	return m.model
}
