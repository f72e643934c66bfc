package sqlite

import (
	"context"
	"database/sql"
	"math"
	"sort"

	"github.com/esgdev/amaranth/internal/core/domain"
	"github.com/esgdev/amaranth/internal/core/ports/driven"
	"github.com/esgdev/amaranth/internal/logger"
)

// ==================== Text Embedding Store ====================

// textEmbeddingStore implements driven.EmbeddingStore for
// knowledge-base text embeddings. Per the port contract, failures are
// logged and surface as false or empty results, never as errors.
type textEmbeddingStore struct {
	store *Store
}

var _ driven.EmbeddingStore[domain.TextEmbedding] = (*textEmbeddingStore)(nil)

// Add persists records one insert at a time. The batch is
// best-effort: a failed insert is logged and the rest of the batch
// still goes in.
func (s *textEmbeddingStore) Add(ctx context.Context, records []domain.TextEmbedding) bool {
	ok := true
	for _, rec := range records {
		_, err := s.store.db.ExecContext(ctx, `
			INSERT INTO text_embeddings (chunk, embedding, embedding_model, creation_date, last_accessed)
			VALUES (?, ?, ?, ?, ?)
		`, rec.Chunk, float64SliceToBytes(rec.Embedding), rec.EmbeddingModel, rec.CreationDate, rec.LastAccessed)
		if err != nil {
			logger.Error("Inserting text embedding: %v", err)
			ok = false
		}
	}
	return ok
}

// GetByID returns the record with the given id, if present.
func (s *textEmbeddingStore) GetByID(ctx context.Context, id int64) (domain.TextEmbedding, bool) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, chunk, embedding, embedding_model, creation_date, last_accessed
		FROM text_embeddings WHERE id = ?
	`, id)

	rec, err := scanTextEmbedding(row.Scan)
	if err != nil {
		if err != sql.ErrNoRows {
			logger.Error("Reading text embedding %d: %v", id, err)
		}
		return domain.TextEmbedding{}, false
	}
	return rec, true
}

// GetAll returns every stored record.
func (s *textEmbeddingStore) GetAll(ctx context.Context) []domain.TextEmbedding {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, chunk, embedding, embedding_model, creation_date, last_accessed
		FROM text_embeddings
	`)
	if err != nil {
		logger.Error("Querying text embeddings: %v", err)
		return nil
	}
	defer rows.Close()

	var records []domain.TextEmbedding
	for rows.Next() {
		rec, err := scanTextEmbedding(rows.Scan)
		if err != nil {
			logger.Error("Scanning text embedding: %v", err)
			return nil
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		logger.Error("Iterating text embeddings: %v", err)
		return nil
	}
	return records
}

// Update replaces the stored fields for an existing id.
func (s *textEmbeddingStore) Update(ctx context.Context, record domain.TextEmbedding) bool {
	res, err := s.store.db.ExecContext(ctx, `
		UPDATE text_embeddings
		SET chunk = ?, embedding = ?, embedding_model = ?, last_accessed = ?
		WHERE id = ?
	`, record.Chunk, float64SliceToBytes(record.Embedding), record.EmbeddingModel, record.LastAccessed, record.ID)
	if err != nil {
		logger.Error("Updating text embedding %d: %v", record.ID, err)
		return false
	}
	n, err := res.RowsAffected()
	if err != nil {
		logger.Error("Updating text embedding %d: %v", record.ID, err)
		return false
	}
	return n > 0
}

// Delete removes the record with the given id.
func (s *textEmbeddingStore) Delete(ctx context.Context, id int64) bool {
	res, err := s.store.db.ExecContext(ctx, "DELETE FROM text_embeddings WHERE id = ?", id)
	if err != nil {
		logger.Error("Deleting text embedding %d: %v", id, err)
		return false
	}
	n, err := res.RowsAffected()
	if err != nil {
		logger.Error("Deleting text embedding %d: %v", id, err)
		return false
	}
	return n > 0
}

// FindNearest scans rows for the query's embedding model and ranks
// them by cosine similarity in Go. SQLite has no vector primitives,
// so the candidate set is pulled and scored here.
func (s *textEmbeddingStore) FindNearest(ctx context.Context, query domain.TextEmbedding, limit int) []domain.TextEmbedding {
	if limit <= 0 {
		return nil
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, chunk, embedding, embedding_model, creation_date, last_accessed
		FROM text_embeddings WHERE embedding_model = ?
	`, query.EmbeddingModel)
	if err != nil {
		logger.Error("Querying text embeddings for similarity: %v", err)
		return nil
	}
	defer rows.Close()

	var candidates []domain.TextEmbedding
	for rows.Next() {
		rec, err := scanTextEmbedding(rows.Scan)
		if err != nil {
			logger.Error("Scanning text embedding: %v", err)
			return nil
		}
		sim := domain.CosineSimilarity(query.Embedding, rec.Embedding)
		if math.IsNaN(sim) {
			continue
		}
		rec.Similarity = sim
		candidates = append(candidates, rec)
	}
	if err := rows.Err(); err != nil {
		logger.Error("Iterating text embeddings: %v", err)
		return nil
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Similarity > candidates[j].Similarity
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates
}

// scanTextEmbedding scans one text embedding row through the given
// scan function, which works for both *sql.Row and *sql.Rows.
func scanTextEmbedding(scan func(dest ...any) error) (domain.TextEmbedding, error) {
	var rec domain.TextEmbedding
	var blob []byte
	if err := scan(&rec.ID, &rec.Chunk, &blob, &rec.EmbeddingModel, &rec.CreationDate, &rec.LastAccessed); err != nil {
		return domain.TextEmbedding{}, err
	}
	rec.Embedding = bytesToFloat64Slice(blob)
	return rec, nil
}

// ==================== Chat Chunk Embedding Store ====================

// chatEmbeddingStore implements driven.EmbeddingStore for
// conversation chunk embeddings.
type chatEmbeddingStore struct {
	store *Store
}

var _ driven.EmbeddingStore[domain.ChatChunkEmbedding] = (*chatEmbeddingStore)(nil)

// Add persists records one insert at a time, best-effort.
func (s *chatEmbeddingStore) Add(ctx context.Context, records []domain.ChatChunkEmbedding) bool {
	ok := true
	for _, rec := range records {
		var replyTo any
		if rec.ReplyToChunkID != nil {
			replyTo = *rec.ReplyToChunkID
		}
		_, err := s.store.db.ExecContext(ctx, `
			INSERT INTO chat_chunk_embeddings
				(chunk, embedding, embedding_model, creation_date, last_accessed,
				 conversation_id, user_id, role, reply_to_chunk_id, topic)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, rec.Chunk, float64SliceToBytes(rec.Embedding), rec.EmbeddingModel,
			rec.CreationDate, rec.LastAccessed,
			rec.ConversationID, rec.UserID, string(rec.Role), replyTo, rec.Topic)
		if err != nil {
			logger.Error("Inserting chat chunk embedding: %v", err)
			ok = false
		}
	}
	return ok
}

// GetByID returns the record with the given id, if present.
func (s *chatEmbeddingStore) GetByID(ctx context.Context, id int64) (domain.ChatChunkEmbedding, bool) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, chunk, embedding, embedding_model, creation_date, last_accessed,
		       conversation_id, user_id, role, reply_to_chunk_id, topic
		FROM chat_chunk_embeddings WHERE id = ?
	`, id)

	rec, err := scanChatChunkEmbedding(row.Scan)
	if err != nil {
		if err != sql.ErrNoRows {
			logger.Error("Reading chat chunk embedding %d: %v", id, err)
		}
		return domain.ChatChunkEmbedding{}, false
	}
	return rec, true
}

// GetAll returns every stored record.
func (s *chatEmbeddingStore) GetAll(ctx context.Context) []domain.ChatChunkEmbedding {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, chunk, embedding, embedding_model, creation_date, last_accessed,
		       conversation_id, user_id, role, reply_to_chunk_id, topic
		FROM chat_chunk_embeddings
	`)
	if err != nil {
		logger.Error("Querying chat chunk embeddings: %v", err)
		return nil
	}
	defer rows.Close()

	var records []domain.ChatChunkEmbedding
	for rows.Next() {
		rec, err := scanChatChunkEmbedding(rows.Scan)
		if err != nil {
			logger.Error("Scanning chat chunk embedding: %v", err)
			return nil
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		logger.Error("Iterating chat chunk embeddings: %v", err)
		return nil
	}
	return records
}

// Update replaces the stored fields for an existing id.
func (s *chatEmbeddingStore) Update(ctx context.Context, record domain.ChatChunkEmbedding) bool {
	var replyTo any
	if record.ReplyToChunkID != nil {
		replyTo = *record.ReplyToChunkID
	}
	res, err := s.store.db.ExecContext(ctx, `
		UPDATE chat_chunk_embeddings
		SET chunk = ?, embedding = ?, embedding_model = ?, last_accessed = ?,
		    conversation_id = ?, user_id = ?, role = ?, reply_to_chunk_id = ?, topic = ?
		WHERE id = ?
	`, record.Chunk, float64SliceToBytes(record.Embedding), record.EmbeddingModel, record.LastAccessed,
		record.ConversationID, record.UserID, string(record.Role), replyTo, record.Topic, record.ID)
	if err != nil {
		logger.Error("Updating chat chunk embedding %d: %v", record.ID, err)
		return false
	}
	n, err := res.RowsAffected()
	if err != nil {
		logger.Error("Updating chat chunk embedding %d: %v", record.ID, err)
		return false
	}
	return n > 0
}

// Delete removes the record with the given id.
func (s *chatEmbeddingStore) Delete(ctx context.Context, id int64) bool {
	res, err := s.store.db.ExecContext(ctx, "DELETE FROM chat_chunk_embeddings WHERE id = ?", id)
	if err != nil {
		logger.Error("Deleting chat chunk embedding %d: %v", id, err)
		return false
	}
	n, err := res.RowsAffected()
	if err != nil {
		logger.Error("Deleting chat chunk embedding %d: %v", id, err)
		return false
	}
	return n > 0
}

// FindNearest scans rows for the query's embedding model and ranks
// them by cosine similarity in Go.
func (s *chatEmbeddingStore) FindNearest(ctx context.Context, query domain.ChatChunkEmbedding, limit int) []domain.ChatChunkEmbedding {
	if limit <= 0 {
		return nil
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, chunk, embedding, embedding_model, creation_date, last_accessed,
		       conversation_id, user_id, role, reply_to_chunk_id, topic
		FROM chat_chunk_embeddings WHERE embedding_model = ?
	`, query.EmbeddingModel)
	if err != nil {
		logger.Error("Querying chat chunk embeddings for similarity: %v", err)
		return nil
	}
	defer rows.Close()

	var candidates []domain.ChatChunkEmbedding
	for rows.Next() {
		rec, err := scanChatChunkEmbedding(rows.Scan)
		if err != nil {
			logger.Error("Scanning chat chunk embedding: %v", err)
			return nil
		}
		sim := domain.CosineSimilarity(query.Embedding, rec.Embedding)
		if math.IsNaN(sim) {
			continue
		}
		rec.Similarity = sim
		candidates = append(candidates, rec)
	}
	if err := rows.Err(); err != nil {
		logger.Error("Iterating chat chunk embeddings: %v", err)
		return nil
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Similarity > candidates[j].Similarity
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates
}

// scanChatChunkEmbedding scans one chat chunk row through the given
// scan function.
func scanChatChunkEmbedding(scan func(dest ...any) error) (domain.ChatChunkEmbedding, error) {
	var rec domain.ChatChunkEmbedding
	var blob []byte
	var role string
	var replyTo sql.NullInt64
	if err := scan(&rec.ID, &rec.Chunk, &blob, &rec.EmbeddingModel, &rec.CreationDate, &rec.LastAccessed,
		&rec.ConversationID, &rec.UserID, &role, &replyTo, &rec.Topic); err != nil {
		return domain.ChatChunkEmbedding{}, err
	}
	rec.Embedding = bytesToFloat64Slice(blob)
	rec.Role = domain.Role(role)
	if replyTo.Valid {
		rec.ReplyToChunkID = &replyTo.Int64
	}
	return rec, nil
}
