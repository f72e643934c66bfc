package domain

import "time"

// TextEmbedding is a persisted embedding of one text chunk.
// It is the canonical record for knowledge-base content.
type TextEmbedding struct {
	// ID is assigned by the store on insert.
	ID int64

	// Chunk is the text this embedding was generated from.
	Chunk string

	// Embedding is the vector representation of the chunk.
	// Its length is fixed for a given embedding model.
	Embedding []float64

	// CreationDate is when the record was first persisted.
	CreationDate time.Time

	// LastAccessed is when the record was last read or updated.
	LastAccessed time.Time

	// EmbeddingModel identifies the model that produced the vector.
	// Similarity queries never mix vectors from different models.
	EmbeddingModel string

	// Similarity is a transient query-result annotation.
	// It is populated by FindNearest and never stored.
	Similarity float64
}

// RecordID returns the store-assigned identifier.
func (e TextEmbedding) RecordID() int64 { return e.ID }

// Vector returns the embedding vector.
func (e TextEmbedding) Vector() []float64 { return e.Embedding }

// ModelID returns the embedding model identity.
func (e TextEmbedding) ModelID() string { return e.EmbeddingModel }

// ChatChunkEmbedding is a TextEmbedding extended with conversation
// metadata. It is the persisted form of one chunk of a chat turn.
type ChatChunkEmbedding struct {
	TextEmbedding

	// ConversationID groups chunks belonging to one conversation.
	ConversationID string

	// UserID identifies the author of the originating turn.
	UserID string

	// Role is the originating turn's role (user or model).
	Role Role

	// ReplyToChunkID is a weak back-reference to the chunk this turn
	// replied to. Nil when the turn opened the exchange. No ownership
	// is implied; deleting the referent does not cascade.
	ReplyToChunkID *int64

	// Topic is the classified topic label of the originating turn.
	Topic string
}

// VectorRecord is the capability an embedding store needs from a
// record: identity, vector, and model filter key. Both TextEmbedding
// and ChatChunkEmbedding satisfy it.
type VectorRecord interface {
	RecordID() int64
	Vector() []float64
	ModelID() string
}

// Role identifies the author of a chat turn.
type Role string

// Chat turn roles.
const (
	RoleUser   Role = "user"
	RoleModel  Role = "model"
	RoleSystem Role = "system"
)

// ChatTurn is one in-memory conversation turn. Turns are never
// persisted directly; they are the source from which chat chunk
// embeddings are derived.
type ChatTurn struct {
	// Text is the message content.
	Text string

	// ConversationID groups turns belonging to one conversation.
	ConversationID string

	// UserID identifies the author.
	UserID string

	// Role is user for human turns, model for replies.
	Role Role

	// Topic is the classified topic, when known.
	Topic string

	// ReplyToChunkID back-references the chunk this turn replied to.
	ReplyToChunkID *int64

	// CreatedAt is when the turn was produced.
	CreatedAt time.Time
}
