// Package sqlite provides a unified SQLite-based implementation of driven port interfaces.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It implements multiple store interfaces
// through a single database connection:
//
//   - EmbeddingStore[TextEmbedding]: knowledge-base embedding persistence
//   - EmbeddingStore[ChatChunkEmbedding]: conversation chunk persistence
//   - SettingsStore: model selection and system prompt persistence
//
// Embedding vectors are stored as little-endian float64 BLOBs. SQLite has no
// native vector search, so nearest-neighbour queries pull the model-filtered
// candidate rows and score them with cosine similarity in Go.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.amaranth/data/amaranth.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
