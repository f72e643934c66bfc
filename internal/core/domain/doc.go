// Package domain contains the core business entities for the
// retrieval-augmented chat client: embedding records, conversation
// turns, chunking configuration, topic vocabulary, and the vector
// similarity metrics used for ranking.
package domain
