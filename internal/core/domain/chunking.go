package domain

import "fmt"

// ChunkingConfig controls how source text is split into overlapping
// windows before embedding generation.
type ChunkingConfig struct {
	// ChunkSize is the window length in bytes.
	ChunkSize int

	// Overlap is how many bytes consecutive windows share.
	Overlap int
}

// NewChunkingConfig validates and returns a chunking configuration.
// ChunkSize must be strictly greater than Overlap, and Overlap must
// not be negative, so the window stride is always positive.
func NewChunkingConfig(chunkSize, overlap int) (ChunkingConfig, error) {
	if overlap < 0 {
		return ChunkingConfig{}, fmt.Errorf("%w: overlap %d must not be negative", ErrInvalidInput, overlap)
	}
	if chunkSize <= overlap {
		return ChunkingConfig{}, fmt.Errorf("%w: chunk size %d must be greater than overlap %d", ErrInvalidInput, chunkSize, overlap)
	}
	return ChunkingConfig{ChunkSize: chunkSize, Overlap: overlap}, nil
}

// Stride is the distance between the starts of consecutive windows.
func (c ChunkingConfig) Stride() int {
	return c.ChunkSize - c.Overlap
}
