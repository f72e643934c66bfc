package services

import "github.com/esgdev/amaranth/internal/core/domain"

// SplitText splits text into overlapping fixed-size windows. Starting
// at offset 0 it emits text[offset:offset+chunkSize] (clamped to the
// text length), then advances by the config stride until the offset
// passes the end. Empty text yields no chunks; any non-empty text
// yields at least one.
func SplitText(text string, cfg domain.ChunkingConfig) []string {
	if text == "" {
		return nil
	}

	total := len(text)
	chunks := make([]string, 0, total/cfg.Stride()+1)

	for offset := 0; offset < total; offset += cfg.Stride() {
		end := offset + cfg.ChunkSize
		if end > total {
			end = total
		}
		chunks = append(chunks, text[offset:end])
	}

	return chunks
}
