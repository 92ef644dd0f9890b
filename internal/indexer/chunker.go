// Package indexer builds, extends and loads the persisted document index:
// each document is chunked, embedded chunk by chunk and mean-pooled into one vector.
package indexer

import (
	"strings"

	"github.com/hyperjump/emnet/internal/corpus"
)

// DefaultChunkSize is the number of tokens per chunk.
const DefaultChunkSize = 512

// Split groups tokens into consecutive chunks of exactly size tokens joined by a single
// space. A shorter final chunk holds the remainder. It returns nil for no tokens.
func Split(tokens []string, size int) []string {
	if len(tokens) == 0 {
		return nil
	}
	if size <= 0 {
		size = DefaultChunkSize
	}
	chunks := make([]string, 0, (len(tokens)+size-1)/size)
	for start := 0; start < len(tokens); start += size {
		end := start + size
		if end > len(tokens) {
			end = len(tokens)
		}
		chunks = append(chunks, strings.Join(tokens[start:end], " "))
	}
	return chunks
}

// Chunker splits document text into non-overlapping whitespace-token chunks.
type Chunker struct {
	chunkSize int
}

// NewChunker creates a chunker with the given size in tokens.
func NewChunker(chunkSize int) *Chunker {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Chunker{chunkSize: chunkSize}
}

// Chunk splits text on whitespace and groups the tokens.
func (c *Chunker) Chunk(text string) []string {
	return Split(corpus.Tokens(text), c.chunkSize)
}
