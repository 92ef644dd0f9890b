// Package embedding provides text embedding models, the once-only model loader and caching.
package embedding

import (
	"context"
	"errors"

	"github.com/hyperjump/emnet/internal/vector"
)

var errEmbedderClosed = errors.New("embedder is closed")

// Embedder produces vector embeddings for text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	// EmbedBatch returns one vector per text, in order, all of the same dimension.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Close() error
}

// Similarity returns the pairwise cosine similarity matrix of a and b:
// out[i][j] is the similarity of a[i] and b[j].
func Similarity(a, b [][]float32) [][]float64 {
	out := make([][]float64, len(a))
	for i, va := range a {
		row := make([]float64, len(b))
		for j, vb := range b {
			row[j] = vector.CosineSimilarity(va, vb)
		}
		out[i] = row
	}
	return out
}
