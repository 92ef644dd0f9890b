// Package embeddingtest provides embedding stubs for tests.
package embeddingtest

import (
	"context"
	"sync/atomic"

	"github.com/hyperjump/emnet/internal/embedding"
)

// ConceptEmbedder maps words to concept axes through a lexicon, so synonyms embed
// close together ("cat" and "feline" share an axis). Unknown words contribute nothing.
type ConceptEmbedder struct {
	lexicon    map[string]int
	dimensions int
	calls      atomic.Int64
}

// NewConceptEmbedder builds an embedder from groups of synonyms; group i becomes axis i.
func NewConceptEmbedder(groups ...[]string) *ConceptEmbedder {
	lex := make(map[string]int)
	for axis, words := range groups {
		for _, w := range words {
			lex[w] = axis
		}
	}
	dims := len(groups)
	if dims == 0 {
		dims = 1
	}
	return &ConceptEmbedder{lexicon: lex, dimensions: dims}
}

// Animals returns the lexicon used by the cat/dog/airplane scenarios.
func Animals() *ConceptEmbedder {
	return NewConceptEmbedder(
		[]string{"cat", "cats", "feline", "kitten"},
		[]string{"dog", "dogs", "canine", "puppy"},
		[]string{"airplane", "jet", "aircraft", "plane"},
	)
}

// Embed counts lexicon hits per axis.
func (e *ConceptEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	e.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	vec := make([]float32, e.dimensions)
	for _, w := range embedding.NormalizeWords(text) {
		if axis, ok := e.lexicon[w]; ok {
			vec[axis]++
		}
	}
	return vec, nil
}

// EmbedBatch calls Embed for each text.
func (e *ConceptEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := e.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Dimensions returns the number of concept axes.
func (e *ConceptEmbedder) Dimensions() int { return e.dimensions }

// Close is a no-op.
func (e *ConceptEmbedder) Close() error { return nil }

// Calls returns how many texts have been embedded.
func (e *ConceptEmbedder) Calls() int64 { return e.calls.Load() }
