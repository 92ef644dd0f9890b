package embedding

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingEmbedder struct {
	HashEmbedder
	texts []string
}

func (c *countingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	c.texts = append(c.texts, text)
	return c.HashEmbedder.Embed(ctx, text)
}

func (c *countingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	c.texts = append(c.texts, texts...)
	return c.HashEmbedder.EmbedBatch(ctx, texts)
}

func TestCachedEmbedder_Embed(t *testing.T) {
	inner := &countingEmbedder{HashEmbedder: *NewHashEmbedder(8)}
	c, err := NewCachedEmbedder(inner, 2)
	require.NoError(t, err)
	ctx := context.Background()

	first, err := c.Embed(ctx, "a")
	require.NoError(t, err)
	again, err := c.Embed(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, first, again)
	assert.Equal(t, []string{"a"}, inner.texts)

	_, _ = c.Embed(ctx, "b")
	_, _ = c.Embed(ctx, "c") // evicts a
	_, _ = c.Embed(ctx, "a")
	assert.Equal(t, []string{"a", "b", "c", "a"}, inner.texts)
	assert.Equal(t, 2, c.Len())
}

func TestCachedEmbedder_EmbedBatchOnlySendsMisses(t *testing.T) {
	inner := &countingEmbedder{HashEmbedder: *NewHashEmbedder(8)}
	c, err := NewCachedEmbedder(inner, 10)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = c.Embed(ctx, "x")
	require.NoError(t, err)
	vecs, err := c.EmbedBatch(ctx, []string{"x", "y", "z"})
	require.NoError(t, err)
	require.Len(t, vecs, 3)
	assert.Equal(t, []string{"x", "y", "z"}, inner.texts)

	want, _ := NewHashEmbedder(8).Embed(ctx, "y")
	assert.Equal(t, want, vecs[1])
	assert.Equal(t, 8, c.Dimensions())
	assert.NoError(t, c.Close())
}
