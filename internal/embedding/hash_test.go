package embedding

import (
	"context"
	"reflect"
	"testing"

	"github.com/hyperjump/emnet/internal/vector"
)

func TestHashEmbedder_Deterministic(t *testing.T) {
	e := NewHashEmbedder(64)
	ctx := context.Background()
	a, _ := e.Embed(ctx, "economic sanctions")
	b, _ := e.Embed(ctx, "Economic sanctions.")
	if !reflect.DeepEqual(a, b) {
		t.Error("same words should embed identically")
	}
	if len(a) != 64 || e.Dimensions() != 64 {
		t.Errorf("dimension = %d", len(a))
	}
	if n := vector.L2Norm(a); n < 0.999 || n > 1.001 {
		t.Errorf("expected unit norm, got %f", n)
	}
}

func TestHashEmbedder_OverlapScoresHigher(t *testing.T) {
	e := NewHashEmbedder(256)
	vecs, err := e.EmbedBatch(context.Background(), []string{
		"trade sanctions on exports",
		"sanctions on trade",
		"volcanic eruption lava",
	})
	if err != nil {
		t.Fatal(err)
	}
	near := vector.CosineSimilarity(vecs[0], vecs[1])
	far := vector.CosineSimilarity(vecs[0], vecs[2])
	if near <= far {
		t.Errorf("overlapping texts should score higher: near=%f far=%f", near, far)
	}
}

func TestSimilarity(t *testing.T) {
	a := [][]float32{{1, 0}, {0, 1}}
	b := [][]float32{{1, 0}}
	got := Similarity(a, b)
	want := [][]float64{{1}, {0}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Similarity() = %v, want %v", got, want)
	}
}
