package embedding

import (
	"context"
	"testing"

	"github.com/hyperjump/emnet/internal/config"
)

func TestNew_HashProvider(t *testing.T) {
	e, err := New(config.EmbeddingConfig{Provider: config.ProviderHash, Dimensions: 16, CacheSize: 4})
	if err != nil {
		t.Fatal(err)
	}
	defer e.Close()
	if _, ok := e.(*CachedEmbedder); !ok {
		t.Errorf("expected cached embedder, got %T", e)
	}
	if e.Dimensions() != 16 {
		t.Errorf("Dimensions() = %d", e.Dimensions())
	}
}

func TestNew_UnknownProvider(t *testing.T) {
	if _, err := New(config.EmbeddingConfig{Provider: "remote"}); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestNew_ONNXMissingModel(t *testing.T) {
	_, err := New(config.EmbeddingConfig{
		Provider:   config.ProviderONNX,
		ModelPath:  "/nonexistent/model.onnx",
		Dimensions: 384,
		MaxTokens:  16,
	})
	if err == nil {
		t.Error("expected error for missing model")
	}
}

func TestFactoryFor_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := FactoryFor(config.EmbeddingConfig{Provider: config.ProviderHash})(ctx); err == nil {
		t.Error("expected context error")
	}
}
