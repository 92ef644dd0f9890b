package embedding

import (
	"context"
	"fmt"

	"github.com/hyperjump/emnet/internal/config"
)

// New builds the configured model and wraps it in an LRU cache.
func New(cfg config.EmbeddingConfig) (Embedder, error) {
	var model Embedder
	switch cfg.Provider {
	case config.ProviderONNX, "":
		m, err := NewONNXEmbedder(cfg.ModelPath, cfg.Vocab(), cfg.Dimensions, cfg.MaxTokens)
		if err != nil {
			return nil, err
		}
		model = m
	case config.ProviderHash:
		model = NewHashEmbedder(cfg.Dimensions)
	default:
		return nil, fmt.Errorf("unknown embedding provider %q (want %q or %q)",
			cfg.Provider, config.ProviderONNX, config.ProviderHash)
	}
	cached, err := NewCachedEmbedder(model, cfg.CacheSize)
	if err != nil {
		_ = model.Close()
		return nil, err
	}
	return cached, nil
}

// FactoryFor returns a Loader factory that builds the configured model.
func FactoryFor(cfg config.EmbeddingConfig) Factory {
	return func(ctx context.Context) (Embedder, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return New(cfg)
	}
}
