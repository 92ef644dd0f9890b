package embedding

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Factory constructs the underlying model. It is called at most once per Loader.
type Factory func(ctx context.Context) (Embedder, error)

// Loader is the process-wide embedding capability. It builds its model lazily on the
// first Load or Embed call and never again; later calls reuse the model or the error.
// Loader itself implements Embedder so it can be injected before the model is ready.
type Loader struct {
	factory    Factory
	dimensions int
	logger     *zap.Logger

	once   sync.Once
	loaded atomic.Bool
	model  Embedder
	err    error
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithLogger sets a logger for load timing.
func WithLogger(l *zap.Logger) LoaderOption {
	return func(ld *Loader) { ld.logger = l }
}

// WithDimensions sets the dimension reported before the model is loaded.
func WithDimensions(d int) LoaderOption {
	return func(ld *Loader) { ld.dimensions = d }
}

// NewLoader returns a Loader around factory. Nothing is loaded until first use.
func NewLoader(factory Factory, opts ...LoaderOption) *Loader {
	l := &Loader{factory: factory, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load builds the model on the first call and returns it. Concurrent callers block
// until that single build finishes. ctx is only consulted by the first caller.
func (l *Loader) Load(ctx context.Context) (Embedder, error) {
	l.once.Do(func() {
		start := time.Now()
		l.logger.Info("loading embedding model")
		l.model, l.err = l.factory(ctx)
		if l.err != nil {
			l.logger.Error("embedding model load failed", zap.Error(l.err))
			return
		}
		l.loaded.Store(true)
		l.logger.Info("embedding model loaded",
			zap.Int("dimensions", l.model.Dimensions()),
			zap.Duration("elapsed", time.Since(start)))
	})
	return l.model, l.err
}

// Loaded reports whether the model has been built successfully.
func (l *Loader) Loaded() bool {
	return l.loaded.Load()
}

// Embed loads the model if needed and embeds text.
func (l *Loader) Embed(ctx context.Context, text string) ([]float32, error) {
	m, err := l.Load(ctx)
	if err != nil {
		return nil, err
	}
	return m.Embed(ctx, text)
}

// EmbedBatch loads the model if needed and embeds texts.
func (l *Loader) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	m, err := l.Load(ctx)
	if err != nil {
		return nil, err
	}
	return m.EmbedBatch(ctx, texts)
}

// Dimensions returns the model dimension, or the configured hint before loading.
func (l *Loader) Dimensions() int {
	if l.Loaded() {
		return l.model.Dimensions()
	}
	return l.dimensions
}

// Close releases the model if it was loaded.
func (l *Loader) Close() error {
	if !l.Loaded() {
		return nil
	}
	return l.model.Close()
}
