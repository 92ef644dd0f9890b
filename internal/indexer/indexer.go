package indexer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hyperjump/emnet/internal/config"
	"github.com/hyperjump/emnet/internal/corpus"
	"github.com/hyperjump/emnet/internal/embedding"
	"github.com/hyperjump/emnet/internal/errs"
	"github.com/hyperjump/emnet/internal/vector"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
)

// Store persists the vector mapping and the index as one unit.
type Store interface {
	Exists() (bool, error)
	Load() (*vector.Mapping, []string, error)
	LoadIndex() ([]string, error)
	Save(m *vector.Mapping, index []string) error
}

// Indexer embeds corpus documents and maintains the persisted index.
type Indexer struct {
	store    Store
	embedder embedding.Embedder
	chunker  *Chunker
	workers  int
	logger   *zap.Logger
}

// IndexerOption configures an Indexer.
type IndexerOption func(*Indexer)

// WithLogger sets a logger for create/extend progress.
func WithLogger(l *zap.Logger) IndexerOption {
	return func(idx *Indexer) { idx.logger = l }
}

// NewIndexer creates an indexer with the given dependencies.
func NewIndexer(store Store, embedder embedding.Embedder, cfg *config.IndexerConfig, opts ...IndexerOption) *Indexer {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	idx := &Indexer{
		store:    store,
		embedder: embedder,
		chunker:  NewChunker(cfg.ChunkSize),
		workers:  workers,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(idx)
	}
	return idx
}

// Exists reports whether an index has been persisted.
func (idx *Indexer) Exists() (bool, error) {
	return idx.store.Exists()
}

// Load returns the persisted vector mapping and index.
func (idx *Indexer) Load() (*vector.Mapping, []string, error) {
	return idx.store.Load()
}

// LoadIndex returns only the persisted index.
func (idx *Indexer) LoadIndex() ([]string, error) {
	return idx.store.LoadIndex()
}

// Create embeds every document in ids and writes a fresh mapping and index.
func (idx *Indexer) Create(ctx context.Context, ids []string) error {
	m, err := idx.embedDocuments(ctx, ids)
	if err != nil {
		return err
	}
	if err := idx.store.Save(m, ids); err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	idx.logger.Info("index created", zap.Int("documents", m.Len()))
	return nil
}

// Extend embeds only newIDs, merges them into the persisted mapping (new vectors win)
// and stores fullIndex as the index. fullIndex must name exactly the merged mapping's
// keys; otherwise nothing is written and errs.ErrInvalidInput is returned.
func (idx *Indexer) Extend(ctx context.Context, newIDs, fullIndex []string) error {
	current, _, err := idx.store.Load()
	if err != nil {
		return fmt.Errorf("extend index: %w", err)
	}
	added, err := idx.embedDocuments(ctx, newIDs)
	if err != nil {
		return err
	}
	if err := current.Merge(added); err != nil {
		return fmt.Errorf("extend index: %w", err)
	}
	if !sameSet(current.IDs(), fullIndex) {
		return fmt.Errorf("%w: index of %d ids does not match %d stored vectors",
			errs.ErrInvalidInput, len(fullIndex), current.Len())
	}
	if err := idx.store.Save(current, fullIndex); err != nil {
		return fmt.Errorf("extend index: %w", err)
	}
	idx.logger.Info("index extended", zap.Int("added", added.Len()), zap.Int("documents", current.Len()))
	return nil
}

// EmbedDocument reads the file at path, embeds each chunk and returns their mean.
// A document without tokens is rejected with errs.ErrInvalidInput.
func (idx *Indexer) EmbedDocument(ctx context.Context, path string) ([]float32, error) {
	text, err := corpus.ReadText(path)
	if err != nil {
		return nil, err
	}
	chunks := idx.chunker.Chunk(text)
	if len(chunks) == 0 {
		return nil, &EmptyDocumentError{Path: path}
	}
	vectors, err := idx.embedder.EmbedBatch(ctx, chunks)
	if err != nil {
		return nil, fmt.Errorf("embed %s: %w", path, err)
	}
	pooled, err := vector.Mean(vectors)
	if err != nil {
		return nil, fmt.Errorf("pool %s: %w", path, err)
	}
	return pooled, nil
}

// embedDocuments embeds ids on a bounded worker pool. The mapping follows the order of ids.
func (idx *Indexer) embedDocuments(ctx context.Context, ids []string) (*vector.Mapping, error) {
	start := time.Now()
	results := make([][]float32, len(ids))
	failures := make([]error, len(ids))

	pool, err := ants.NewPool(idx.workers)
	if err != nil {
		return nil, fmt.Errorf("create embedding pool: %w", err)
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for i, id := range ids {
		i, id := i, id
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			if err := ctx.Err(); err != nil {
				failures[i] = err
				return
			}
			results[i], failures[i] = idx.EmbedDocument(ctx, id)
			if failures[i] == nil {
				idx.logger.Debug("document embedded", zap.String("id", id))
			}
		})
		if submitErr != nil {
			wg.Done()
			failures[i] = fmt.Errorf("submit %s: %w", id, submitErr)
		}
	}
	wg.Wait()

	if err := errors.Join(failures...); err != nil {
		return nil, err
	}
	m := vector.NewMapping(0)
	for i, id := range ids {
		if err := m.Set(id, results[i]); err != nil {
			return nil, err
		}
	}
	idx.logger.Info("documents embedded",
		zap.Int("documents", len(ids)),
		zap.Int("workers", idx.workers),
		zap.Duration("elapsed", time.Since(start)))
	return m, nil
}

func sameSet(a, b []string) bool {
	set := make(map[string]struct{}, len(a))
	for _, s := range a {
		set[s] = struct{}{}
	}
	seen := make(map[string]struct{}, len(b))
	for _, s := range b {
		if _, ok := set[s]; !ok {
			return false
		}
		seen[s] = struct{}{}
	}
	return len(seen) == len(set)
}
