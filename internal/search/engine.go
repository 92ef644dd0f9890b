// Package search ranks corpus documents against a topic or another document.
package search

import (
	"context"
	"fmt"
	"time"

	"github.com/hyperjump/emnet/internal/config"
	"github.com/hyperjump/emnet/internal/corpus"
	"github.com/hyperjump/emnet/internal/embedding"
	"github.com/hyperjump/emnet/internal/errs"
	"github.com/hyperjump/emnet/internal/models"
	"github.com/hyperjump/emnet/internal/vector"
	"go.uber.org/zap"
)

// DefaultTopK is the number of results returned when no limit is configured.
const DefaultTopK = 5

// Source loads the persisted vector mapping.
type Source interface {
	Load() (*vector.Mapping, []string, error)
}

// Engine runs similarity search over the persisted document vectors.
type Engine struct {
	source   Source
	embedder embedding.Embedder
	root     string
	topK     int
	logger   *zap.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets a logger for query timing.
func WithLogger(l *zap.Logger) EngineOption {
	return func(e *Engine) { e.logger = l }
}

// NewEngine creates a search engine. root resolves display names in file mode.
func NewEngine(source Source, embedder embedding.Embedder, root string, cfg *config.SearchConfig, opts ...EngineOption) *Engine {
	topK := DefaultTopK
	if cfg != nil && cfg.TopK > 0 {
		topK = cfg.TopK
	}
	e := &Engine{
		source:   source,
		embedder: embedder,
		root:     root,
		topK:     topK,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Search ranks documents by cosine similarity to the query and returns the best topK.
// In file mode the query document itself is never returned; an unindexed name yields
// errs.ErrNotFound. A blank query yields errs.ErrInvalidInput.
func (e *Engine) Search(ctx context.Context, query *models.SearchQuery) (*models.SearchResponse, error) {
	startTime := time.Now()
	mode, err := ProcessQuery(query)
	if err != nil {
		return nil, err
	}

	m, _, err := e.source.Load()
	if err != nil {
		return nil, fmt.Errorf("load vectors: %w", err)
	}

	var (
		queryVec []float32
		exclude  []string
	)
	switch mode {
	case ModeFile:
		id := corpus.ID(e.root, query.Query)
		vec, ok := m.Get(id)
		if !ok {
			return nil, notFound(query.Query, m.IDs())
		}
		queryVec = vec
		exclude = append(exclude, id)
	default:
		queryVec, err = e.embedder.Embed(ctx, query.Query)
		if err != nil {
			return nil, fmt.Errorf("embedding failed: %w", err)
		}
		if d := m.Dimensions(); m.Len() > 0 && len(queryVec) != d {
			return nil, fmt.Errorf("%w: index vectors have %d dimensions but the model produces %d; delete the index directory and rebuild it",
				errs.ErrStorageRead, d, len(queryVec))
		}
	}

	ids, vectors := m.Entries(exclude...)
	sim := embedding.Similarity(vectors, [][]float32{queryVec})
	scores := make([]float64, len(sim))
	for i, row := range sim {
		scores[i] = row[0]
	}
	ranked := vector.TopK(ids, scores, e.topK)

	response := &models.SearchResponse{
		Query:   query.Query,
		Mode:    mode.String(),
		Results: make([]*models.SearchResult, 0, len(ranked)),
		Total:   len(ranked),
	}
	for i, r := range ranked {
		name := corpus.DisplayName(r.ID)
		response.Results = append(response.Results, &models.SearchResult{
			ID:    r.ID,
			Name:  name,
			Title: corpus.Title(name),
			Score: r.Score,
			Rank:  i + 1,
		})
	}
	response.QueryTime = time.Since(startTime).Milliseconds()
	e.logger.Debug("search complete",
		zap.String("mode", response.Mode),
		zap.Int("candidates", len(ids)),
		zap.Int("results", len(ranked)),
		zap.Duration("elapsed", time.Since(startTime)))
	return response, nil
}
