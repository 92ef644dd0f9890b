// Package app wires the corpus, index store, embedder and search engine into the two
// entry points used by every front end: RunQuery and EnsureIndexCurrent.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/hyperjump/emnet/internal/config"
	"github.com/hyperjump/emnet/internal/corpus"
	"github.com/hyperjump/emnet/internal/embedding"
	"github.com/hyperjump/emnet/internal/errs"
	"github.com/hyperjump/emnet/internal/indexer"
	"github.com/hyperjump/emnet/internal/models"
	"github.com/hyperjump/emnet/internal/search"
	"github.com/hyperjump/emnet/internal/storage"
	"github.com/hyperjump/emnet/internal/syncer"
	"github.com/hyperjump/emnet/pkg/utils"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// App holds the initialized services for one corpus.
type App struct {
	cfg     *config.Config
	Store   *storage.FileStore
	Loader  *embedding.Loader
	Indexer *indexer.Indexer
	Engine  *search.Engine
	confirm syncer.Confirmer
	factory embedding.Factory
	logger  *zap.Logger
	// syncMu serializes synchronization runs (startup, watcher, CLI).
	syncMu sync.Mutex
}

// Option configures an App.
type Option func(*App)

// WithLogger sets the logger shared by all services.
func WithLogger(l *zap.Logger) Option {
	return func(a *App) { a.logger = utils.OrNop(l) }
}

// WithConfirmer sets how EnsureIndexCurrent asks before embedding new documents.
func WithConfirmer(c syncer.Confirmer) Option {
	return func(a *App) { a.confirm = c }
}

// WithFactory replaces the embedding model constructor chosen from the config.
func WithFactory(f embedding.Factory) Option {
	return func(a *App) { a.factory = f }
}

// New creates an App for cfg. The embedding model is not loaded until Start or the
// first embedding call.
func New(cfg *config.Config, opts ...Option) *App {
	a := &App{
		cfg:     cfg,
		confirm: syncer.AutoConfirmer(false),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.factory == nil {
		a.factory = embedding.FactoryFor(cfg.Embedding)
	}
	a.Loader = embedding.NewLoader(a.factory,
		embedding.WithLogger(a.logger),
		embedding.WithDimensions(cfg.Embedding.Dimensions))
	a.Store = storage.NewFileStore(cfg.Corpus.StorePath(), storage.WithLogger(a.logger))
	a.Indexer = indexer.NewIndexer(a.Store, a.Loader, &cfg.Indexer, indexer.WithLogger(a.logger))
	a.Engine = search.NewEngine(a.Store, a.Loader, cfg.Corpus.Root, &cfg.Search, search.WithLogger(a.logger))
	return a
}

// Config returns the configuration the App was built with.
func (a *App) Config() *config.Config {
	return a.cfg
}

// Start synchronizes the index and loads the embedding model concurrently and returns
// once both are done. The first error cancels the other task.
func (a *App) Start(ctx context.Context) (syncer.Outcome, error) {
	var outcome syncer.Outcome
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		outcome, err = a.EnsureIndexCurrent(gctx)
		return err
	})
	g.Go(func() error {
		_, err := a.Loader.Load(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return outcome, err
	}
	a.logger.Info("startup complete", zap.Stringer("index", outcome))
	return outcome, nil
}

// EnsureIndexCurrent brings the persisted index in line with the corpus, asking the
// configured confirmer before embedding new documents.
func (a *App) EnsureIndexCurrent(ctx context.Context) (syncer.Outcome, error) {
	return a.Sync(ctx, a.confirm)
}

// Sync is EnsureIndexCurrent with an explicit confirmer.
func (a *App) Sync(ctx context.Context, confirm syncer.Confirmer) (syncer.Outcome, error) {
	a.syncMu.Lock()
	defer a.syncMu.Unlock()
	ids, err := corpus.List(a.cfg.Corpus.Root, a.cfg.Corpus.Pattern)
	if err != nil {
		return 0, err
	}
	s := syncer.New(a.Indexer, confirm, syncer.WithLogger(a.logger))
	return s.Run(ctx, ids)
}

// Search runs a query and returns the full response.
func (a *App) Search(ctx context.Context, query *models.SearchQuery) (*models.SearchResponse, error) {
	resp, err := a.Engine.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	a.logger.Info("query",
		zap.String("mode", resp.Mode),
		zap.String("query", query.Query),
		zap.Strings("results", resp.Names()))
	return resp, nil
}

// RunQuery searches "By topic" or "By file" and returns display names, best first.
func (a *App) RunQuery(ctx context.Context, mode, text string) ([]string, error) {
	resp, err := a.Search(ctx, &models.SearchQuery{Mode: mode, Query: text})
	if err != nil {
		return nil, err
	}
	return resp.Names(), nil
}

// Document returns a corpus file by display name.
func (a *App) Document(name string) (*corpus.Document, error) {
	return corpus.Open(a.cfg.Corpus.Root, name)
}

// Status summarizes the corpus and the persisted index.
type Status struct {
	CorpusRoot       string `json:"corpus_root"`
	StorePath        string `json:"store_path"`
	CorpusDocuments  int    `json:"corpus_documents"`
	IndexedDocuments int    `json:"indexed_documents"`
	NewDocuments     int    `json:"new_documents"`
	StaleDocuments   int    `json:"stale_documents"`
	IndexExists      bool   `json:"index_exists"`
	DiskUsageBytes   int64  `json:"disk_usage_bytes"`
	Provider         string `json:"provider"`
	ModelPath        string `json:"model_path,omitempty"`
	Dimensions       int    `json:"dimensions"`
	ModelLoaded      bool   `json:"model_loaded"`
}

// Status reports corpus and index counts without modifying anything.
func (a *App) Status() (*Status, error) {
	ids, err := corpus.List(a.cfg.Corpus.Root, a.cfg.Corpus.Pattern)
	if err != nil {
		return nil, err
	}
	st := &Status{
		CorpusRoot:      a.cfg.Corpus.Root,
		StorePath:       a.Store.Dir(),
		CorpusDocuments: len(ids),
		Provider:        a.cfg.Embedding.Provider,
		Dimensions:      a.cfg.Embedding.Dimensions,
		ModelLoaded:     a.Loader.Loaded(),
	}
	if a.cfg.Embedding.Provider == config.ProviderONNX {
		st.ModelPath = a.cfg.Embedding.ModelPath
	}
	persisted, err := a.Store.LoadIndex()
	switch {
	case errors.Is(err, errs.ErrNotExist):
		st.NewDocuments = len(ids)
	case err != nil:
		return nil, err
	default:
		added, removed := syncer.Diff(persisted, ids)
		st.IndexExists = true
		st.IndexedDocuments = len(persisted)
		st.NewDocuments = len(added)
		st.StaleDocuments = len(removed)
	}
	if st.DiskUsageBytes, err = a.Store.DiskUsage(); err != nil {
		return nil, fmt.Errorf("disk usage: %w", err)
	}
	return st, nil
}

// Close releases the embedding model.
func (a *App) Close() error {
	return a.Loader.Close()
}
