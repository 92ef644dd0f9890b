// Package server provides the HTTP API for emnet.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hyperjump/emnet/internal/app"
	"github.com/hyperjump/emnet/internal/config"
	"github.com/hyperjump/emnet/internal/corpus"
	"github.com/hyperjump/emnet/internal/models"
	"github.com/hyperjump/emnet/pkg/utils"
	"go.uber.org/zap"
)

// Service is the application surface the API exposes.
type Service interface {
	Search(ctx context.Context, query *models.SearchQuery) (*models.SearchResponse, error)
	Document(name string) (*corpus.Document, error)
	Status() (*app.Status, error)
}

// Server is the HTTP server for the emnet API.
type Server struct {
	service Service
	config  *config.ServerConfig
	logger  *zap.Logger
	server  *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(service Service, cfg *config.ServerConfig, logger *zap.Logger) *Server {
	return &Server{
		service: service,
		config:  cfg,
		logger:  utils.OrNop(logger),
	}
}

// Handler returns the API routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Get("/api/v1/search", s.handleSearch)
	r.Post("/api/v1/search", s.handleSearchBody)
	r.Get("/api/v1/documents/{name}", s.handleGetDocument)
	r.Get("/api/v1/status", s.handleStatus)
	r.Get("/health", s.handleHealth)
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
