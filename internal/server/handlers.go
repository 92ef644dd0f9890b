package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hyperjump/emnet/internal/errs"
	"github.com/hyperjump/emnet/internal/models"
	"go.uber.org/zap"
)

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := models.SearchQuery{
		Mode:  r.URL.Query().Get("mode"),
		Query: r.URL.Query().Get("q"),
	}
	s.search(w, r, &query)
}

func (s *Server) handleSearchBody(w http.ResponseWriter, r *http.Request) {
	var query models.SearchQuery
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.search(w, r, &query)
}

func (s *Server) search(w http.ResponseWriter, r *http.Request, query *models.SearchQuery) {
	s.logger.Debug("search request",
		zap.String("request_id", RequestIDFrom(r.Context())),
		zap.String("mode", query.Mode),
		zap.String("query", query.Query))
	response, err := s.service.Search(r.Context(), query)
	if err != nil {
		s.respondErr(w, r, "search failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, response)
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	doc, err := s.service.Document(name)
	if err != nil {
		s.respondErr(w, r, "get document failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, models.Document{Name: doc.Name, Title: doc.Title, Content: doc.Content})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st, err := s.service.Status()
	if err != nil {
		s.respondErr(w, r, "status failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, st)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// respondErr maps sentinel errors to status codes: not found 404, invalid input 400,
// anything else 500.
func (s *Server) respondErr(w http.ResponseWriter, r *http.Request, msg string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, errs.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, errs.ErrInvalidInput):
		status = http.StatusBadRequest
	default:
		s.logger.Error(msg, zap.String("request_id", RequestIDFrom(r.Context())), zap.Error(err))
	}
	s.respondError(w, status, err.Error())
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
