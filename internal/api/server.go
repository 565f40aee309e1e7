// Package api exposes the template service over a RESTful HTTP interface.
//
// Endpoints:
//   - POST   /api/templates          create a template
//   - GET    /api/templates          list templates (limit, offset, username)
//   - GET    /api/templates/{title}  fetch one template
//   - PUT    /api/templates/{title}  partial update
//   - DELETE /api/templates/{title}  delete
//   - GET    /api/health             liveness probe
//
// Error kinds from the core map onto status codes: validation 422, not
// found 404, already exists 409, everything else 500.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/NewAITees/ai-process-blueprint/internal/errors"
	"github.com/NewAITees/ai-process-blueprint/internal/models"
	"github.com/NewAITees/ai-process-blueprint/internal/service"
)

// Server serves the template HTTP API.
type Server struct {
	service      *service.Service
	errorHandler *apperrors.HTTPErrorHandler
	port         int
	server       *http.Server
}

// NewServer creates a new API server instance.
func NewServer(svc *service.Service, port int, includeErrorDetails bool) *Server {
	return &Server{
		service:      svc,
		errorHandler: apperrors.NewHTTPErrorHandler(includeErrorDetails),
		port:         port,
	}
}

// Handler returns the routed handler with the full middleware stack applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/templates", s.withMiddleware(s.handleTemplates))
	mux.HandleFunc("/api/templates/", s.withMiddleware(s.handleTemplatesWithTitle))
	mux.HandleFunc("/api/health", s.withMiddleware(s.handleHealth))
	return mux
}

// Start begins serving HTTP requests.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	slog.Info("API server starting", "addr", fmt.Sprintf("http://localhost:%d", s.port))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// withMiddleware applies middleware to HTTP handlers
func (s *Server) withMiddleware(handler http.HandlerFunc) http.HandlerFunc {
	return s.loggingMiddleware(
		s.corsMiddleware(
			s.contentTypeMiddleware(
				s.recoveryMiddleware(handler),
			),
		),
	)
}

// loggingMiddleware logs HTTP requests with timing information
func (s *Server) loggingMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next(w, r)
		slog.Debug("Request handled", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	}
}

// corsMiddleware enables cross-origin requests
func (s *Server) corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next(w, r)
	}
}

// contentTypeMiddleware sets default content type
func (s *Server) contentTypeMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next(w, r)
	}
}

// recoveryMiddleware handles panics in handlers
func (s *Server) recoveryMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				slog.Error("Panic in handler", "path", r.URL.Path, "panic", rec)
				s.writeError(w, apperrors.InternalError("Internal server error"))
			}
		}()
		next(w, r)
	}
}

// writeJSON writes a JSON response with the given status code
func (s *Server) writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// writeError writes an error response using the error handler
func (s *Server) writeError(w http.ResponseWriter, err error) {
	s.errorHandler.WriteHTTPError(w, err)
}

// handleTemplates handles /api/templates
func (s *Server) handleTemplates(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListTemplates(w, r)
	case http.MethodPost:
		s.handleCreateTemplate(w, r)
	default:
		s.writeError(w, apperrors.NewAppError(apperrors.ErrCodeInvalidCommand, "Method not allowed"))
	}
}

// handleTemplatesWithTitle handles /api/templates/{title}
func (s *Server) handleTemplatesWithTitle(w http.ResponseWriter, r *http.Request) {
	// Unescape from the raw path so titles containing '%' survive intact;
	// r.URL.Path is already decoded once.
	raw := strings.TrimPrefix(r.URL.EscapedPath(), "/api/templates/")
	title, err := url.PathUnescape(raw)
	if err != nil || title == "" {
		s.writeError(w, apperrors.ValidationError("Template title is required"))
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.handleGetTemplate(w, r, title)
	case http.MethodPut:
		s.handleUpdateTemplate(w, r, title)
	case http.MethodDelete:
		s.handleDeleteTemplate(w, r, title)
	default:
		s.writeError(w, apperrors.NewAppError(apperrors.ErrCodeInvalidCommand, "Method not allowed"))
	}
}

// handleCreateTemplate handles POST /api/templates
func (s *Server) handleCreateTemplate(w http.ResponseWriter, r *http.Request) {
	var in models.TemplateCreate
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		s.writeError(w, apperrors.ValidationError("Request body must be valid JSON"))
		return
	}

	created, err := s.service.CreateTemplate(r.Context(), in)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, created)
}

// handleListTemplates handles GET /api/templates
func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	opts := models.ListOptions{Username: r.URL.Query().Get("username")}

	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			s.writeError(w, apperrors.ValidationError("limit must be a non-negative integer"))
			return
		}
		opts.Limit = limit
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil || offset < 0 {
			s.writeError(w, apperrors.ValidationError("offset must be a non-negative integer"))
			return
		}
		opts.Offset = offset
	}

	result, err := s.service.ListTemplates(r.Context(), opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

// handleGetTemplate handles GET /api/templates/{title}
func (s *Server) handleGetTemplate(w http.ResponseWriter, r *http.Request, title string) {
	template, err := s.service.GetTemplate(r.Context(), title)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, template)
}

// handleUpdateTemplate handles PUT /api/templates/{title}
func (s *Server) handleUpdateTemplate(w http.ResponseWriter, r *http.Request, title string) {
	var update models.TemplateUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		s.writeError(w, apperrors.ValidationError("Request body must be valid JSON"))
		return
	}

	updated, err := s.service.UpdateTemplate(r.Context(), title, update)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, updated)
}

// handleDeleteTemplate handles DELETE /api/templates/{title}
func (s *Server) handleDeleteTemplate(w http.ResponseWriter, r *http.Request, title string) {
	if err := s.service.DeleteTemplate(r.Context(), title); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleHealth handles GET /api/health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, apperrors.NewAppError(apperrors.ErrCodeInvalidCommand, "Method not allowed"))
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
