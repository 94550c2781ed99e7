// Package server provides the HTTP API for docqa.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hyperjump/docqa/internal/config"
	"github.com/hyperjump/docqa/internal/qa"
	"go.uber.org/zap"
)

// WatchService reports the directories the watcher is following.
type WatchService interface {
	Directories() []string
}

// Server is the HTTP server for the docqa API.
type Server struct {
	svc    *qa.Service
	config *config.Config
	logger *zap.Logger
	watch  WatchService
	server *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets a logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithWatch reports watched directories in /status.
func WithWatch(w WatchService) Option {
	return func(s *Server) { s.watch = w }
}

// NewServer creates a server for svc.
func NewServer(svc *qa.Service, cfg *config.Config, opts ...Option) *Server {
	s := &Server{
		svc:    svc,
		config: cfg,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router builds the route table.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.requestTimeout()))
	r.Use(middleware.Compress(5))

	r.Post("/upload", s.handleUpload)
	r.Get("/files", s.handleFiles)
	r.Post("/clear", s.handleClear)
	r.Post("/query", s.handleQuery)
	r.Get("/history", s.handleHistory)
	r.Get("/uploads", s.handleUploads)
	r.Get("/status", s.handleStatus)
	r.Get("/health", s.handleHealth)
	return r
}

func (s *Server) requestTimeout() time.Duration {
	if s.config.Server.RequestTimeoutSecs <= 0 {
		return 120 * time.Second
	}
	return time.Duration(s.config.Server.RequestTimeoutSecs) * time.Second
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
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
