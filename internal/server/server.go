package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"govbrief/internal/config"
	"govbrief/internal/core"
	"govbrief/internal/logger"
	"govbrief/internal/store"
)

// Generator runs newsletter workflows. Satisfied by pipeline.Orchestrator.
type Generator interface {
	GenerateNewsletter(ctx context.Context, prefs core.UserPreferences, config core.NewsletterConfig) (core.Newsletter, error)
	GetWorkflowStatus(workflowID string) (core.WorkflowState, bool)
	ListWorkflows() []core.WorkflowState
}

// Server represents the HTTP server
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	generator  Generator
	store      *store.Store
	config     config.Server
}

// New creates a new HTTP server instance
func New(generator Generator, st *store.Store, cfg config.Server) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		generator: generator,
		store:     st,
		config:    cfg,
	}

	s.setupMiddleware()
	s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute, // generation calls the LLM inline
	}

	return s
}

// setupMiddleware configures middleware for the server
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(5 * time.Minute))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
}

// setupRoutes configures routes for the server
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Route("/newsletters", func(r chi.Router) {
			r.Post("/generate", s.handleGenerate)
			r.Get("/", s.handleListNewsletters)
			r.Get("/{id}", s.handleGetNewsletter)
		})

		r.Route("/preferences", func(r chi.Router) {
			r.Get("/{userID}", s.handleGetPreferences)
			r.Put("/{userID}", s.handleSavePreferences)
		})

		r.Route("/workflows", func(r chi.Router) {
			r.Get("/", s.handleListWorkflows)
			r.Get("/{id}", s.handleGetWorkflow)
		})
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	logger.Info("Starting HTTP server", "addr", s.httpServer.Addr)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed to start: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	logger.Info("Shutting down HTTP server gracefully...")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}

// Router returns the chi router instance (useful for testing)
func (s *Server) Router() *chi.Mux {
	return s.router
}
