// Package web serves the read-only review API over the case store, with an
// embedded HTML viewer and a cross-case face search.
package web

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/krizmartin/profile-matcher/internal/casestore"
	"github.com/krizmartin/profile-matcher/internal/web/facesearch"
	"github.com/krizmartin/profile-matcher/internal/web/middleware"
)

// Server represents the review API server
type Server struct {
	store      casestore.Store
	faceIndex  *facesearch.Index
	router     *chi.Mux
	httpServer *http.Server
}

// NewServer creates a new review API server. An empty apiKey leaves the API
// open; otherwise every /api/v1 request must present the key.
func NewServer(store casestore.Store, faceIndex *facesearch.Index, host string, port int, apiKey string) *Server {
	r := chi.NewRouter()

	s := &Server{
		store:     store,
		faceIndex: faceIndex,
		router:    r,
	}

	// Set up middleware stack
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))
	r.Use(middleware.CORS())

	s.setupRoutes(apiKey)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", host, port),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start starts the HTTP server
func (s *Server) Start() error {
	log.Printf("Starting review API on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down review API...")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}

// Router returns the chi router for testing
func (s *Server) Router() *chi.Mux {
	return s.router
}
