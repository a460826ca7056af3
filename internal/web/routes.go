package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/krizmartin/profile-matcher/internal/web/handlers"
	"github.com/krizmartin/profile-matcher/internal/web/middleware"
	"github.com/krizmartin/profile-matcher/internal/web/static"
)

func (s *Server) setupRoutes(apiKey string) {
	casesHandler := handlers.NewCasesHandler(s.store)
	reportHandler := handlers.NewReportHandler(s.store)
	similarHandler := handlers.NewSimilarHandler(s.store, s.faceIndex)

	// Health check (no auth required)
	s.router.Get("/healthz", handlers.HealthCheck)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RequireAPIKey(apiKey))

		r.Get("/cases", casesHandler.List)
		r.Get("/cases/{slug}", casesHandler.Get)
		r.Get("/cases/{slug}/similar-faces", similarHandler.Get)
		r.Get("/report", reportHandler.Get)
	})

	s.router.Get("/", s.serveViewer)
}

// serveViewer serves the embedded single-page report viewer.
func (s *Server) serveViewer(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(static.Viewer)
}
