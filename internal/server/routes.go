package server

import (
	"net/http"
)

// setupRoutes registers all API routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// Fund data
	mux.HandleFunc("/api/portfolios", s.app.PortfolioHandler.ListHandler)

	// AI analysis
	mux.HandleFunc("/api/analyze", s.app.AnalyzeHandler.AnalyzeRequestHandler)
	mux.HandleFunc("/api/models", s.app.AnalyzeHandler.ModelsHandler)

	// Service status
	mux.HandleFunc("/api/health", s.app.APIHandler.HealthHandler)
	mux.HandleFunc("/api/version", s.app.APIHandler.VersionHandler)

	// Unknown API paths get a JSON 404 instead of the default text page
	mux.HandleFunc("/api/", s.app.APIHandler.NotFoundHandler)

	return mux
}
