package main

import (
	"fmt"
	"net/http"
)

// setupRoutes registers all HTTP routes and middleware.
func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/", s.handleRoot)

	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/health/metrics", s.handleMetrics)

	mux.HandleFunc("/api/analyze", s.handleAnalyze)
	mux.HandleFunc("/api/analyses/", s.handleGetAnalysis)

	mux.HandleFunc("/api/sites", s.handleSites)

	return corsMiddleware(s.config.AllowedOrigins)(mux)
}

// corsMiddleware adds CORS headers to responses.
func corsMiddleware(allowedOrigins []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			allowed := false
			if len(allowedOrigins) == 0 || (len(allowedOrigins) == 1 && allowedOrigins[0] == "*") {
				w.Header().Set("Access-Control-Allow-Origin", "*")
				allowed = true
			} else {
				for _, allowedOrigin := range allowedOrigins {
					if allowedOrigin == origin {
						w.Header().Set("Access-Control-Allow-Origin", origin)
						allowed = true
						break
					}
				}
			}

			if allowed {
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")
				w.Header().Set("Access-Control-Max-Age", "3600")
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	handler := s.setupRoutes()

	addr := fmt.Sprintf(":%d", s.config.Port)
	s.log.Infof("ReefRadar server starting on %s", addr)
	s.log.Infof("   Database: %s", s.config.DBPath)
	if s.config.InferenceEndpoint != "" {
		s.log.Infof("   Inference: %s", s.config.InferenceEndpoint)
	} else {
		s.log.Infof("   Inference: none (synthetic embeddings)")
	}
	s.log.Infof("Endpoints:")
	s.log.Infof("   GET  /health                - Health check")
	s.log.Infof("   GET  /api/health/metrics    - Server metrics")
	s.log.Infof("   POST /api/analyze           - Analyze a WAV recording")
	s.log.Infof("   GET  /api/analyses/{id}     - Fetch a stored analysis")
	s.log.Infof("   GET  /api/sites             - List reference sites")
	s.log.Infof("   POST /api/sites             - Add a reference site")

	return http.ListenAndServe(addr, handler)
}
