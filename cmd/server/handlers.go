package main

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/reefradar/reefradar/pkg/logger"
	"github.com/reefradar/reefradar/pkg/reefradar"
	"github.com/reefradar/reefradar/pkg/reefradar/model"
)

// Server encapsulates the HTTP server and its dependencies.
type Server struct {
	service reefradar.Service
	config  *ServerConfig
	log     reefradar.Logger
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Port              int
	DBPath            string
	InferenceEndpoint string
	AllowedOrigins    []string
}

// NewServer creates a new server instance.
func NewServer(service reefradar.Service, config *ServerConfig) *Server {
	return &Server{
		service: service,
		config:  config,
		log:     logger.GetLogger(),
	}
}

// respondJSON writes a JSON response.
func (s *Server) respondJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Errorf("Failed to encode JSON response: %v", err)
	}
}

// respondError writes an error response with a stable code.
func (s *Server) respondError(w http.ResponseWriter, statusCode int, code, message string) {
	s.respondJSON(w, statusCode, ErrorResponse{
		Error:   http.StatusText(statusCode),
		Code:    code,
		Message: message,
	})
}

// statusForCode maps pipeline error codes to HTTP statuses.
func statusForCode(code string) int {
	switch code {
	case model.CodeInvalidFormat, model.CodeAudioTooShort, model.CodeAudioTooLong:
		return http.StatusBadRequest
	case model.CodeAnalysisNotFound:
		return http.StatusNotFound
	case model.CodeDimensionMismatch:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// handleRoot handles GET /.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{
		"service": "ReefRadar API",
		"version": "1.0.0",
		"endpoints": map[string]string{
			"health":      "GET /health",
			"metrics":     "GET /api/health/metrics",
			"analyze":     "POST /api/analyze",
			"getAnalysis": "GET /api/analyses/{id}",
			"listSites":   "GET /api/sites",
			"addSite":     "POST /api/sites",
		},
	})
}

// handleHealth handles GET /health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// handleMetrics handles GET /api/health/metrics.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	metrics, err := s.service.Metrics()
	if err != nil {
		s.log.Errorf("Failed to get metrics: %v", err)
		s.respondError(w, http.StatusInternalServerError, model.CodeProcessingFailed, "Failed to retrieve metrics")
		return
	}

	s.respondJSON(w, http.StatusOK, MetricsResponse{
		Status:            "healthy",
		DatabasePath:      s.config.DBPath,
		ReferenceSites:    metrics.ReferenceSites,
		Analyses:          metrics.Analyses,
		InferenceEndpoint: s.config.InferenceEndpoint,
	})
}

// handleAnalyze handles POST /api/analyze. The WAV may come either as a raw
// request body or as the "file" part of a multipart form.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondError(w, http.StatusMethodNotAllowed, model.CodeProcessingFailed, "Use POST")
		return
	}

	wav, err := readUpload(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, model.CodeInvalidFormat, err.Error())
		return
	}
	if len(wav) == 0 {
		s.respondError(w, http.StatusBadRequest, model.CodeInvalidFormat, "Empty request body; upload a WAV file")
		return
	}

	result, err := s.service.Analyze(r.Context(), wav)
	if err != nil {
		code := model.CodeOf(err)
		s.respondError(w, statusForCode(code), code, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, result)
}

func readUpload(r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, MaxUploadBytes)

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		file, _, err := r.FormFile("file")
		if err != nil {
			return nil, err
		}
		defer file.Close()
		return io.ReadAll(file)
	}
	return io.ReadAll(r.Body)
}

// handleGetAnalysis handles GET /api/analyses/{id}.
func (s *Server) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.respondError(w, http.StatusMethodNotAllowed, model.CodeProcessingFailed, "Use GET")
		return
	}

	analysisID := strings.TrimPrefix(r.URL.Path, "/api/analyses/")
	if analysisID == "" || strings.Contains(analysisID, "/") {
		s.respondError(w, http.StatusBadRequest, model.CodeAnalysisNotFound, "Missing analysis id")
		return
	}

	result, err := s.service.GetAnalysis(analysisID)
	if err != nil {
		code := model.CodeOf(err)
		s.respondError(w, statusForCode(code), code, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, result)
}

// handleSites handles GET and POST /api/sites.
func (s *Server) handleSites(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListSites(w, r)
	case http.MethodPost:
		s.handleAddSite(w, r)
	default:
		s.respondError(w, http.StatusMethodNotAllowed, model.CodeProcessingFailed, "Use GET or POST")
	}
}

func (s *Server) handleListSites(w http.ResponseWriter, r *http.Request) {
	sites, err := s.service.ListSites()
	if err != nil {
		s.log.Errorf("Failed to list sites: %v", err)
		s.respondError(w, http.StatusInternalServerError, model.CodeProcessingFailed, "Failed to retrieve sites")
		return
	}

	dtos := make([]SiteDTO, len(sites))
	for i, site := range sites {
		dtos[i] = SiteDTO{
			SiteID:   site.SiteID,
			Country:  site.Country,
			Category: string(site.Category),
		}
	}

	s.respondJSON(w, http.StatusOK, ListSitesResponse{Sites: dtos, Count: len(dtos)})
}

func (s *Server) handleAddSite(w http.ResponseWriter, r *http.Request) {
	var req AddSiteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, model.CodeProcessingFailed, "Invalid JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, model.CodeProcessingFailed, err.Error())
		return
	}

	site := model.ReferenceSite{
		SiteID:        req.SiteID,
		Country:       req.Country,
		Category:      model.Category(req.Category),
		MeanEmbedding: req.MeanEmbedding,
	}
	if err := s.service.AddSite(site); err != nil {
		s.log.Errorf("Failed to add site %s: %v", req.SiteID, err)
		s.respondError(w, http.StatusInternalServerError, model.CodeProcessingFailed, "Failed to store site")
		return
	}

	s.respondJSON(w, http.StatusCreated, AddSiteResponse{
		Message: "Reference site stored",
		SiteID:  req.SiteID,
	})
}
