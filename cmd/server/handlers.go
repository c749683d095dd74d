package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/himanishpuri/BeatLink/pkg/beatlink"
	"github.com/himanishpuri/BeatLink/pkg/logger"
	"github.com/himanishpuri/BeatLink/pkg/models"
)

const (
	apiVersion     = "2.0.0"
	maxRequestBody = 1 << 20
)

// Server encapsulates the HTTP server and its dependencies
type Server struct {
	service beatlink.Service
	config  *ServerConfig
	log     beatlink.Logger
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           int
	AllowedOrigins []string
}

// NewServer creates a new server instance
func NewServer(service beatlink.Service, config *ServerConfig) *Server {
	return &Server{
		service: service,
		config:  config,
		log:     logger.GetLogger().Named("http"),
	}
}

// respondJSON writes a JSON response
func (s *Server) respondJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Errorf("Failed to encode JSON response: %v", err)
	}
}

// respondError writes the error body for a failed scan
func (s *Server) respondError(w http.ResponseWriter, se *models.ScanError) {
	message := se.Message
	if se.Kind == models.KindInternal {
		message = "internal server error"
	}
	s.respondJSON(w, statusFor(se.Category), ErrorResponse{
		Success: false,
		Error:   string(se.Kind),
		Message: message,
	})
}

// statusFor maps an error category to its HTTP status
func statusFor(c models.Category) int {
	switch c {
	case models.CategoryInvalidInput:
		return http.StatusBadRequest
	case models.CategoryUpstreamUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// handleRoot handles GET /
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{
		"service": "BeatLink API",
		"version": apiVersion,
		"endpoints": map[string]string{
			"health": "GET /health",
			"scan":   "POST /scan",
		},
	})
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, HealthResponse{
		Status:  "healthy",
		Message: "BeatLink API is running",
		Version: apiVersion,
	})
}

// handleScan handles POST /scan
func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	var req ScanRequest
	body := io.LimitReader(r.Body, maxRequestBody)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		s.log.Warnf("Unreadable scan request: %v", err)
		req = ScanRequest{}
	}
	if err := req.Validate(); err != nil {
		s.respondError(w, models.NewScanError(models.KindMissingURL, err.Error(), nil))
		return
	}

	s.log.Infof("Scanning YouTube URL: %s", req.YouTubeURL)

	// A client disconnect does not cancel the scan.
	ctx := context.WithoutCancel(r.Context())
	report, err := s.service.Scan(ctx, req.YouTubeURL)
	if err != nil {
		se := models.AsScanError(err)
		if se.Category == models.CategoryInternal {
			s.log.Errorf("Unexpected error: %v", err)
		} else {
			s.log.Warnf("Scan failed: %v", err)
		}
		s.respondError(w, se)
		return
	}

	s.respondJSON(w, http.StatusOK, models.NewScanResponse(report))
}
