package main

import (
	"fmt"
	"strings"
)

// ScanRequest is the request body for POST /scan
type ScanRequest struct {
	YouTubeURL string `json:"youtube_url"`
}

// Validate checks if the request is valid
func (r *ScanRequest) Validate() error {
	if strings.TrimSpace(r.YouTubeURL) == "" {
		return fmt.Errorf("youtube_url is required in request body")
	}
	return nil
}

// HealthResponse is the response for GET /health
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Version string `json:"version"`
}

// ErrorResponse is the standard error response format
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}
