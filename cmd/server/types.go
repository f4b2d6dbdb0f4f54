package main

import (
	"fmt"

	"github.com/reefradar/reefradar/pkg/reefradar/model"
)

// MaxUploadBytes caps an analyze request body. A 600-second stereo 32-bit
// recording at 96 kHz is under this bound.
const MaxUploadBytes = 512 << 20

// AddSiteRequest is the request body for POST /api/sites.
type AddSiteRequest struct {
	SiteID        string    `json:"site_id"`
	Country       string    `json:"country"`
	Category      string    `json:"category"`
	MeanEmbedding []float64 `json:"mean_embedding"`
}

// Validate checks if the request is valid.
func (r *AddSiteRequest) Validate() error {
	if r.SiteID == "" {
		return fmt.Errorf("site_id is required")
	}
	if len(r.MeanEmbedding) == 0 {
		return fmt.Errorf("mean_embedding is required")
	}
	valid := false
	for _, cat := range model.CategoryPriority {
		if model.Category(r.Category) == cat {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("category must be one of %v", model.CategoryPriority)
	}
	return nil
}

// SiteDTO represents a reference site in API responses. Embeddings are
// omitted; they are large and only the pipeline consumes them.
type SiteDTO struct {
	SiteID   string `json:"site_id"`
	Country  string `json:"country"`
	Category string `json:"category"`
}

// ListSitesResponse is the response for GET /api/sites.
type ListSitesResponse struct {
	Sites []SiteDTO `json:"sites"`
	Count int       `json:"count"`
}

// AddSiteResponse is the response for a successful site insertion.
type AddSiteResponse struct {
	Message string `json:"message"`
	SiteID  string `json:"site_id"`
}

// MetricsResponse provides server health and store metrics.
type MetricsResponse struct {
	Status            string `json:"status"`
	DatabasePath      string `json:"database_path"`
	ReferenceSites    int64  `json:"reference_sites"`
	Analyses          int64  `json:"analyses"`
	InferenceEndpoint string `json:"inference_endpoint,omitempty"`
}

// ErrorResponse is the standard error response format. Code is the stable
// machine-readable error code from the pipeline's taxonomy.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}
