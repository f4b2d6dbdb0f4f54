package reefradar

import (
	"context"

	"github.com/reefradar/reefradar/pkg/reefradar/model"
)

// Service is the public surface of the reef health analysis pipeline.
type Service interface {
	// Analyze runs the full pipeline on a WAV byte buffer: decode,
	// segment, embed (with synthetic fallback), classify, project. The
	// result is persisted under a fresh analysis id before returning.
	Analyze(ctx context.Context, wav []byte) (*model.AnalysisResult, error)

	// GetAnalysis fetches a previously stored analysis by id.
	GetAnalysis(analysisID string) (*model.AnalysisResult, error)

	// ListSites returns the reference corpus.
	ListSites() ([]model.ReferenceSite, error)

	// AddSite inserts or replaces a reference site and invalidates the
	// in-memory corpus cache.
	AddSite(site model.ReferenceSite) error

	// Metrics reports store counts for health endpoints.
	Metrics() (Metrics, error)

	Close() error
}

// Storage persists the reference corpus and analysis records.
type Storage interface {
	ListSites() ([]model.ReferenceSite, error)
	UpsertSite(site model.ReferenceSite) error
	SaveResult(result *model.AnalysisResult) error
	SaveFailure(analysisID, code, message string) error
	GetResult(analysisID string) (*model.AnalysisResult, error)
	Counts() (sites int64, analyses int64, err error)
	Close() error
}

// Logger is the logging surface the service depends on.
type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	Debugf(format string, args ...any)
}

// Metrics summarizes store contents.
type Metrics struct {
	ReferenceSites int64
	Analyses       int64
}
