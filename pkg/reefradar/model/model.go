package model

import "time"

// EmbeddingDim is the fixed dimension of every embedding in the system,
// matching the SurfPerch model output. Reference embeddings and synthetic
// embeddings must all have this dimension.
const EmbeddingDim = 1280

// Category is a reef health class assigned to reference sites and analyses.
type Category string

const (
	CategoryHealthy       Category = "healthy"
	CategoryDegraded      Category = "degraded"
	CategoryRestoredEarly Category = "restored_early"
	CategoryRestoredMid   Category = "restored_mid"
)

// CategoryPriority is the fixed order used both for iterating categories and
// for breaking ties when two categories score equally. The first entry wins a
// tie. The order itself is inherited policy, not statistical meaning.
var CategoryPriority = []Category{
	CategoryHealthy,
	CategoryDegraded,
	CategoryRestoredEarly,
	CategoryRestoredMid,
}

// ReferenceSite is a pre-characterized recording location with a known health
// category and a precomputed mean embedding. The corpus of reference sites is
// read-only during classification.
type ReferenceSite struct {
	SiteID        string    `json:"site_id"`
	Country       string    `json:"country"`
	Category      Category  `json:"category"`
	MeanEmbedding []float64 `json:"mean_embedding"`
}

// Classification is the outcome of comparing a query embedding against the
// reference corpus.
type Classification struct {
	Label         Category             `json:"label"`
	Confidence    float64              `json:"confidence"`
	Probabilities map[Category]float64 `json:"probabilities"`
}

// SimilarSite is one entry of the ranked nearest-neighbor list.
type SimilarSite struct {
	SiteID     string   `json:"site_id"`
	Country    string   `json:"country"`
	Category   Category `json:"category"`
	Similarity float64  `json:"similarity"`
}

// Projection2D is an illustrative 2D coordinate derived from an embedding.
// No distance preservation is claimed.
type Projection2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// SitePoint is a projected reference site for joint plotting with the query.
type SitePoint struct {
	SiteID   string   `json:"site_id"`
	Category Category `json:"category"`
	X        float64  `json:"x"`
	Y        float64  `json:"y"`
}

// Visualization bundles the query projection with up to ten projected
// reference sites.
type Visualization struct {
	Type           string       `json:"type"`
	Coordinates    Projection2D `json:"coordinates"`
	ReferenceSites []SitePoint  `json:"reference_sites"`
}

// EmbeddingSummary describes how the representative embedding was produced.
type EmbeddingSummary struct {
	Dimension   int    `json:"dimension"`
	NumWindows  int    `json:"num_windows"`
	Aggregation string `json:"aggregation"`
	Synthetic   bool   `json:"synthetic"`
}

// Analysis statuses.
const (
	StatusComplete = "complete"
	StatusFailed   = "failed"
)

// AnalysisResult is the full outcome of one classification request.
type AnalysisResult struct {
	AnalysisID     string           `json:"analysis_id"`
	Status         string           `json:"status"`
	Classification Classification   `json:"classification"`
	SimilarSites   []SimilarSite    `json:"similar_sites"`
	Visualization  Visualization    `json:"visualization"`
	Embedding      EmbeddingSummary `json:"embedding_summary"`
	Caveats        string           `json:"caveats"`
	CompletedAt    time.Time        `json:"completed_at"`
}
