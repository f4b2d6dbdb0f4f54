package reefradar

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/reefradar/reefradar/pkg/logger"
	"github.com/reefradar/reefradar/pkg/reefradar/audio"
	"github.com/reefradar/reefradar/pkg/reefradar/classify"
	"github.com/reefradar/reefradar/pkg/reefradar/embedding"
	"github.com/reefradar/reefradar/pkg/reefradar/model"
)

const baseCaveats = "Classification based on acoustic similarity to reference sites. " +
	"Not a definitive health diagnosis. Complements but does not replace visual surveys."

const syntheticCaveat = " (Demo mode: using synthetic embeddings)"

// reefService is the default implementation of the Service interface.
type reefService struct {
	storage Storage
	source  embedding.Source
	log     Logger
	config  *Config

	corpusMu     sync.RWMutex
	corpus       []model.ReferenceSite
	corpusLoaded bool
}

func NewService(opts ...Option) (Service, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.Logger == nil {
		cfg.Logger = logger.GetLogger()
	}

	var stor Storage
	var err error
	if cfg.Storage != nil {
		stor = cfg.Storage
	} else {
		stor, err = NewSQLiteStorage(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage: %w", err)
		}
	}

	return &reefService{
		storage: stor,
		source:  cfg.Source,
		log:     cfg.Logger,
		config:  cfg,
	}, nil
}

// Analyze runs the pipeline and persists the outcome, success or failure,
// under a fresh analysis id.
func (s *reefService) Analyze(ctx context.Context, wav []byte) (*model.AnalysisResult, error) {
	analysisID := uuid.NewString()
	s.log.Infof("Starting analysis %s (%d bytes)", analysisID, len(wav))

	result, err := s.runPipeline(ctx, analysisID, wav)
	if err != nil {
		code := model.CodeOf(err)
		s.log.Warnf("Analysis %s failed: %s - %v", analysisID, code, err)
		if serr := s.storage.SaveFailure(analysisID, code, err.Error()); serr != nil {
			s.log.Errorf("Failed to record analysis failure %s: %v", analysisID, serr)
		}
		return nil, err
	}

	if err := s.storage.SaveResult(result); err != nil {
		return nil, fmt.Errorf("failed to store analysis result: %w", err)
	}

	s.log.Infof("Analysis %s complete: %s (%.1f%%), synthetic=%t",
		analysisID, result.Classification.Label,
		result.Classification.Confidence*100, result.Embedding.Synthetic)
	return result, nil
}

func (s *reefService) runPipeline(ctx context.Context, analysisID string, wav []byte) (*model.AnalysisResult, error) {
	// 1. Decode the WAV container.
	buf, err := audio.Decode(wav)
	if err != nil {
		return nil, err
	}
	s.log.Debugf("Decoded audio: %d Hz, %d channel(s), %d-bit, %.2fs",
		buf.SampleRate, buf.Channels, buf.BitDepth, buf.Duration())

	// 2. Validate, normalize, resample, slice into model windows.
	windows, err := audio.Prepare(buf)
	if err != nil {
		return nil, err
	}
	s.log.Debugf("Prepared %d windows of %d samples", len(windows), audio.WindowSamples)

	// 3. Embed each window, falling back to synthetic embeddings when the
	// learned source is unreachable.
	embeddings, synthetic := s.embed(ctx, windows)

	// 4. Aggregate to one representative vector.
	meanEmbedding, err := embedding.Aggregate(embeddings)
	if err != nil {
		return nil, err
	}

	// 5. Load the reference corpus (cached) and validate dimensions.
	corpus, err := s.corpusSnapshot()
	if err != nil {
		return nil, fmt.Errorf("failed to load reference corpus: %w", err)
	}
	if err := validateDimensions(meanEmbedding, corpus); err != nil {
		return nil, err
	}

	// 6. Classify, rank neighbors, project.
	classification := classify.Classify(meanEmbedding, corpus)
	similar := classify.NearestSites(meanEmbedding, corpus, s.config.TopK)
	viz := model.Visualization{
		Type:           "projection_2d",
		Coordinates:    classify.Project(meanEmbedding),
		ReferenceSites: classify.ProjectSites(corpus),
	}

	caveats := baseCaveats
	if synthetic {
		caveats += syntheticCaveat
	}

	return &model.AnalysisResult{
		AnalysisID:     analysisID,
		Status:         model.StatusComplete,
		Classification: classification,
		SimilarSites:   similar,
		Visualization:  viz,
		Embedding: model.EmbeddingSummary{
			Dimension:   len(meanEmbedding),
			NumWindows:  len(windows),
			Aggregation: "mean",
			Synthetic:   synthetic,
		},
		Caveats:     caveats,
		CompletedAt: time.Now().UTC(),
	}, nil
}

// embed produces one embedding per window. A single batched call goes to the
// learned source under the configured timeout; any failure is absorbed here
// and answered with synthetic embeddings, computed concurrently since the
// downstream aggregation is order-independent.
func (s *reefService) embed(ctx context.Context, windows [][]float64) ([][]float64, bool) {
	if s.source != nil {
		embedCtx, cancel := context.WithTimeout(ctx, s.config.EmbedTimeout)
		defer cancel()

		embs, err := s.source.Embed(embedCtx, windows, audio.TargetRate)
		if err == nil {
			if err = validateBatch(embs); err == nil {
				return embs, false
			}
		}
		s.log.Warnf("Embedding source unavailable, using synthetic embeddings: %v", err)
	}

	embs := make([][]float64, len(windows))
	var wg sync.WaitGroup
	for i, w := range windows {
		wg.Add(1)
		go func(i int, w []float64) {
			defer wg.Done()
			embs[i] = embedding.Synthesize(w)
		}(i, w)
	}
	wg.Wait()
	return embs, true
}

// validateBatch rejects source output whose vectors differ in length; such a
// batch cannot be aggregated and is treated as a source failure.
func validateBatch(embs [][]float64) error {
	if len(embs) == 0 {
		return fmt.Errorf("source returned empty batch")
	}
	dim := len(embs[0])
	if dim == 0 {
		return fmt.Errorf("source returned zero-dimension embedding")
	}
	for i, e := range embs {
		if len(e) != dim {
			return fmt.Errorf("source returned inconsistent dimensions: %d vs %d at index %d",
				dim, len(e), i)
		}
	}
	return nil
}

// validateDimensions fails when a non-empty corpus shares no dimension with
// the query embedding. Individual mismatched sites are tolerated (the
// classifier skips them); a corpus with no compatible site at all means the
// query cannot be classified.
func validateDimensions(query []float64, corpus []model.ReferenceSite) error {
	if len(corpus) == 0 {
		return nil
	}
	for _, site := range corpus {
		if len(site.MeanEmbedding) == len(query) {
			return nil
		}
	}
	return model.NewError(model.CodeDimensionMismatch,
		"embedding dimension %d matches no reference site in the corpus", len(query))
}

// corpusSnapshot returns the cached read-only corpus, loading it on first
// use. The slice is shared across requests and never mutated.
func (s *reefService) corpusSnapshot() ([]model.ReferenceSite, error) {
	s.corpusMu.RLock()
	if s.corpusLoaded {
		corpus := s.corpus
		s.corpusMu.RUnlock()
		return corpus, nil
	}
	s.corpusMu.RUnlock()

	s.corpusMu.Lock()
	defer s.corpusMu.Unlock()
	if s.corpusLoaded {
		return s.corpus, nil
	}

	corpus, err := s.storage.ListSites()
	if err != nil {
		return nil, err
	}
	s.corpus = corpus
	s.corpusLoaded = true
	s.log.Infof("Loaded reference corpus: %d sites", len(corpus))
	return corpus, nil
}

// GetAnalysis fetches a stored analysis by id.
func (s *reefService) GetAnalysis(analysisID string) (*model.AnalysisResult, error) {
	return s.storage.GetResult(analysisID)
}

// ListSites returns the reference corpus.
func (s *reefService) ListSites() ([]model.ReferenceSite, error) {
	return s.corpusSnapshot()
}

// AddSite inserts or replaces a reference site and drops the corpus cache.
func (s *reefService) AddSite(site model.ReferenceSite) error {
	if site.SiteID == "" {
		return fmt.Errorf("site_id is required")
	}
	if err := s.storage.UpsertSite(site); err != nil {
		return err
	}

	s.corpusMu.Lock()
	s.corpusLoaded = false
	s.corpus = nil
	s.corpusMu.Unlock()

	s.log.Infof("Reference site %s (%s) stored", site.SiteID, site.Category)
	return nil
}

// Metrics reports store counts.
func (s *reefService) Metrics() (Metrics, error) {
	sites, analyses, err := s.storage.Counts()
	if err != nil {
		return Metrics{}, err
	}
	return Metrics{ReferenceSites: sites, Analyses: analyses}, nil
}

// Close releases storage resources.
func (s *reefService) Close() error {
	return s.storage.Close()
}
