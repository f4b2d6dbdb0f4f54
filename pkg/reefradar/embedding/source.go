package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Source is the contract for the learned embedding model: a batch of
// fixed-length windows and a nominal sample rate in, one fixed-dimension
// vector per window out. Implementations may be remote; callers bound each
// call with a context deadline and fall back to synthetic embeddings on any
// failure.
type Source interface {
	Embed(ctx context.Context, windows [][]float64, sampleRate int) ([][]float64, error)
}

// HTTPSource invokes a remote inference endpoint that wraps the SurfPerch
// model. The wire format mirrors the inference service: a JSON body with
// "segments" and "sample_rate", answered by a JSON envelope carrying one
// embedding per segment.
type HTTPSource struct {
	endpoint string
	client   *http.Client
}

// NewHTTPSource builds a source for the given inference endpoint. timeout
// bounds the whole HTTP exchange; the per-request context may tighten it
// further.
func NewHTTPSource(endpoint string, timeout time.Duration) *HTTPSource {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPSource{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

type inferenceRequest struct {
	Segments   [][]float64 `json:"segments"`
	SampleRate int         `json:"sample_rate"`
}

// inferenceResponse is the single adapter boundary for the model's raw
// output shape. Whatever the remote service evolves into, only this struct
// and decodeEmbeddings may change; the rest of the pipeline sees the fixed
// Source contract.
type inferenceResponse struct {
	Embeddings [][]float64 `json:"embeddings"`
	Dimension  int         `json:"embedding_dim"`
	Model      string      `json:"model"`
	Error      string      `json:"error"`
}

func (s *HTTPSource) Embed(ctx context.Context, windows [][]float64, sampleRate int) ([][]float64, error) {
	body, err := json.Marshal(inferenceRequest{Segments: windows, SampleRate: sampleRate})
	if err != nil {
		return nil, fmt.Errorf("encoding inference request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building inference request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling inference endpoint: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading inference response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("inference endpoint returned %d: %s", resp.StatusCode, truncate(raw, 200))
	}

	return decodeEmbeddings(raw, len(windows))
}

func decodeEmbeddings(raw []byte, wantCount int) ([][]float64, error) {
	var envelope inferenceResponse
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("decoding inference response: %w", err)
	}
	if envelope.Error != "" {
		return nil, fmt.Errorf("inference failed: %s", envelope.Error)
	}
	if len(envelope.Embeddings) == 0 {
		return nil, fmt.Errorf("inference returned no embeddings")
	}
	if len(envelope.Embeddings) != wantCount {
		return nil, fmt.Errorf("inference returned %d embeddings for %d windows",
			len(envelope.Embeddings), wantCount)
	}
	return envelope.Embeddings, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
