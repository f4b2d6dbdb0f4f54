package embedding

import (
	"github.com/reefradar/reefradar/pkg/reefradar/model"
)

// Aggregate reduces per-window embeddings to one representative vector by
// elementwise arithmetic mean. The mean is order-independent, so callers may
// produce the batch concurrently. An empty batch is an upstream bug and
// fails with EMPTY_BATCH.
func Aggregate(embeddings [][]float64) ([]float64, error) {
	if len(embeddings) == 0 {
		return nil, model.NewError(model.CodeEmptyBatch,
			"cannot aggregate an empty embedding batch")
	}

	dim := len(embeddings[0])
	out := make([]float64, dim)
	for _, emb := range embeddings {
		for i, v := range emb {
			out[i] += v
		}
	}
	n := float64(len(embeddings))
	for i := range out {
		out[i] /= n
	}
	return out, nil
}
