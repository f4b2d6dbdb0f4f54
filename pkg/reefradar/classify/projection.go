package classify

import (
	"github.com/reefradar/reefradar/pkg/reefradar/model"
)

// MaxProjectedSites caps how many reference sites are projected alongside a
// query for plotting.
const MaxProjectedSites = 10

// Project derives a display coordinate from an embedding: x is the mean of
// the first half of the vector, y the mean of the second half. Illustrative
// only; no distance preservation is claimed.
func Project(embedding []float64) model.Projection2D {
	mid := len(embedding) / 2
	return model.Projection2D{
		X: mean(embedding[:mid]),
		Y: mean(embedding[mid:]),
	}
}

// ProjectSites applies the same projection to up to MaxProjectedSites
// reference sites so query and corpus plot in a consistent plane. Sites
// without an embedding are skipped.
func ProjectSites(corpus []model.ReferenceSite) []model.SitePoint {
	points := make([]model.SitePoint, 0, MaxProjectedSites)
	for _, site := range corpus {
		if len(points) == MaxProjectedSites {
			break
		}
		if len(site.MeanEmbedding) == 0 {
			continue
		}
		p := Project(site.MeanEmbedding)
		points = append(points, model.SitePoint{
			SiteID:   site.SiteID,
			Category: site.Category,
			X:        p.X,
			Y:        p.Y,
		})
	}
	return points
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
