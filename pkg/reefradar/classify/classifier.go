package classify

import (
	"math"
	"sort"

	"github.com/reefradar/reefradar/pkg/reefradar/model"
)

// emptyCategoryScore is the raw score assigned to a category with no
// reference sites, keeping all four categories represented in the
// distribution even with a sparse corpus. Inherited policy; the value has no
// statistical meaning.
const emptyCategoryScore = 0.1

// Cosine returns the cosine similarity of a and b in [-1, 1]. A zero-norm
// vector compares as exactly 0.0 against anything, never NaN.
func Cosine(a, b []float64) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0.0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Classify compares a query embedding against the reference corpus and
// produces a label, a confidence, and the full category distribution.
//
// Each category scores the mean cosine similarity of its sites; categories
// without sites get emptyCategoryScore. Scores are normalized to sum to 1.0
// (left raw when the sum is 0, the degenerate-corpus case). Ties are broken
// by model.CategoryPriority, healthy first.
//
// An empty corpus returns a fixed placeholder distribution so the system
// stays usable during corpus bootstrap.
func Classify(query []float64, corpus []model.ReferenceSite) model.Classification {
	if len(corpus) == 0 {
		return placeholderClassification()
	}

	sims := make(map[model.Category][]float64)
	for _, site := range corpus {
		if len(site.MeanEmbedding) != len(query) {
			continue
		}
		if !knownCategory(site.Category) {
			continue
		}
		sims[site.Category] = append(sims[site.Category], Cosine(query, site.MeanEmbedding))
	}

	scores := make(map[model.Category]float64, len(model.CategoryPriority))
	var total float64
	for _, cat := range model.CategoryPriority {
		score := emptyCategoryScore
		if s := sims[cat]; len(s) > 0 {
			var sum float64
			for _, v := range s {
				sum += v
			}
			score = sum / float64(len(s))
		}
		scores[cat] = score
		total += score
	}

	if total > 0 {
		for cat, v := range scores {
			scores[cat] = v / total
		}
	}

	label := model.CategoryPriority[0]
	best := scores[label]
	for _, cat := range model.CategoryPriority[1:] {
		if scores[cat] > best {
			label = cat
			best = scores[cat]
		}
	}

	return model.Classification{
		Label:         label,
		Confidence:    best,
		Probabilities: scores,
	}
}

// NearestSites ranks reference sites by cosine similarity to the query,
// descending, and returns the first k. Only sites whose embedding dimension
// matches the query participate. The sort is stable: equal similarities keep
// corpus order. An empty corpus returns a fixed illustrative list — a demo
// fallback, not a real neighbor search.
func NearestSites(query []float64, corpus []model.ReferenceSite, k int) []model.SimilarSite {
	if len(corpus) == 0 {
		return placeholderSites(k)
	}

	ranked := make([]model.SimilarSite, 0, len(corpus))
	for _, site := range corpus {
		if len(site.MeanEmbedding) != len(query) {
			continue
		}
		ranked = append(ranked, model.SimilarSite{
			SiteID:     site.SiteID,
			Country:    site.Country,
			Category:   site.Category,
			Similarity: Cosine(query, site.MeanEmbedding),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Similarity > ranked[j].Similarity
	})

	if k < len(ranked) {
		ranked = ranked[:k]
	}
	return ranked
}

func knownCategory(c model.Category) bool {
	for _, cat := range model.CategoryPriority {
		if c == cat {
			return true
		}
	}
	return false
}

func placeholderClassification() model.Classification {
	return model.Classification{
		Label:      model.CategoryHealthy,
		Confidence: 0.65,
		Probabilities: map[model.Category]float64{
			model.CategoryHealthy:       0.65,
			model.CategoryDegraded:      0.15,
			model.CategoryRestoredEarly: 0.10,
			model.CategoryRestoredMid:   0.10,
		},
	}
}

func placeholderSites(k int) []model.SimilarSite {
	sites := []model.SimilarSite{
		{SiteID: "aus_H1", Country: "Australia", Category: model.CategoryHealthy, Similarity: 0.94},
		{SiteID: "idn_H1", Country: "Indonesia", Category: model.CategoryHealthy, Similarity: 0.91},
		{SiteID: "aus_H2", Country: "Australia", Category: model.CategoryHealthy, Similarity: 0.88},
	}
	if k < len(sites) {
		sites = sites[:k]
	}
	return sites
}
