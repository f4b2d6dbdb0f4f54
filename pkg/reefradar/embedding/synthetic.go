package embedding

import (
	"math"
	"math/cmplx"
	"math/rand"

	"github.com/mjibson/go-dsp/fft"

	"github.com/reefradar/reefradar/pkg/reefradar/audio"
	"github.com/reefradar/reefradar/pkg/reefradar/model"
)

// noiseStddev is the spread of the per-element noise around each feature
// block in a synthetic embedding.
const noiseStddev = 0.1

// Synthesize derives a deterministic stand-in embedding from a window's
// gross signal statistics: RMS, peak amplitude, zero-crossing rate, and
// spectral centroid. The vector is partitioned into four equal blocks, one
// per feature, each filled with feature value plus seeded noise. Identical
// audio always yields an identical vector; the PRNG seed comes from RMS
// alone, never from wall-clock time.
//
// Synthetic embeddings are dimensionally compatible with learned ones but
// carry no comparable discriminative power; results built from them must be
// flagged as synthetic.
func Synthesize(window []float64) []float64 {
	rms := rootMeanSquare(window)
	peak := peakAmplitude(window)
	zcr := float64(zeroCrossings(window)) / float64(len(window))
	centroid := spectralCentroid(window) / (audio.TargetRate / 2)

	seed := int64(math.Abs(rms)*1e6) % (1 << 31)
	rng := rand.New(rand.NewSource(seed))

	features := [4]float64{rms, peak, zcr, centroid}
	block := model.EmbeddingDim / len(features)

	out := make([]float64, model.EmbeddingDim)
	for i, feat := range features {
		start := i * block
		for j := 0; j < block; j++ {
			out[start+j] = feat + rng.NormFloat64()*noiseStddev
		}
	}
	return out
}

func rootMeanSquare(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += s * s
	}
	return math.Sqrt(sum / float64(len(samples)))
}

func peakAmplitude(samples []float64) float64 {
	var peak float64
	for _, s := range samples {
		if a := math.Abs(s); a > peak {
			peak = a
		}
	}
	return peak
}

// zeroCrossings counts sign changes between consecutive samples. A sample at
// exactly zero counts as its own sign, so a touch-and-return still registers.
func zeroCrossings(samples []float64) int {
	count := 0
	for i := 1; i < len(samples); i++ {
		if sign(samples[i]) != sign(samples[i-1]) {
			count++
		}
	}
	return count
}

func sign(x float64) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}

// spectralCentroid computes the frequency-weighted mean of the magnitude
// spectrum in Hz, assuming the window is sampled at the canonical rate.
func spectralCentroid(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}

	spectrum := fft.FFTReal(samples)
	bins := len(samples)/2 + 1

	var total float64
	mags := make([]float64, bins)
	for k := 0; k < bins; k++ {
		mags[k] = cmplx.Abs(spectrum[k])
		total += mags[k]
	}
	total += 1e-10

	binHz := float64(audio.TargetRate) / float64(len(samples))
	var centroid float64
	for k := 0; k < bins; k++ {
		centroid += float64(k) * binHz * (mags[k] / total)
	}
	return centroid
}
