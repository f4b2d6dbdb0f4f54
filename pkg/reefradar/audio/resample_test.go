package audio

import (
	"testing"
)

func TestResampleIdentity(t *testing.T) {
	samples := []float64{0.1, -0.2, 0.3, 0.4}

	for _, rate := range []int{8000, 16000, 32000, 44100} {
		out := Resample(samples, rate, rate)
		if len(out) != len(samples) {
			t.Fatalf("rate %d: expected %d samples, got %d", rate, len(samples), len(out))
		}
		for i := range samples {
			if out[i] != samples[i] {
				t.Errorf("rate %d: sample %d changed: %f != %f", rate, i, out[i], samples[i])
			}
		}
	}
}

func TestResampleLengthLaw(t *testing.T) {
	tests := []struct {
		name       string
		inputLen   int
		sourceRate int
		targetRate int
		wantLen    int
	}{
		{"Upsample 16k to 32k", 16000, 16000, 32000, 32000},
		{"Downsample 44.1k to 32k", 44100, 44100, 32000, 32000},
		{"Upsample odd length", 101, 10, 25, 252},
		{"Downsample to fraction", 7, 4, 2, 3},
		{"One second at 48k to 32k", 48000, 48000, 32000, 32000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Resample(make([]float64, tt.inputLen), tt.sourceRate, tt.targetRate)
			if len(out) != tt.wantLen {
				t.Errorf("Expected %d output samples, got %d", tt.wantLen, len(out))
			}
		})
	}
}

func TestResampleInterpolationLaw(t *testing.T) {
	// Doubling the rate of a ramp interpolates midpoints; positions past the
	// clamped final pair extrapolate along it.
	in := []float64{0, 10, 20, 30}
	out := Resample(in, 2, 4)

	want := []float64{0, 5, 10, 15, 20, 25, 30, 35}
	if len(out) != len(want) {
		t.Fatalf("Expected %d samples, got %d", len(want), len(out))
	}
	for i, w := range want {
		if out[i] != w {
			t.Errorf("Sample %d: expected %f, got %f", i, w, out[i])
		}
	}
}

func TestResampleDownsampleExact(t *testing.T) {
	in := []float64{0, 1, 2, 3, 4, 5, 6, 7}
	out := Resample(in, 4, 2)

	want := []float64{0, 2, 4, 6}
	if len(out) != len(want) {
		t.Fatalf("Expected %d samples, got %d", len(want), len(out))
	}
	for i, w := range want {
		if out[i] != w {
			t.Errorf("Sample %d: expected %f, got %f", i, w, out[i])
		}
	}
}
