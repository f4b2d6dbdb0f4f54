package audio

import (
	"testing"

	"github.com/reefradar/reefradar/pkg/reefradar/model"
)

func monoBuffer(rate, bitDepth int, samples []float64) *Buffer {
	return &Buffer{
		SampleRate: rate,
		Channels:   1,
		BitDepth:   bitDepth,
		Samples:    [][]float64{samples},
	}
}

func TestPrepareDurationGate(t *testing.T) {
	tests := []struct {
		name     string
		rate     int
		frames   int
		wantCode string
	}{
		{"Just under minimum", 1000, 4999, model.CodeAudioTooShort},
		{"Well under minimum", 32000, 32000, model.CodeAudioTooShort},
		{"Just over maximum", 1000, 600001, model.CodeAudioTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := monoBuffer(tt.rate, 16, make([]float64, tt.frames))
			_, err := Prepare(buf)
			if err == nil {
				t.Fatal("Expected error but got nil")
			}
			if !model.IsCode(err, tt.wantCode) {
				t.Errorf("Expected code %s, got %s", tt.wantCode, model.CodeOf(err))
			}
		})
	}
}

func TestPrepareExactWindow(t *testing.T) {
	// Exactly 5.0s at 32 kHz yields exactly one full window, no resampling.
	buf := monoBuffer(TargetRate, 16, make([]float64, WindowSamples))

	windows, err := Prepare(buf)
	if err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}
	if len(windows) != 1 {
		t.Fatalf("Expected 1 window, got %d", len(windows))
	}
	if len(windows[0]) != WindowSamples {
		t.Errorf("Expected %d samples, got %d", WindowSamples, len(windows[0]))
	}
}

func TestPrepareSilentEightBitScenario(t *testing.T) {
	// 6 seconds of 8-bit silence at 16 kHz: decode stores silence as zeros,
	// resampling doubles the length, one full window of zeros comes out and
	// the 32,000-sample remainder is dropped.
	buf := monoBuffer(16000, 8, make([]float64, 96000))

	windows, err := Prepare(buf)
	if err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}
	if len(windows) != 1 {
		t.Fatalf("Expected 1 window, got %d", len(windows))
	}
	for i, v := range windows[0] {
		if v != 0 {
			t.Fatalf("Sample %d not zero: %f", i, v)
		}
	}
}

func TestSlicePartialWindowPolicy(t *testing.T) {
	tests := []struct {
		name        string
		extra       int
		wantWindows int
	}{
		{"Remainder over half is padded", 90001, 2},
		{"Remainder exactly half is dropped", WindowSamples / 2, 1},
		{"Remainder under half is dropped", 50000, 1},
		{"No remainder", 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			samples := make([]float64, WindowSamples+tt.extra)
			for i := range samples {
				samples[i] = 0.5
			}

			windows := Slice(samples)
			if len(windows) != tt.wantWindows {
				t.Fatalf("Expected %d windows, got %d", tt.wantWindows, len(windows))
			}
			for _, w := range windows {
				if len(w) != WindowSamples {
					t.Errorf("Window length %d, expected %d", len(w), WindowSamples)
				}
			}

			if tt.wantWindows == 2 {
				last := windows[1]
				if last[tt.extra-1] != 0.5 {
					t.Error("Remainder samples not copied into padded window")
				}
				if last[tt.extra] != 0 {
					t.Error("Padding is not zero")
				}
			}
		})
	}
}

func TestDownmixStereo(t *testing.T) {
	left := []float64{2, 4, -6}
	right := []float64{4, 8, -2}

	mono := Downmix([][]float64{left, right})
	want := []float64{3, 6, -4}
	for i, w := range want {
		if mono[i] != w {
			t.Errorf("Frame %d: expected %f, got %f", i, w, mono[i])
		}
	}
}

func TestNormalize(t *testing.T) {
	t.Run("16-bit full scale", func(t *testing.T) {
		out := Normalize([]float64{32768, -32768, 16384}, 16)
		want := []float64{1, -1, 0.5}
		for i, w := range want {
			if out[i] != w {
				t.Errorf("Sample %d: expected %f, got %f", i, w, out[i])
			}
		}
	})

	t.Run("8-bit uses int16 scale", func(t *testing.T) {
		// 8-bit samples were widened into the int16 domain at decode.
		out := Normalize([]float64{127, -128}, 8)
		if out[0] != 127.0/32768.0 {
			t.Errorf("Expected %f, got %f", 127.0/32768.0, out[0])
		}
	})

	t.Run("32-bit full scale", func(t *testing.T) {
		out := Normalize([]float64{2147483648, -2147483648}, 32)
		if out[0] != 1 || out[1] != -1 {
			t.Errorf("Unexpected output: %v", out)
		}
	})

	t.Run("Unknown depth divides by peak", func(t *testing.T) {
		out := Normalize([]float64{5, -10, 2.5}, 0)
		want := []float64{0.5, -1, 0.25}
		for i, w := range want {
			if out[i] != w {
				t.Errorf("Sample %d: expected %f, got %f", i, w, out[i])
			}
		}
	})

	t.Run("All-zero buffer stays zero", func(t *testing.T) {
		out := Normalize([]float64{0, 0, 0}, 0)
		for i, v := range out {
			if v != 0 {
				t.Errorf("Sample %d: expected 0, got %f", i, v)
			}
		}
	})
}

func TestPrepareResamplesToTargetRate(t *testing.T) {
	// 10s at 16 kHz becomes 10s at 32 kHz: two full windows.
	buf := monoBuffer(16000, 16, make([]float64, 160000))

	windows, err := Prepare(buf)
	if err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}
	if len(windows) != 2 {
		t.Errorf("Expected 2 windows, got %d", len(windows))
	}
}
