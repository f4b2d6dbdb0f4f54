package audio

import (
	"math"

	"github.com/reefradar/reefradar/pkg/reefradar/model"
)

// Pipeline policy constants, matching the SurfPerch model contract:
// 32 kHz mono input in 5.0-second windows of exactly 160,000 samples.
const (
	TargetRate    = 32000
	WindowSeconds = 5.0
	WindowSamples = TargetRate * 5 // 160,000

	// MinDuration is the shortest accepted recording; one model window.
	MinDuration = 5.0
	// MaxDuration bounds processing cost; longer uploads are rejected
	// before any resampling work happens.
	MaxDuration = 600.0
)

// Prepare validates a decoded buffer and turns it into model-ready windows:
// duration gate at native rate, mono downmix, amplitude normalization to
// [-1, 1], resample to TargetRate, and slicing into WindowSamples-length
// windows. A partial final window is zero-padded into one extra window only
// when it covers more than half a window; shorter remainders are dropped.
func Prepare(buf *Buffer) ([][]float64, error) {
	duration := buf.Duration()
	if duration < MinDuration {
		return nil, model.NewError(model.CodeAudioTooShort,
			"audio too short: %.2fs; minimum %.1fs required", duration, MinDuration)
	}
	if duration > MaxDuration {
		return nil, model.NewError(model.CodeAudioTooLong,
			"audio too long: %.2fs; maximum %.0fs allowed, split the recording into shorter segments",
			duration, MaxDuration)
	}

	mono := Downmix(buf.Samples)
	samples := Normalize(mono, buf.BitDepth)

	if buf.SampleRate != TargetRate {
		samples = Resample(samples, buf.SampleRate, TargetRate)
	}

	windows := Slice(samples)
	if len(windows) == 0 {
		// Step-1 duration can pass and still leave no usable window after
		// resampling precision loss.
		return nil, model.NewError(model.CodeAudioTooShort,
			"audio too short after processing: %.2fs at %d Hz; need at least one %.1fs window",
			float64(len(samples))/TargetRate, TargetRate, WindowSeconds)
	}
	return windows, nil
}

// Downmix reduces channel columns to mono by arithmetic mean per frame.
func Downmix(channels [][]float64) []float64 {
	if len(channels) == 1 {
		return channels[0]
	}
	frames := len(channels[0])
	out := make([]float64, frames)
	n := float64(len(channels))
	for i := 0; i < frames; i++ {
		var sum float64
		for ch := range channels {
			sum += channels[ch][i]
		}
		out[i] = sum / n
	}
	return out
}

// Normalize scales raw integer amplitudes to float [-1, 1]. 16-bit and 32-bit
// input divide by the type's full-scale magnitude; 8-bit input was widened
// into the int16 domain at decode and uses the 16-bit scale. Any other depth
// divides by the observed peak, leaving an all-zero buffer untouched.
func Normalize(samples []float64, bitDepth int) []float64 {
	out := make([]float64, len(samples))
	switch bitDepth {
	case 8, 16:
		for i, s := range samples {
			out[i] = s / 32768.0
		}
	case 32:
		for i, s := range samples {
			out[i] = s / 2147483648.0
		}
	default:
		var peak float64
		for _, s := range samples {
			if a := math.Abs(s); a > peak {
				peak = a
			}
		}
		if peak == 0 {
			return out
		}
		for i, s := range samples {
			out[i] = s / peak
		}
	}
	return out
}

// Slice cuts normalized samples into non-overlapping WindowSamples-length
// windows. A remainder longer than half a window is zero-padded into one
// final window; otherwise it is discarded.
func Slice(samples []float64) [][]float64 {
	full := len(samples) / WindowSamples
	windows := make([][]float64, 0, full+1)
	for i := 0; i < full; i++ {
		windows = append(windows, samples[i*WindowSamples:(i+1)*WindowSamples])
	}

	remainder := len(samples) % WindowSamples
	if remainder > WindowSamples/2 {
		padded := make([]float64, WindowSamples)
		copy(padded, samples[full*WindowSamples:])
		windows = append(windows, padded)
	}
	return windows
}
