package audio

// Resample converts samples from sourceRate to targetRate using linear
// interpolation. The output length is floor(len(samples)/sourceRate *
// targetRate). For output index i the continuous source position is
// i*sourceRate/targetRate; the integer part is clamped to [0, len-2] so the
// final interpolation pair always exists.
//
// The interpolation law is fixed: callers depend on it bit-for-bit, so do
// not "improve" the arithmetic here.
func Resample(samples []float64, sourceRate, targetRate int) []float64 {
	if sourceRate == targetRate {
		return samples
	}

	duration := float64(len(samples)) / float64(sourceRate)
	outLen := int(duration * float64(targetRate))
	out := make([]float64, outLen)
	if outLen == 0 {
		return out
	}

	maxIdx := len(samples) - 2
	for i := 0; i < outLen; i++ {
		pos := float64(i) * float64(sourceRate) / float64(targetRate)
		idx := int(pos)
		if idx > maxIdx {
			idx = maxIdx
		}
		if idx < 0 {
			idx = 0
		}
		frac := pos - float64(idx)
		out[i] = samples[idx]*(1-frac) + samples[idx+1]*frac
	}
	return out
}
