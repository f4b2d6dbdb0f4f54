package audio

import (
	"encoding/binary"

	"github.com/reefradar/reefradar/pkg/reefradar/model"
)

// Buffer holds decoded PCM audio. Samples are deinterleaved into one column
// per channel and carried as raw integer amplitudes (float64-typed so that
// downstream math never re-converts). 8-bit input is stored offset-corrected
// in the int16 domain; BitDepth still records the container's declared depth.
type Buffer struct {
	SampleRate int
	Channels   int
	BitDepth   int
	Samples    [][]float64
}

// Frames returns the number of sample frames per channel.
func (b *Buffer) Frames() int {
	if len(b.Samples) == 0 {
		return 0
	}
	return len(b.Samples[0])
}

// Duration returns the buffer length in seconds at its native rate.
func (b *Buffer) Duration() float64 {
	if b.SampleRate == 0 {
		return 0
	}
	return float64(b.Frames()) / float64(b.SampleRate)
}

// Decode parses a PCM WAV container (8/16/32-bit, any channel count).
// It validates the RIFF/WAVE markers, walks chunks by declared size, and
// stops at the first data chunk found after a fmt chunk. Unknown chunks are
// skipped. All failures carry the INVALID_AUDIO_FORMAT code.
func Decode(data []byte) (*Buffer, error) {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, model.NewError(model.CodeInvalidFormat,
			"not a valid WAV file: missing container/format marker")
	}

	var (
		fmtSeen    bool
		channels   int
		sampleRate int
		bitDepth   int
		payload    []byte
	)

	pos := 12
	for pos+8 <= len(data) {
		id := string(data[pos : pos+4])
		size := int(binary.LittleEndian.Uint32(data[pos+4 : pos+8]))
		pos += 8

		if size < 0 || pos+size > len(data) {
			return nil, model.NewError(model.CodeInvalidFormat,
				"malformed WAV file: chunk %q exceeds file size", id)
		}
		body := data[pos : pos+size]
		pos += size

		switch id {
		case "fmt ":
			if size < 16 {
				return nil, model.NewError(model.CodeInvalidFormat,
					"malformed WAV file: fmt chunk too small (%d bytes)", size)
			}
			channels = int(binary.LittleEndian.Uint16(body[2:4]))
			sampleRate = int(binary.LittleEndian.Uint32(body[4:8]))
			bitDepth = int(binary.LittleEndian.Uint16(body[14:16]))
			if bitDepth != 8 && bitDepth != 16 && bitDepth != 32 {
				return nil, model.NewError(model.CodeInvalidFormat,
					"unsupported bit depth: %d-bit; supported formats: 8-bit, 16-bit, 32-bit PCM", bitDepth)
			}
			fmtSeen = true

		case "data":
			if !fmtSeen {
				return nil, model.NewError(model.CodeInvalidFormat,
					"invalid WAV file: missing format chunk before data")
			}
			payload = body
		}

		// First data chunk after a fmt chunk ends the walk.
		if payload != nil {
			break
		}
	}

	if !fmtSeen || payload == nil {
		return nil, model.NewError(model.CodeInvalidFormat,
			"invalid WAV file: missing format chunk")
	}
	if channels < 1 || sampleRate < 1 {
		return nil, model.NewError(model.CodeInvalidFormat,
			"invalid WAV file: %d channels at %d Hz", channels, sampleRate)
	}

	flat := decodeSamples(payload, bitDepth)

	// Deinterleave into channel columns, dropping any trailing partial frame.
	frames := len(flat) / channels
	cols := make([][]float64, channels)
	for ch := 0; ch < channels; ch++ {
		cols[ch] = make([]float64, frames)
	}
	for i := 0; i < frames; i++ {
		for ch := 0; ch < channels; ch++ {
			cols[ch][i] = flat[i*channels+ch]
		}
	}

	return &Buffer{
		SampleRate: sampleRate,
		Channels:   channels,
		BitDepth:   bitDepth,
		Samples:    cols,
	}, nil
}

func decodeSamples(payload []byte, bitDepth int) []float64 {
	switch bitDepth {
	case 8:
		// Unsigned, offset by 128. Widened into the int16 domain so that
		// downstream normalization treats it like 16-bit data.
		out := make([]float64, len(payload))
		for i, b := range payload {
			out[i] = float64(int16(b) - 128)
		}
		return out
	case 32:
		n := len(payload) / 4
		out := make([]float64, n)
		for i := 0; i < n; i++ {
			out[i] = float64(int32(binary.LittleEndian.Uint32(payload[i*4 : i*4+4])))
		}
		return out
	default: // 16
		n := len(payload) / 2
		out := make([]float64, n)
		for i := 0; i < n; i++ {
			out[i] = float64(int16(binary.LittleEndian.Uint16(payload[i*2 : i*2+2])))
		}
		return out
	}
}

// Encode writes mono 16-bit PCM samples as a minimal WAV container. The
// layout round-trips through Decode to the original rate, one channel,
// 16-bit depth and identical samples.
func Encode(sampleRate int, samples []int16) []byte {
	const (
		numChannels   = 1
		bitsPerSample = 16
	)
	blockAlign := numChannels * bitsPerSample / 8
	byteRate := sampleRate * blockAlign
	dataSize := len(samples) * 2

	buf := make([]byte, 0, 44+dataSize)
	le := binary.LittleEndian

	buf = append(buf, "RIFF"...)
	buf = le.AppendUint32(buf, uint32(36+dataSize))
	buf = append(buf, "WAVE"...)

	buf = append(buf, "fmt "...)
	buf = le.AppendUint32(buf, 16)
	buf = le.AppendUint16(buf, 1) // PCM
	buf = le.AppendUint16(buf, numChannels)
	buf = le.AppendUint32(buf, uint32(sampleRate))
	buf = le.AppendUint32(buf, uint32(byteRate))
	buf = le.AppendUint16(buf, uint16(blockAlign))
	buf = le.AppendUint16(buf, bitsPerSample)

	buf = append(buf, "data"...)
	buf = le.AppendUint32(buf, uint32(dataSize))
	for _, s := range samples {
		buf = le.AppendUint16(buf, uint16(s))
	}
	return buf
}
