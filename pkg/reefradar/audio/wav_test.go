package audio

import (
	"encoding/binary"
	"testing"

	"github.com/reefradar/reefradar/pkg/reefradar/model"
)

// buildWav assembles a WAV container by hand so tests can produce malformed
// and multi-chunk layouts that Encode never emits.
func buildWav(rate, channels, bits int, payload []byte, leadingChunks ...[]byte) []byte {
	le := binary.LittleEndian

	fmtChunk := make([]byte, 0, 24)
	fmtChunk = append(fmtChunk, "fmt "...)
	fmtChunk = le.AppendUint32(fmtChunk, 16)
	fmtChunk = le.AppendUint16(fmtChunk, 1)
	fmtChunk = le.AppendUint16(fmtChunk, uint16(channels))
	fmtChunk = le.AppendUint32(fmtChunk, uint32(rate))
	fmtChunk = le.AppendUint32(fmtChunk, uint32(rate*channels*bits/8))
	fmtChunk = le.AppendUint16(fmtChunk, uint16(channels*bits/8))
	fmtChunk = le.AppendUint16(fmtChunk, uint16(bits))

	dataChunk := make([]byte, 0, 8+len(payload))
	dataChunk = append(dataChunk, "data"...)
	dataChunk = le.AppendUint32(dataChunk, uint32(len(payload)))
	dataChunk = append(dataChunk, payload...)

	var body []byte
	for _, c := range leadingChunks {
		body = append(body, c...)
	}
	body = append(body, fmtChunk...)
	body = append(body, dataChunk...)

	out := make([]byte, 0, 12+len(body))
	out = append(out, "RIFF"...)
	out = le.AppendUint32(out, uint32(4+len(body)))
	out = append(out, "WAVE"...)
	return append(out, body...)
}

func int16Payload(samples ...int16) []byte {
	out := make([]byte, 0, len(samples)*2)
	for _, s := range samples {
		out = binary.LittleEndian.AppendUint16(out, uint16(s))
	}
	return out
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	samples := []int16{0, 1, -1, 256, -256, 32767, -32768}

	buf, err := Decode(Encode(44100, samples))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if buf.SampleRate != 44100 {
		t.Errorf("Expected sample rate 44100, got %d", buf.SampleRate)
	}
	if buf.Channels != 1 {
		t.Errorf("Expected 1 channel, got %d", buf.Channels)
	}
	if buf.BitDepth != 16 {
		t.Errorf("Expected 16-bit depth, got %d", buf.BitDepth)
	}
	if buf.Frames() != len(samples) {
		t.Fatalf("Expected %d frames, got %d", len(samples), buf.Frames())
	}
	for i, want := range samples {
		if got := buf.Samples[0][i]; got != float64(want) {
			t.Errorf("Sample %d: expected %d, got %f", i, want, got)
		}
	}
}

func TestEncodeHeaderLayout(t *testing.T) {
	out := Encode(32000, []int16{1, 2, 3})

	if len(out) != 44+6 {
		t.Fatalf("Expected 50 bytes, got %d", len(out))
	}
	if string(out[0:4]) != "RIFF" || string(out[8:12]) != "WAVE" {
		t.Error("Missing RIFF/WAVE markers")
	}
	if got := binary.LittleEndian.Uint32(out[4:8]); got != 36+6 {
		t.Errorf("Expected RIFF size 42, got %d", got)
	}
	if got := binary.LittleEndian.Uint32(out[24:28]); got != 32000 {
		t.Errorf("Expected rate 32000, got %d", got)
	}
	if got := binary.LittleEndian.Uint32(out[28:32]); got != 64000 {
		t.Errorf("Expected byte rate 64000, got %d", got)
	}
	if got := binary.LittleEndian.Uint32(out[40:44]); got != 6 {
		t.Errorf("Expected data size 6, got %d", got)
	}
}

func TestDecodeInvalidContainer(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"Empty input", nil},
		{"Garbage", []byte("INVALID HEADER DATA")},
		{"Truncated header", []byte("RIFF")},
		{"Wrong format tag", append([]byte("RIFF\x00\x00\x00\x00"), "AIFF"...)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.data)
			if err == nil {
				t.Fatal("Expected error but got nil")
			}
			if !model.IsCode(err, model.CodeInvalidFormat) {
				t.Errorf("Expected code %s, got %s", model.CodeInvalidFormat, model.CodeOf(err))
			}
		})
	}
}

func TestDecodeUnsupportedBitDepth(t *testing.T) {
	data := buildWav(44100, 1, 24, make([]byte, 12))

	_, err := Decode(data)
	if err == nil {
		t.Fatal("Expected error for 24-bit input")
	}
	if !model.IsCode(err, model.CodeInvalidFormat) {
		t.Errorf("Expected code %s, got %s", model.CodeInvalidFormat, model.CodeOf(err))
	}
}

func TestDecodeMissingFormatChunk(t *testing.T) {
	le := binary.LittleEndian
	data := []byte("RIFF")
	data = le.AppendUint32(data, 16)
	data = append(data, "WAVE"...)
	data = append(data, "data"...)
	data = le.AppendUint32(data, 4)
	data = append(data, 0, 0, 0, 0)

	_, err := Decode(data)
	if err == nil {
		t.Fatal("Expected error for data chunk without fmt")
	}
	if !model.IsCode(err, model.CodeInvalidFormat) {
		t.Errorf("Expected code %s, got %s", model.CodeInvalidFormat, model.CodeOf(err))
	}
}

func TestDecodeSkipsUnknownChunks(t *testing.T) {
	le := binary.LittleEndian
	junk := []byte("LIST")
	junk = le.AppendUint32(junk, 6)
	junk = append(junk, "ignore"...)

	data := buildWav(22050, 1, 16, int16Payload(100, -100), junk)

	buf, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if buf.SampleRate != 22050 {
		t.Errorf("Expected rate 22050, got %d", buf.SampleRate)
	}
	if buf.Frames() != 2 {
		t.Fatalf("Expected 2 frames, got %d", buf.Frames())
	}
	if buf.Samples[0][0] != 100 || buf.Samples[0][1] != -100 {
		t.Errorf("Unexpected samples: %v", buf.Samples[0])
	}
}

func TestDecodeTruncatedChunk(t *testing.T) {
	data := buildWav(44100, 1, 16, int16Payload(1, 2, 3))
	// Chop the payload so the declared data size exceeds the file.
	data = data[:len(data)-2]

	_, err := Decode(data)
	if err == nil {
		t.Fatal("Expected error for truncated chunk")
	}
	if !model.IsCode(err, model.CodeInvalidFormat) {
		t.Errorf("Expected code %s, got %s", model.CodeInvalidFormat, model.CodeOf(err))
	}
}

func TestDecode8BitOffset(t *testing.T) {
	// 8-bit WAV stores unsigned samples offset by 128.
	data := buildWav(16000, 1, 8, []byte{128, 255, 0, 129})

	buf, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if buf.BitDepth != 8 {
		t.Errorf("Expected bit depth 8, got %d", buf.BitDepth)
	}

	want := []float64{0, 127, -128, 1}
	for i, w := range want {
		if got := buf.Samples[0][i]; got != w {
			t.Errorf("Sample %d: expected %f, got %f", i, w, got)
		}
	}
}

func TestDecode32Bit(t *testing.T) {
	le := binary.LittleEndian
	payload := le.AppendUint32(nil, uint32(int32(1<<30)))
	negOne := int32(-1)
	payload = le.AppendUint32(payload, uint32(negOne))

	buf, err := Decode(buildWav(48000, 1, 32, payload))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if buf.Samples[0][0] != float64(1<<30) {
		t.Errorf("Expected %f, got %f", float64(1<<30), buf.Samples[0][0])
	}
	if buf.Samples[0][1] != -1 {
		t.Errorf("Expected -1, got %f", buf.Samples[0][1])
	}
}

func TestDecodeStereoDeinterleave(t *testing.T) {
	// Interleaved L/R frames: (10, 20), (30, 40)
	data := buildWav(44100, 2, 16, int16Payload(10, 20, 30, 40))

	buf, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if buf.Channels != 2 {
		t.Fatalf("Expected 2 channels, got %d", buf.Channels)
	}
	if buf.Frames() != 2 {
		t.Fatalf("Expected 2 frames, got %d", buf.Frames())
	}

	if buf.Samples[0][0] != 10 || buf.Samples[0][1] != 30 {
		t.Errorf("Left channel wrong: %v", buf.Samples[0])
	}
	if buf.Samples[1][0] != 20 || buf.Samples[1][1] != 40 {
		t.Errorf("Right channel wrong: %v", buf.Samples[1])
	}
}
