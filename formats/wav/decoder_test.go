// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"testing"

	"github.com/ik5/ppsalign/audio"
)

// createWAVFile builds a minimal canonical WAV file around samples.
func createWAVFile(sampleRate, channels, bitsPerSample int, samples []int32) []byte {
	buf := new(bytes.Buffer)

	bytesPer := bitsPerSample / 8
	byteRate := uint32(sampleRate * channels * bytesPer)
	blockAlign := uint16(channels * bytesPer)
	dataSize := uint32(len(samples) * bytesPer)

	buf.WriteString("RIFF")
	binary.Write(buf, binary.LittleEndian, 36+dataSize)
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(buf, binary.LittleEndian, uint32(16))
	binary.Write(buf, binary.LittleEndian, uint16(1))
	binary.Write(buf, binary.LittleEndian, uint16(channels))
	binary.Write(buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(buf, binary.LittleEndian, byteRate)
	binary.Write(buf, binary.LittleEndian, blockAlign)
	binary.Write(buf, binary.LittleEndian, uint16(bitsPerSample))

	buf.WriteString("data")
	binary.Write(buf, binary.LittleEndian, dataSize)
	for _, s := range samples {
		switch bitsPerSample {
		case 16:
			binary.Write(buf, binary.LittleEndian, int16(s))
		default:
			binary.Write(buf, binary.LittleEndian, s)
		}
	}

	return buf.Bytes()
}

func readAll(t *testing.T, src audio.Source) []int32 {
	t.Helper()

	var out []int32
	buf := make([]int32, 5)
	for {
		n, err := src.ReadSamples(buf)
		out = append(out, buf[:n]...)
		if errors.Is(err, io.EOF) {
			return out
		}
		if err != nil {
			t.Fatalf("ReadSamples() error = %v", err)
		}
	}
}

func TestDecoder_ValidWAVFile(t *testing.T) {
	t.Parallel()

	samples := []int32{0, 1, -1, math.MaxInt32, math.MinInt32, int32(-286331154)}
	data := createWAVFile(48000, 1, 32, samples)

	src, err := Decoder{}.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	defer src.Close()

	if src.SampleRate() != 48000 {
		t.Errorf("SampleRate() = %d, want 48000", src.SampleRate())
	}
	if src.Channels() != 1 {
		t.Errorf("Channels() = %d, want 1", src.Channels())
	}
	if src.Len() != len(samples) {
		t.Errorf("Len() = %d, want %d", src.Len(), len(samples))
	}

	got := readAll(t, src)
	if len(got) != len(samples) {
		t.Fatalf("read %d samples, want %d", len(got), len(samples))
	}
	for i := range samples {
		if got[i] != samples[i] {
			t.Errorf("sample %d = %d, want %d", i, got[i], samples[i])
		}
	}
}

func TestDecoder_StereoWAVFile(t *testing.T) {
	t.Parallel()

	samples := []int32{10, -10, 20, -20}
	src, err := Decoder{}.Decode(bytes.NewReader(createWAVFile(8000, 2, 32, samples)))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	if src.Channels() != 2 {
		t.Errorf("Channels() = %d, want 2", src.Channels())
	}
	if got := audio.Frames(src, src.Channels()); got != 2 {
		t.Errorf("Frames() = %d, want 2", got)
	}
}

func TestDecoder_NotWAVFile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data []byte
	}{
		{"garbage", []byte("this is definitely not a wav file")},
		{"empty", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Decoder{}.Decode(bytes.NewReader(tt.data))
			if !errors.Is(err, ErrNotWavFile) {
				t.Errorf("Decode() error = %v, want %v", err, ErrNotWavFile)
			}
		})
	}
}

func TestDecoder_Rejects16Bit(t *testing.T) {
	t.Parallel()

	data := createWAVFile(44100, 1, 16, []int32{1, 2, 3})
	_, err := Decoder{}.Decode(bytes.NewReader(data))
	if !errors.Is(err, ErrOnlyPCM32bitSupported) {
		t.Errorf("Decode() error = %v, want %v", err, ErrOnlyPCM32bitSupported)
	}
}

func TestDecoder_MissingDataChunk(t *testing.T) {
	t.Parallel()

	data := createWAVFile(44100, 1, 32, nil)
	// drop the "data" chunk header
	data = data[:len(data)-8]

	_, err := Decoder{}.Decode(bytes.NewReader(data))
	if !errors.Is(err, ErrUnsupportedWavChunks) {
		t.Errorf("Decode() error = %v, want %v", err, ErrUnsupportedWavChunks)
	}
}

func TestSource_Seek(t *testing.T) {
	t.Parallel()

	samples := []int32{100, 101, 102, 103, 104, 105, 106}
	src, err := Decoder{}.Decode(bytes.NewReader(createWAVFile(1000, 1, 32, samples)))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	// read forward first so the seek has to rewind
	buf := make([]int32, 6)
	if _, err := src.ReadSamples(buf); err != nil {
		t.Fatalf("ReadSamples() error = %v", err)
	}

	if err := src.Seek(3); err != nil {
		t.Fatalf("Seek(3) error = %v", err)
	}
	got := readAll(t, src)
	want := samples[3:]
	if len(got) != len(want) {
		t.Fatalf("read %d samples after Seek(3), want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d = %d, want %d", i, got[i], want[i])
		}
	}

	if err := src.Seek(len(samples)); err != nil {
		t.Fatalf("Seek(end) error = %v", err)
	}
	if n, err := src.ReadSamples(buf); n != 0 || !errors.Is(err, io.EOF) {
		t.Errorf("ReadSamples() at end = (%d, %v), want (0, EOF)", n, err)
	}
}

func TestSource_SeekOutOfRange(t *testing.T) {
	t.Parallel()

	src, err := Decoder{}.Decode(bytes.NewReader(createWAVFile(1000, 1, 32, []int32{1, 2})))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	for _, pos := range []int{-1, 3} {
		if err := src.Seek(pos); !errors.Is(err, audio.ErrSeekOutOfRange) {
			t.Errorf("Seek(%d) error = %v, want %v", pos, err, audio.ErrSeekOutOfRange)
		}
	}
}

func TestSource_ReadSamples_EmptyBuffer(t *testing.T) {
	t.Parallel()

	src, err := Decoder{}.Decode(bytes.NewReader(createWAVFile(1000, 1, 32, []int32{1})))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	n, err := src.ReadSamples(nil)
	if n != 0 || err != nil {
		t.Errorf("ReadSamples(nil) = (%d, %v), want (0, nil)", n, err)
	}
}
