// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"

	"github.com/ik5/ppsalign/audio"
)

const bytesPerSample = 4

// source wraps go-audio wav.Decoder to implement audio.Source
type source struct {
	r          io.ReadSeeker
	dec        *gowav.Decoder
	sampleRate int
	channels   int
	// dataStart is the byte offset of the first PCM sample
	dataStart int64
	pcmSize   int
	pos       int
	intBuf    *goaudio.IntBuffer
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return s.channels }
func (s *source) Len() int        { return s.pcmSize / bytesPerSample }

func (s *source) Close() error {
	if c, ok := s.r.(io.Closer); ok {
		if err := c.Close(); err != nil {
			return fmt.Errorf("%w", err)
		}
	}
	return nil
}

// Seek jumps straight to the byte offset of sample and re-limits the PCM
// chunk reader so the decoder stops at the end of the data chunk.
func (s *source) Seek(sample int) error {
	if sample < 0 || sample > s.Len() {
		return fmt.Errorf("%w: %d of %d", audio.ErrSeekOutOfRange, sample, s.Len())
	}

	off := int64(sample) * bytesPerSample
	if _, err := s.r.Seek(s.dataStart+off, io.SeekStart); err != nil {
		return fmt.Errorf("%w", err)
	}
	s.dec.PCMChunk.R = io.LimitReader(s.r, int64(s.pcmSize)-off)
	s.pos = sample

	return nil
}

func (s *source) ReadSamples(dst []int32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}

	if s.intBuf == nil || cap(s.intBuf.Data) < len(dst) {
		s.intBuf = &goaudio.IntBuffer{
			Data:   make([]int, len(dst)),
			Format: s.dec.Format(),
		}
	} else {
		s.intBuf.Data = s.intBuf.Data[:len(dst)]
	}

	n, err := s.dec.PCMBuffer(s.intBuf)
	if err != nil {
		return 0, fmt.Errorf("%w", err)
	}
	if n == 0 {
		return 0, io.EOF
	}

	for i := range n {
		dst[i] = int32(s.intBuf.Data[i])
	}
	s.pos += n

	return n, nil
}

// Decoder opens 32-bit integer PCM WAV shards.
type Decoder struct{}

func (Decoder) Decode(r io.ReadSeeker) (audio.Source, error) {
	dec := gowav.NewDecoder(r)
	dec.ReadInfo()
	if err := dec.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotWavFile, err)
	}
	if dec.NumChans == 0 {
		return nil, ErrNotWavFile
	}
	if dec.WavAudioFormat != 1 || dec.BitDepth != 32 {
		return nil, ErrOnlyPCM32bitSupported
	}

	if err := dec.FwdToPCM(); err != nil || dec.PCMChunk == nil {
		return nil, ErrUnsupportedWavChunks
	}

	// the PCM chunk reader reads straight from r, so r now sits on the
	// first sample
	dataStart, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	return &source{
		r:          r,
		dec:        dec,
		sampleRate: int(dec.SampleRate),
		channels:   int(dec.NumChans),
		dataStart:  dataStart,
		pcmSize:    dec.PCMSize,
	}, nil
}
