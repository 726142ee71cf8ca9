// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-audio/aiff"
	goaudio "github.com/go-audio/audio"

	"github.com/ik5/ppsalign/audio"
)

// discardSize bounds the scratch buffer used when seeking forward.
const discardSize = 4096

// aiffReader is an interface for aiff.Decoder to allow testing
type aiffReader interface {
	Format() *goaudio.Format
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

// source wraps go-audio aiff.Decoder to implement audio.Source.
// The decoder streams the SSND chunk, so it can only move forward.
type source struct {
	dec        aiffReader
	closer     io.Closer
	sampleRate int
	channels   int
	total      int
	pos        int
	intBuf     *goaudio.IntBuffer
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return s.channels }
func (s *source) Len() int        { return s.total }

func (s *source) Close() error {
	if s.closer == nil {
		return nil
	}
	if err := s.closer.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

// Seek skips forward to sample by decoding and discarding.
func (s *source) Seek(sample int) error {
	if sample < 0 || sample > s.total {
		return fmt.Errorf("%w: %d of %d", audio.ErrSeekOutOfRange, sample, s.total)
	}
	if sample < s.pos {
		return fmt.Errorf("%w: %d < %d", audio.ErrSeekBackward, sample, s.pos)
	}

	scratch := make([]int32, min(discardSize, max(sample-s.pos, 1)))
	for s.pos < sample {
		n, err := s.ReadSamples(scratch[:min(len(scratch), sample-s.pos)])
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: stream ended at %d", audio.ErrSeekOutOfRange, s.pos)
		}
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("%w: stream stalled at %d", audio.ErrSeekOutOfRange, s.pos)
		}
	}

	return nil
}

func (s *source) ReadSamples(dst []int32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}
	if s.pos >= s.total {
		return 0, io.EOF
	}
	want := min(len(dst), s.total-s.pos)

	if s.intBuf == nil || cap(s.intBuf.Data) < want {
		s.intBuf = &goaudio.IntBuffer{
			Data:   make([]int, want),
			Format: s.dec.Format(),
		}
	} else {
		s.intBuf.Data = s.intBuf.Data[:want]
	}

	n, err := s.dec.PCMBuffer(s.intBuf)
	if n == 0 {
		if err != nil && !errors.Is(err, io.EOF) {
			return 0, fmt.Errorf("%w", err)
		}
		return 0, io.EOF
	}

	// the low 32 bits carry the sample whether the decoder sign-extends or not
	for i := range n {
		dst[i] = int32(s.intBuf.Data[i])
	}
	s.pos += n

	return n, nil
}

// Decoder opens 32-bit integer PCM AIFF shards.
type Decoder struct{}

func (Decoder) Decode(r io.ReadSeeker) (audio.Source, error) {
	dec := aiff.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, ErrNotAiffFile
	}

	dec.ReadInfo()
	if err := dec.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotAiffFile, err)
	}

	if dec.BitDepth != 32 {
		return nil, ErrOnlyPCM32bitSupported
	}

	format := dec.Format()
	if format == nil || format.NumChannels == 0 {
		return nil, ErrUnsupportedAiffLayout
	}

	src := &source{
		dec:        dec,
		sampleRate: format.SampleRate,
		channels:   format.NumChannels,
		total:      int(dec.NumSampleFrames) * format.NumChannels,
	}
	if c, ok := r.(io.Closer); ok {
		src.closer = c
	}

	return src, nil
}
