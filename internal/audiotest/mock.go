// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"errors"
	"io"
	"sync"
)

var errClosed = errors.New("audiotest: sink closed")

// MemSource is a test helper serving interleaved 32-bit samples from memory.
// It implements the audio.Source interface (without importing it to avoid cycles).
type MemSource struct {
	sampleRate int
	channels   int
	data       []int32
	pos        int
	closed     bool
}

// NewMemSource creates a new in-memory source over data.
func NewMemSource(sampleRate, channels int, data []int32) *MemSource {
	return &MemSource{
		sampleRate: sampleRate,
		channels:   channels,
		data:       data,
	}
}

// NewRampSource creates a source whose i-th sample has value start+i.
func NewRampSource(sampleRate, channels, total int, start int32) *MemSource {
	data := make([]int32, total)
	for i := range data {
		data[i] = start + int32(i)
	}
	return NewMemSource(sampleRate, channels, data)
}

func (m *MemSource) SampleRate() int { return m.sampleRate }
func (m *MemSource) Channels() int   { return m.channels }
func (m *MemSource) Len() int        { return len(m.data) }
func (m *MemSource) Close() error    { m.closed = true; return nil }

// Closed reports whether Close was called.
func (m *MemSource) Closed() bool { return m.closed }

func (m *MemSource) Seek(sample int) error {
	if sample < 0 || sample > len(m.data) {
		return io.ErrUnexpectedEOF
	}
	m.pos = sample
	return nil
}

func (m *MemSource) ReadSamples(dst []int32) (int, error) {
	if m.pos >= len(m.data) {
		return 0, io.EOF
	}

	n := copy(dst, m.data[m.pos:])
	m.pos += n
	return n, nil
}

// MemSink collects written samples in memory.
// It implements the audio.Sink interface.
type MemSink struct {
	mtx     sync.Mutex
	samples []int32
	closed  bool
}

func (s *MemSink) WriteSamples(src []int32) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if s.closed {
		return errClosed
	}
	s.samples = append(s.samples, src...)
	return nil
}

func (s *MemSink) Close() error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.closed = true
	return nil
}

// Samples returns a copy of everything written so far.
func (s *MemSink) Samples() []int32 {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	out := make([]int32, len(s.samples))
	copy(out, s.samples)
	return out
}

// Closed reports whether Close was called.
func (s *MemSink) Closed() bool {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	return s.closed
}
