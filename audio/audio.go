// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Source is a random-access reader over interleaved 32-bit signed PCM.
type Source interface {
	// SampleRate of the PCM stream in Hz.
	SampleRate() int
	// Channels count as declared by the container.
	Channels() int
	// Len is the total number of interleaved samples (not frames).
	Len() int
	// Seek positions the reader at an interleaved sample index.
	Seek(sample int) error
	// ReadSamples fills dst with the next interleaved samples.
	// When n == 0 with err == io.EOF, the stream is finished.
	ReadSamples(dst []int32) (n int, err error)

	// Close releases any resources.
	Close() error
}

// Sink receives 32-bit samples sequentially.
type Sink interface {
	WriteSamples(src []int32) error
	Close() error
}

// Decoder constructs a Source from a seekable input.
type Decoder interface {
	Decode(r io.ReadSeeker) (Source, error)
}

// Registry for decoders by file extension (e.g., "wav", "aiff").
type Registry struct {
	codecs map[string]Decoder

	mtx *sync.Mutex
}

func NewRegistry() *Registry {
	return &Registry{
		codecs: make(map[string]Decoder),
		mtx:    &sync.Mutex{},
	}
}

func (r *Registry) Register(format string, d Decoder) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.codecs[strings.ToLower(format)] = d
}

func (r *Registry) Get(format string) (Decoder, bool) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	d, ok := r.codecs[strings.ToLower(format)]
	return d, ok
}

// Open decodes the file at path with the decoder registered for its
// extension. The returned Source owns the file and closes it on Close.
func (r *Registry) Open(path string) (Source, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	dec, ok := r.Get(ext)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	src, err := dec.Decode(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}

	return src, nil
}

// Frames is the per-channel length of src when it carries channels
// interleaved channels. A non-positive channels falls back to the
// container's own count.
func Frames(src Source, channels int) int {
	if channels <= 0 {
		channels = src.Channels()
	}
	if channels <= 0 {
		return 0
	}

	return src.Len() / channels
}
