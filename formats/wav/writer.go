// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"
	"io"
	"os"

	goaudio "github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"
)

// flushSize is the number of buffered samples that triggers a write.
const flushSize = 8192

// Writer encodes 32-bit integer PCM into a WAV container.
// It implements audio.Sink.
type Writer struct {
	w       io.WriteSeeker
	enc     *gowav.Encoder
	buf     *goaudio.IntBuffer
	written int64
	started bool
	closed  bool
}

// NewWriter wraps w. The WAV header is finalized on Close.
func NewWriter(w io.WriteSeeker, sampleRate, channels int) *Writer {
	return &Writer{
		w:   w,
		enc: gowav.NewEncoder(w, sampleRate, 32, channels, 1),
		buf: &goaudio.IntBuffer{
			Data:           make([]int, 0, flushSize),
			Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
			SourceBitDepth: 32,
		},
	}
}

// Create creates (or truncates) path and returns a Writer owning the file.
func Create(path string, sampleRate, channels int) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	return NewWriter(f, sampleRate, channels), nil
}

// Written is the number of samples accepted so far.
func (w *Writer) Written() int64 { return w.written }

func (w *Writer) WriteSamples(src []int32) error {
	for _, s := range src {
		w.buf.Data = append(w.buf.Data, int(s))
	}
	w.written += int64(len(src))

	if len(w.buf.Data) >= flushSize {
		return w.flush()
	}
	return nil
}

// flush writes every whole frame held in the buffer and keeps the rest.
func (w *Writer) flush() error {
	channels := w.buf.Format.NumChannels
	whole := len(w.buf.Data) - len(w.buf.Data)%channels

	pending := w.buf.Data[whole:]
	w.buf.Data = w.buf.Data[:whole]
	if err := w.enc.Write(w.buf); err != nil {
		return fmt.Errorf("%w", err)
	}
	w.started = true

	w.buf.Data = append(w.buf.Data[:0], pending...)
	return nil
}

// Close flushes buffered samples, fixes up the header sizes and closes the
// underlying writer when it is an io.Closer.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	partial := len(w.buf.Data)%w.buf.Format.NumChannels != 0
	if len(w.buf.Data) > 0 || !w.started {
		if err := w.flush(); err != nil {
			return err
		}
	}
	if err := w.enc.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}
	if c, ok := w.w.(io.Closer); ok {
		if err := c.Close(); err != nil {
			return fmt.Errorf("%w", err)
		}
	}
	if partial {
		return ErrPartialFrame
	}

	return nil
}
