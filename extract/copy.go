// SPDX-License-Identifier: EPL-2.0

package extract

import (
	"errors"
	"fmt"
	"io"

	"github.com/ik5/ppsalign/audio"
)

// CopyRange copies count raw samples of src starting at raw index start
// into dst. It returns the number copied, which is short when src ends
// first.
func CopyRange(src audio.Source, dst audio.Sink, start, count int) (int, error) {
	if err := src.Seek(start); err != nil {
		return 0, fmt.Errorf("seeking to %d: %w", start, err)
	}

	buf := make([]int32, min(readSize, max(count, 1)))
	copied := 0
	for copied < count {
		n, err := src.ReadSamples(buf[:min(len(buf), count-copied)])
		if n > 0 {
			if werr := dst.WriteSamples(buf[:n]); werr != nil {
				return copied, fmt.Errorf("writing: %w", werr)
			}
			copied += n
		}
		if errors.Is(err, io.EOF) || (err == nil && n == 0) {
			break
		}
		if err != nil {
			return copied, fmt.Errorf("reading: %w", err)
		}
	}

	return copied, nil
}
