// SPDX-License-Identifier: EPL-2.0

package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ik5/ppsalign/audio"
	"github.com/ik5/ppsalign/clock"
)

// Segment is one contiguous output file of an extraction.
type Segment struct {
	Index        int
	VirtualStart int64
	VirtualEnd   int64
	Samples      int64
	Start        clock.Position
	Path         string
}

// SegmentWriter creates segment sinks and gives them their final name.
type SegmentWriter interface {
	// Open creates the sink for segment index and returns its working path.
	Open(index int) (audio.Sink, string, error)
	// Finalize is called after the sink was closed and returns the final
	// path of seg.
	Finalize(seg Segment) (string, error)
}

// FileSegments writes segments next to Base. Each segment is written to a
// working file and renamed by Name once complete.
type FileSegments struct {
	Base   string
	Create func(path string) (audio.Sink, error)
	// Name returns the final path of a segment. Nil selects SplicedName.
	Name func(base string, seg Segment) string
}

func (f *FileSegments) Open(index int) (audio.Sink, string, error) {
	path := partName(f.Base, index)
	sink, err := f.Create(path)
	if err != nil {
		return nil, "", fmt.Errorf("creating segment %d: %w", index, err)
	}
	return sink, path, nil
}

func (f *FileSegments) Finalize(seg Segment) (string, error) {
	name := f.Name
	if name == nil {
		name = func(base string, seg Segment) string {
			return SplicedName(base, seg.VirtualStart, seg.VirtualEnd)
		}
	}

	final := name(f.Base, seg)
	if err := os.Rename(seg.Path, final); err != nil {
		return seg.Path, fmt.Errorf("renaming segment %d: %w", seg.Index, err)
	}
	return final, nil
}

func split(base string) (stem, ext string) {
	ext = filepath.Ext(base)
	return strings.TrimSuffix(base, ext), ext
}

func partName(base string, index int) string {
	stem, ext := split(base)
	return fmt.Sprintf("%s.part%d%s", stem, index, ext)
}

// SplicedName is base with the virtual range of a segment appended to its
// stem: out.wav becomes out_<start>-<end>.wav.
func SplicedName(base string, start, end int64) string {
	stem, ext := split(base)
	return fmt.Sprintf("%s_%d-%d%s", stem, start, end, ext)
}

// TimestampName is base with the UTC start instant appended to its stem.
func TimestampName(base string, nanos int64) string {
	stem, ext := split(base)
	return stem + "_" + time.Unix(0, nanos).UTC().Format(time.RFC3339Nano) + ext
}

// DemuxName is the output path of one reconstructed tap: mic is 1-based.
func DemuxName(base string, mic, tap int) string {
	stem, ext := split(base)
	return fmt.Sprintf("%s_%d_%d%s", stem, mic, tap, ext)
}
