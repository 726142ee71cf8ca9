// SPDX-License-Identifier: EPL-2.0

package marker

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/ik5/ppsalign/audio"
	"github.com/ik5/ppsalign/catalog"
	"github.com/ik5/ppsalign/utils"
)

// SentinelBits opens every in-band marker.
const SentinelBits uint32 = 0xEEEEEEEE

// Sentinel is SentinelBits as a signed sample.
const Sentinel = int32(-286331154)

const readSize = 4096

// IsSentinel reports whether sample carries the marker sentinel.
func IsSentinel(sample int32) bool { return uint32(sample) == SentinelBits }

// Marker is a wall clock timestamp found inside a shard. Offset is the frame
// index of the sentinel.
type Marker struct {
	Nanos  int64
	Offset int
	Shard  catalog.Shard
}

type state uint8

const (
	idle state = iota
	awaitLow
	awaitHigh
)

// Scanner recognises markers in a raw interleaved stream fed one sample at
// a time.
type Scanner struct {
	Shard    catalog.Shard
	Channels int

	state state
	index int
	start int
	low   int32
}

// NewScanner returns a scanner attributing markers to shard.
func NewScanner(shard catalog.Shard, channels int) *Scanner {
	return &Scanner{Shard: shard, Channels: max(channels, 1)}
}

// Feed consumes the next raw sample and returns a marker when sample
// completes one. A sentinel seen while a marker is pending restarts it.
func (s *Scanner) Feed(sample int32) (Marker, bool) {
	at := s.index
	s.index++

	if IsSentinel(sample) {
		s.state = awaitLow
		s.start = at
		return Marker{}, false
	}

	switch s.state {
	case awaitLow:
		s.low = sample
		s.state = awaitHigh
	case awaitHigh:
		s.state = idle
		return Marker{
			Nanos:  utils.PackNanos(s.low, sample),
			Offset: s.start / s.Channels,
			Shard:  s.Shard,
		}, true
	}

	return Marker{}, false
}

// Pending reports whether a marker was started but not completed.
func (s *Scanner) Pending() bool { return s.state != idle }

// Scan reads src to the end and returns its markers in stream order.
// A marker cut off by the end of the stream is dropped.
func Scan(src audio.Source, shard catalog.Shard, channels int) ([]Marker, error) {
	sc := NewScanner(shard, channels)
	buf := make([]int32, readSize)

	var found []Marker
	for {
		n, err := src.ReadSamples(buf)
		for _, v := range buf[:n] {
			if m, ok := sc.Feed(v); ok {
				found = append(found, m)
			}
		}
		if errors.Is(err, io.EOF) {
			return found, nil
		}
		if err != nil {
			return found, fmt.Errorf("scanning %s: %w", shard.Name, err)
		}
		if n == 0 {
			return found, nil
		}
	}
}

// ScanShard opens shard through reg and scans it. A shard that cannot be
// opened or read yields no markers; the failure is logged.
func ScanShard(reg *audio.Registry, shard catalog.Shard, channels int, logger *slog.Logger) []Marker {
	if logger == nil {
		logger = slog.Default()
	}

	src, err := reg.Open(shard.Path)
	if err != nil {
		logger.Warn("cannot open shard", "shard", shard.Name, "error", err)
		return nil
	}
	defer src.Close()

	found, err := Scan(src, shard, channels)
	if err != nil {
		logger.Warn("cannot read shard", "shard", shard.Name, "error", err)
		return nil
	}
	logger.Debug("scanned shard", "shard", shard.Name, "markers", len(found))

	return found
}
