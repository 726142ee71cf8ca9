// SPDX-License-Identifier: EPL-2.0

package extract

import (
	"errors"
	"fmt"
	"io"

	"github.com/ik5/ppsalign/audio"
	"github.com/ik5/ppsalign/catalog"
	"github.com/ik5/ppsalign/clock"
)

const readSize = 8192

// Source describes the raw sample stream of an extraction: the shards from
// Start onward, read through Open.
type Source struct {
	Shards   catalog.Catalog
	Start    clock.Position
	Channels int
	Open     func(path string) (audio.Source, error)
}

// stream yields raw samples shard after shard together with the frame
// position of each sample.
type stream struct {
	src      Source
	channels int
	idx      int
	cur      audio.Source
	raw      int

	buf  []int32
	off  int
	fill int
}

func newStream(src Source) (*stream, error) {
	idx := src.Shards.IndexOf(src.Start.Shard)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrStartShard, src.Start.Shard.Name)
	}

	s := &stream{
		src:      src,
		channels: max(src.Channels, 1),
		idx:      idx,
		buf:      make([]int32, readSize),
	}
	if err := s.open(src.Start.Offset * s.channels); err != nil {
		s.Close()
		return nil, err
	}

	return s, nil
}

func (s *stream) open(raw int) error {
	shard := s.src.Shards[s.idx]
	cur, err := s.src.Open(shard.Path)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrReader, shard.Name, err)
	}
	if raw > 0 {
		if err := cur.Seek(raw); err != nil {
			cur.Close()
			return fmt.Errorf("%w: seeking %s: %w", ErrReader, shard.Name, err)
		}
	}

	s.cur, s.raw, s.off, s.fill = cur, raw, 0, 0
	return nil
}

// Next returns the next raw sample and its position. It returns io.EOF
// once the last shard is drained.
func (s *stream) Next() (clock.Position, int32, error) {
	for s.off >= s.fill {
		if s.cur == nil {
			return clock.Position{}, 0, io.EOF
		}

		n, err := s.cur.ReadSamples(s.buf)
		if n > 0 {
			s.off, s.fill = 0, n
			break
		}
		if err != nil && !errors.Is(err, io.EOF) {
			return clock.Position{}, 0, fmt.Errorf("%w: %s: %w", ErrReader, s.shard().Name, err)
		}

		s.cur.Close()
		s.cur = nil
		if s.idx+1 >= len(s.src.Shards) {
			return clock.Position{}, 0, io.EOF
		}
		s.idx++
		if err := s.open(0); err != nil {
			return clock.Position{}, 0, err
		}
	}

	pos := clock.Position{Shard: s.shard(), Offset: s.raw / s.channels}
	v := s.buf[s.off]
	s.off++
	s.raw++

	return pos, v, nil
}

// Index is the in-shard raw index of the sample last returned by Next.
func (s *stream) Index() int { return s.raw - 1 }

func (s *stream) shard() catalog.Shard { return s.src.Shards[s.idx] }

func (s *stream) Close() error {
	if s.cur == nil {
		return nil
	}
	err := s.cur.Close()
	s.cur = nil
	return err
}
