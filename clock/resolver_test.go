// SPDX-License-Identifier: EPL-2.0

package clock

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ik5/ppsalign/catalog"
	"github.com/ik5/ppsalign/internal/shardtest"
	"github.com/ik5/ppsalign/marker"
	"github.com/ik5/ppsalign/table"
)

const (
	rate = 1000
	t0   = int64(1_700_000_000_000_000_000)
	ms   = int64(time.Millisecond)
)

// layout describes a synthetic shard directory: shard i starts at
// t0 + i*frames ms and carries a marker at each listed frame offset.
type layout struct {
	shards   int
	frames   int
	channels int
	markers  map[int][]int
}

func (l layout) start(i int) int64 { return t0 + int64(i*l.frames)*ms }

func (l layout) write(t *testing.T) (string, catalog.Catalog) {
	t.Helper()

	channels := max(l.channels, 1)
	dir := t.TempDir()
	for i := range l.shards {
		samples := shardtest.Ramp(1, l.frames*channels)
		for _, off := range l.markers[i] {
			shardtest.Put(samples, off*channels, shardtest.Marker(l.start(i)+int64(off)*ms)...)
		}
		shardtest.Write(t, dir, l.start(i), rate, channels, samples)
	}

	cat, err := catalog.List(dir, "wav", nil)
	require.NoError(t, err)
	return dir, cat
}

func newResolver(cat catalog.Catalog, channels int) *Resolver {
	return &Resolver{
		Catalog:    cat,
		Registry:   shardtest.Registry(),
		Channels:   channels,
		SampleRate: rate,
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func markerAt(t *testing.T, r *Resolver, shard catalog.Shard) marker.Marker {
	t.Helper()
	found := marker.ScanShard(r.Registry, shard, r.Channels, r.Logger)
	require.NotEmpty(t, found)
	return found[0]
}

func TestFindStart_OwnMarker(t *testing.T) {
	t.Parallel()

	_, cat := layout{shards: 2, frames: 1000, markers: map[int][]int{1: {500}}}.write(t)
	r := newResolver(cat, 1)
	m := markerAt(t, r, cat[1])

	pos, err := r.FindStart(m.Nanos, m, cat)
	require.NoError(t, err)
	assert.Equal(t, Position{Shard: cat[1], Offset: 500}, pos)
}

func TestFindStart_ForwardAcrossShards(t *testing.T) {
	t.Parallel()

	_, cat := layout{shards: 4, frames: 1000, markers: map[int][]int{1: {500}}}.write(t)
	r := newResolver(cat, 1)
	m := markerAt(t, r, cat[1])

	pos, err := r.FindStart(m.Nanos+1700*ms, m, cat)
	require.NoError(t, err)
	assert.Equal(t, Position{Shard: cat[3], Offset: 200}, pos)

	// landing exactly on a boundary opens the next shard
	pos, err = r.FindStart(m.Nanos+500*ms, m, cat)
	require.NoError(t, err)
	assert.Equal(t, Position{Shard: cat[2], Offset: 0}, pos)
}

func TestFindStart_BackwardAcrossShards(t *testing.T) {
	t.Parallel()

	_, cat := layout{shards: 4, frames: 1000, markers: map[int][]int{3: {100}}}.write(t)
	r := newResolver(cat, 1)
	m := markerAt(t, r, cat[3])

	pos, err := r.FindStart(m.Nanos-2500*ms, m, cat)
	require.NoError(t, err)
	assert.Equal(t, Position{Shard: cat[0], Offset: 600}, pos)

	pos, err = r.FindStart(m.Nanos-100*ms, m, cat)
	require.NoError(t, err)
	assert.Equal(t, Position{Shard: cat[3], Offset: 0}, pos)
}

func TestFindStart_Stereo(t *testing.T) {
	t.Parallel()

	_, cat := layout{shards: 2, frames: 1000, channels: 2, markers: map[int][]int{0: {900}}}.write(t)
	r := newResolver(cat, 2)
	m := markerAt(t, r, cat[0])
	require.Equal(t, 900, m.Offset)

	pos, err := r.FindStart(m.Nanos+250*ms, m, cat)
	require.NoError(t, err)
	assert.Equal(t, Position{Shard: cat[1], Offset: 150}, pos)
}

func TestFindStart_Exhausted(t *testing.T) {
	t.Parallel()

	_, cat := layout{shards: 2, frames: 1000, markers: map[int][]int{0: {10}}}.write(t)
	r := newResolver(cat, 1)
	m := markerAt(t, r, cat[0])

	_, err := r.FindStart(m.Nanos+5*int64(time.Second), m, cat)
	assert.ErrorIs(t, err, ErrStartNotFound)

	_, err = r.FindStart(m.Nanos-20*ms, m, cat)
	assert.ErrorIs(t, err, ErrStartNotFound)
}

func TestFindStart_SkipsUnreadableShards(t *testing.T) {
	t.Parallel()

	l := layout{shards: 4, frames: 1000, markers: map[int][]int{1: {500}}}
	dir, _ := l.write(t)
	junk := filepath.Join(dir, strconv.FormatInt(l.start(1)+700*ms, 10)+".wav")
	require.NoError(t, os.WriteFile(junk, []byte("not audio"), 0o600))

	cat, err := catalog.List(dir, "wav", nil)
	require.NoError(t, err)
	require.Len(t, cat, 5)

	r := newResolver(cat, 1)
	m := markerAt(t, r, cat[1])

	pos, err := r.FindStart(m.Nanos+1700*ms, m, cat)
	require.NoError(t, err)
	assert.Equal(t, l.start(3), pos.Shard.Nanos)
	assert.Equal(t, 200, pos.Offset)

	// the marker's own shard has to open
	bad := marker.Marker{Nanos: l.start(1) + 700*ms, Shard: cat[2]}
	_, err = r.FindStart(bad.Nanos, bad, cat)
	assert.Error(t, err)
}

func TestFindStart_BackwardFromUnreadableMarkerShard(t *testing.T) {
	t.Parallel()

	l := layout{shards: 2, frames: 1000}
	dir, _ := l.write(t)
	junk := filepath.Join(dir, strconv.FormatInt(l.start(1)+500*ms, 10)+".wav")
	require.NoError(t, os.WriteFile(junk, []byte("not audio"), 0o600))

	cat, err := catalog.List(dir, "wav", nil)
	require.NoError(t, err)
	require.Len(t, cat, 3)

	r := newResolver(cat, 1)
	m := marker.Marker{Nanos: cat[2].Nanos, Shard: cat[2]}

	// walking backward never needs the length of the marker's shard
	pos, err := r.FindStart(m.Nanos-200*ms, m, cat)
	require.NoError(t, err)
	assert.Equal(t, Position{Shard: cat[1], Offset: 800}, pos)
}

func TestFindBest_Closest(t *testing.T) {
	t.Parallel()

	_, cat := layout{shards: 4, frames: 1000, markers: map[int][]int{
		1: {0, 500},
		2: {0, 500},
	}}.write(t)
	r := newResolver(cat, 1)

	target := t0 + 2300*ms
	best, err := r.FindBest(target)
	require.NoError(t, err)

	assert.True(t, best.Found)
	assert.Equal(t, cat[2], best.Marker.Shard)
	assert.Equal(t, 500, best.Marker.Offset)
	assert.Equal(t, 200*ms, best.Distance)
	assert.Len(t, best.Candidates, 4)
	assert.Equal(t, 4, best.Scanned)
}

func TestFindBest_EarlyExit(t *testing.T) {
	t.Parallel()

	markers := map[int][]int{}
	for i := range 20 {
		markers[i] = []int{0}
	}
	l := layout{shards: 20, frames: 10, markers: markers}
	_, cat := l.write(t)
	r := newResolver(cat, 1)

	// exact hit in the first shard: stop after six
	best, err := r.FindBest(t0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), best.Distance)
	assert.Equal(t, 6, best.Scanned)
	assert.Len(t, best.Candidates, 20)

	// only coarse matches: stop after sixteen
	best, err = r.FindBest(t0 + 30*int64(time.Second))
	require.NoError(t, err)
	assert.Equal(t, 16, best.Scanned)
	assert.Equal(t, cat[15], best.Marker.Shard)
}

func TestFindBest_NotFound(t *testing.T) {
	t.Parallel()

	_, cat := layout{shards: 3, frames: 100}.write(t)
	r := newResolver(cat, 1)

	best, err := r.FindBest(t0)
	assert.ErrorIs(t, err, ErrMarkerNotFound)
	assert.False(t, best.Found)
	assert.Len(t, best.Candidates, 3)

	// nothing starts inside the look back window
	r.LookBack = time.Second
	best, err = r.FindBest(t0 + 10*int64(time.Second))
	assert.ErrorIs(t, err, ErrMarkerNotFound)
	assert.Empty(t, best.Candidates)
}

func TestLocate(t *testing.T) {
	t.Parallel()

	_, cat := layout{shards: 3, frames: 1000, markers: map[int][]int{1: {250}}}.write(t)
	r := newResolver(cat, 1)

	pos, err := r.Locate(t0 + 1900*ms)
	require.NoError(t, err)
	assert.Equal(t, Position{Shard: cat[1], Offset: 900}, pos)
}

func TestLocate_Anchors(t *testing.T) {
	t.Parallel()

	// no in-band markers at all
	_, cat := layout{shards: 3, frames: 1000}.write(t)

	rows := []table.Association{
		{Time: t0 + 100*ms, FileSample: 100, File: cat[0].Name},
		{Time: t0 + 1100*ms, FileSample: 100, File: cat[1].Name},
	}
	anchors, err := AnchorsFromAssociations(rows, cat)
	require.NoError(t, err)
	require.Len(t, anchors, 2)

	r := newResolver(cat, 1)
	r.Anchors = anchors

	pos, err := r.Locate(t0 + 1300*ms)
	require.NoError(t, err)
	assert.Equal(t, Position{Shard: cat[1], Offset: 300}, pos)
}

func TestAnchorsFromAssociations_UnknownShard(t *testing.T) {
	t.Parallel()

	cat := catalog.Catalog{{Name: "1.wav", Nanos: 1}}
	_, err := AnchorsFromAssociations([]table.Association{{File: "2.wav"}}, cat)
	assert.ErrorIs(t, err, ErrUnknownShard)
	assert.ErrorIs(t, err, catalog.ErrShardNotFound)
}

func TestPosition_Compare(t *testing.T) {
	t.Parallel()

	a := Position{Shard: catalog.Shard{Nanos: 1}, Offset: 900}
	b := Position{Shard: catalog.Shard{Nanos: 2}, Offset: 0}
	c := Position{Shard: catalog.Shard{Nanos: 2}, Offset: 5}

	assert.True(t, a.Before(b))
	assert.True(t, b.Before(c))
	assert.False(t, c.Before(a))
	assert.Equal(t, 0, c.Compare(c))
}
