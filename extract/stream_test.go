// SPDX-License-Identifier: EPL-2.0

package extract

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ik5/ppsalign/audio"
	"github.com/ik5/ppsalign/catalog"
	"github.com/ik5/ppsalign/clock"
	"github.com/ik5/ppsalign/internal/audiotest"
)

var errMissing = errors.New("no such shard")

// memShards serves shard i of a catalog from data[i].
func memShards(channels int, data ...[]int32) (catalog.Catalog, func(string) (audio.Source, error)) {
	cat := make(catalog.Catalog, len(data))
	byPath := make(map[string][]int32, len(data))
	for i, d := range data {
		name := fmt.Sprintf("%d.wav", (i+1)*1000)
		cat[i] = catalog.Shard{Path: "/mem/" + name, Name: name, Nanos: int64((i + 1) * 1000)}
		if d != nil {
			byPath[cat[i].Path] = d
		}
	}

	open := func(path string) (audio.Source, error) {
		d, ok := byPath[path]
		if !ok {
			return nil, errMissing
		}
		return audiotest.NewMemSource(1000, channels, d), nil
	}
	return cat, open
}

func drain(t *testing.T, st *stream) ([]clock.Position, []int32) {
	t.Helper()

	var (
		pos []clock.Position
		out []int32
	)
	for {
		p, v, err := st.Next()
		if errors.Is(err, io.EOF) {
			return pos, out
		}
		require.NoError(t, err)
		pos = append(pos, p)
		out = append(out, v)
	}
}

func TestStream_AcrossShards(t *testing.T) {
	t.Parallel()

	cat, open := memShards(1, []int32{1, 2, 3}, []int32{}, []int32{4, 5})
	st, err := newStream(Source{
		Shards:   cat,
		Start:    clock.Position{Shard: cat[0], Offset: 1},
		Channels: 1,
		Open:     open,
	})
	require.NoError(t, err)
	defer st.Close()

	pos, out := drain(t, st)
	assert.Equal(t, []int32{2, 3, 4, 5}, out)
	assert.Equal(t, clock.Position{Shard: cat[0], Offset: 1}, pos[0])
	assert.Equal(t, clock.Position{Shard: cat[2], Offset: 0}, pos[2])
	assert.Equal(t, clock.Position{Shard: cat[2], Offset: 1}, pos[3])
}

func TestStream_StereoPositions(t *testing.T) {
	t.Parallel()

	cat, open := memShards(2, []int32{0, 1, 2, 3, 4, 5})
	st, err := newStream(Source{
		Shards:   cat,
		Start:    clock.Position{Shard: cat[0], Offset: 1},
		Channels: 2,
		Open:     open,
	})
	require.NoError(t, err)

	pos, out := drain(t, st)
	assert.Equal(t, []int32{2, 3, 4, 5}, out)
	offsets := make([]int, len(pos))
	for i, p := range pos {
		offsets[i] = p.Offset
	}
	assert.Equal(t, []int{1, 1, 2, 2}, offsets)
}

func TestStream_Errors(t *testing.T) {
	t.Parallel()

	cat, open := memShards(1, []int32{1}, nil)

	_, err := newStream(Source{
		Shards: cat,
		Start:  clock.Position{Shard: catalog.Shard{Path: "/elsewhere/1.wav"}},
		Open:   open,
	})
	assert.ErrorIs(t, err, ErrStartShard)

	_, err = newStream(Source{Shards: cat, Start: clock.Position{Shard: cat[1]}, Open: open})
	assert.ErrorIs(t, err, ErrReader)
	assert.ErrorIs(t, err, errMissing)

	// the second shard fails once the first is drained
	st, err := newStream(Source{Shards: cat, Start: clock.Position{Shard: cat[0]}, Open: open})
	require.NoError(t, err)
	_, v, err := st.Next()
	require.NoError(t, err)
	assert.Equal(t, int32(1), v)
	_, _, err = st.Next()
	assert.ErrorIs(t, err, ErrReader)
}
