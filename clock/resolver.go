// SPDX-License-Identifier: EPL-2.0

package clock

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/ik5/ppsalign/audio"
	"github.com/ik5/ppsalign/catalog"
	"github.com/ik5/ppsalign/marker"
	"github.com/ik5/ppsalign/progress"
	"github.com/ik5/ppsalign/utils"
)

// DefaultLookBack is how far before the target shards are considered.
const DefaultLookBack = time.Minute

// early exit thresholds of the marker search
const (
	nearShards = 6
	nearEnough = 500 * time.Millisecond
	farShards  = 16
	farEnough  = time.Minute
)

// Best is the outcome of a marker search.
type Best struct {
	Marker   marker.Marker
	Distance int64
	Found    bool
	// Candidates are the shards the search was allowed to look at.
	Candidates catalog.Catalog
	// Scanned counts the candidates actually read.
	Scanned int
}

// Resolver maps wall clock instants onto shard positions.
type Resolver struct {
	Catalog    catalog.Catalog
	Registry   *audio.Registry
	Channels   int
	SampleRate int
	LookBack   time.Duration
	// Anchors replace marker scanning when set.
	Anchors  []marker.Marker
	Logger   *slog.Logger
	Progress progress.Reporter
}

func (r *Resolver) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}

func (r *Resolver) lookBack() int64 {
	if r.LookBack <= 0 {
		return int64(DefaultLookBack)
	}
	return int64(r.LookBack)
}

// FindBest scans shards starting no earlier than target minus the look back
// window and returns the marker closest to target. The scan stops early
// once enough shards were read with a close enough match.
func (r *Resolver) FindBest(target int64) (Best, error) {
	best := Best{
		Distance:   -1,
		Candidates: r.Catalog.Since(target - r.lookBack()),
	}

	bar := progress.Or(r.Progress).Bar("scanning", int64(len(best.Candidates)))
	defer bar.Done()

	for i, shard := range best.Candidates {
		for _, m := range marker.ScanShard(r.Registry, shard, r.Channels, r.logger()) {
			d := utils.AbsInt64(m.Nanos - target)
			if !best.Found || d < best.Distance {
				best.Marker, best.Distance, best.Found = m, d, true
			}
		}
		best.Scanned = i + 1
		bar.IncrBy(1)

		if !best.Found {
			continue
		}
		if i+1 >= nearShards && best.Distance <= int64(nearEnough) {
			break
		}
		if i+1 >= farShards && best.Distance <= int64(farEnough) {
			break
		}
	}

	if !best.Found {
		return best, fmt.Errorf("%w: %d shards scanned", ErrMarkerNotFound, best.Scanned)
	}

	r.logger().Info("closest marker",
		"shard", best.Marker.Shard.Name,
		"offset", best.Marker.Offset,
		"distance", time.Duration(best.Distance),
		"scanned", best.Scanned,
	)

	return best, nil
}

// nearestAnchor picks the anchor closest to target.
func (r *Resolver) nearestAnchor(target int64) Best {
	best := Best{Distance: -1, Candidates: r.Catalog}
	for _, m := range r.Anchors {
		d := utils.AbsInt64(m.Nanos - target)
		if !best.Found || d < best.Distance {
			best.Marker, best.Distance, best.Found = m, d, true
		}
	}
	return best
}

// duration is the frame count of shard, or an error when it cannot be
// opened.
func (r *Resolver) duration(shard catalog.Shard) (int, error) {
	src, err := r.Registry.Open(shard.Path)
	if err != nil {
		return 0, err
	}
	defer src.Close()

	return audio.Frames(src, r.Channels), nil
}

// FindStart converts the distance between m and target into samples and
// walks seq from m's shard, forward or backward, until the remainder falls
// inside a shard. Shards that cannot be opened are skipped.
func (r *Resolver) FindStart(target int64, m marker.Marker, seq catalog.Catalog) (Position, error) {
	at := seq.IndexOf(m.Shard)
	diff := target - m.Nanos
	delta := int(utils.NanosToSamples(utils.AbsInt64(diff), float64(r.SampleRate)))

	if diff >= 0 {
		// only the forward walk needs the length of the marker's shard
		dur, err := r.duration(m.Shard)
		if err != nil {
			return Position{}, fmt.Errorf("opening marker shard: %w", err)
		}
		if m.Offset+delta < dur {
			return Position{Shard: m.Shard, Offset: m.Offset + delta}, nil
		}
		rem := delta - (dur - m.Offset)
		if at < 0 {
			return Position{}, fmt.Errorf("%w: %s not in sequence", ErrStartNotFound, m.Shard.Name)
		}
		for _, shard := range seq[at+1:] {
			d, err := r.duration(shard)
			if err != nil {
				r.logger().Warn("skipping unreadable shard", "shard", shard.Name, "error", err)
				continue
			}
			if rem < d {
				return Position{Shard: shard, Offset: rem}, nil
			}
			rem -= d
		}
		return Position{}, fmt.Errorf("%w: %d frames past the last shard", ErrStartNotFound, rem)
	}

	if m.Offset >= delta {
		return Position{Shard: m.Shard, Offset: m.Offset - delta}, nil
	}
	rem := delta - m.Offset
	if at < 0 {
		return Position{}, fmt.Errorf("%w: %s not in sequence", ErrStartNotFound, m.Shard.Name)
	}
	for i := at - 1; i >= 0; i-- {
		shard := seq[i]
		d, err := r.duration(shard)
		if err != nil {
			r.logger().Warn("skipping unreadable shard", "shard", shard.Name, "error", err)
			continue
		}
		if rem <= d {
			return Position{Shard: shard, Offset: d - rem}, nil
		}
		rem -= d
	}

	return Position{}, fmt.Errorf("%w: %d frames before the first shard", ErrStartNotFound, rem)
}

// Locate resolves target into a shard position, through the anchors when
// present and a marker scan otherwise.
func (r *Resolver) Locate(target int64) (Position, error) {
	var (
		best Best
		err  error
	)
	if len(r.Anchors) > 0 {
		best = r.nearestAnchor(target)
	} else {
		best, err = r.FindBest(target)
		if err != nil {
			return Position{}, err
		}
	}

	pos, err := r.FindStart(target, best.Marker, r.Catalog)
	if err != nil {
		return Position{}, err
	}
	r.logger().Info("resolved position",
		"target", time.Unix(0, target).UTC(),
		"shard", pos.Shard.Name,
		"offset", pos.Offset,
	)

	return pos, nil
}
