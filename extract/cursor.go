// SPDX-License-Identifier: EPL-2.0

package extract

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/ik5/ppsalign/audio"
	"github.com/ik5/ppsalign/clock"
	"github.com/ik5/ppsalign/marker"
	"github.com/ik5/ppsalign/progress"
	"github.com/ik5/ppsalign/utils"
)

const (
	// DefaultAudioPerVirtual is the number of audio samples per virtual
	// sample.
	DefaultAudioPerVirtual = 2400
	// DefaultMarkerSkip is the number of samples dropped after a sentinel.
	DefaultMarkerSkip = 2

	progressStep = 4096
)

// Locator resolves wall clock instants to shard positions.
type Locator interface {
	Locate(nanos int64) (clock.Position, error)
}

// Config tunes a Cursor.
type Config struct {
	// SampleRate of the audio stream, used to turn break lengths into
	// samples.
	SampleRate int
	// AudioPerVirtual relates the audio and virtual counters.
	AudioPerVirtual int
	// MarkerSkip is the number of samples following a sentinel that are
	// neither written nor counted. Negative selects DefaultMarkerSkip.
	MarkerSkip int
	// Stride keeps only raw samples whose in-shard index is a multiple of
	// it, the first channel when Stride equals the channel count.
	Stride int
}

func (c Config) withDefaults() Config {
	if c.AudioPerVirtual <= 0 {
		c.AudioPerVirtual = DefaultAudioPerVirtual
	}
	if c.MarkerSkip < 0 {
		c.MarkerSkip = DefaultMarkerSkip
	}
	if c.Stride <= 0 {
		c.Stride = 1
	}
	return c
}

type cursorState uint8

const (
	writing cursorState = iota
	skipping
)

// pendingBreak is a break window resolved on first use.
type pendingBreak struct {
	window   BreakWindow
	resolved bool
	start    clock.Position
	end      clock.Position
	samples  int64
}

// Result summarizes a cursor run.
type Result struct {
	Segments []Segment
	// Written is the number of samples written over all segments.
	Written int64
	// Virtual is the final virtual counter.
	Virtual int64
	// Remaining is the unspent budget, non-zero when the shards ran out.
	Remaining int64
}

// Cursor streams samples from a resolved start into segments, dropping
// markers and splicing out break windows. A Cursor is good for one Run.
type Cursor struct {
	cfg      Config
	out      SegmentWriter
	locator  Locator
	logger   *slog.Logger
	progress progress.Reporter

	breaks []*pendingBreak
	active *pendingBreak
	state  cursorState

	audio   int64
	virtual int64
	skip    int
	budget  int64

	sink     audio.Sink
	seg      Segment
	segments []Segment
	written  int64
}

// NewCursor prepares a cursor. breaks must be sorted and non overlapping,
// see ClipWindows. locator may be nil when there are no breaks.
func NewCursor(cfg Config, out SegmentWriter, locator Locator, breaks []BreakWindow, logger *slog.Logger) *Cursor {
	if logger == nil {
		logger = slog.Default()
	}

	c := &Cursor{
		cfg:      cfg.withDefaults(),
		out:      out,
		locator:  locator,
		logger:   logger,
		progress: progress.Nop{},
	}
	for _, w := range breaks {
		c.breaks = append(c.breaks, &pendingBreak{window: w})
	}
	return c
}

// WithProgress reports written samples to r.
func (c *Cursor) WithProgress(r progress.Reporter) *Cursor {
	c.progress = progress.Or(r)
	return c
}

// advance moves the audio counter by n, carrying whole virtual samples.
func (c *Cursor) advance(n int64) {
	c.audio += n
	c.virtual += c.audio / int64(c.cfg.AudioPerVirtual)
	c.audio %= int64(c.cfg.AudioPerVirtual)
}

func (c *Cursor) resolve(b *pendingBreak) error {
	if b.resolved {
		return nil
	}
	if c.locator == nil {
		return errors.New("break windows need a locator")
	}

	start, err := c.locator.Locate(b.window.Start)
	if err != nil {
		return fmt.Errorf("locating break start: %w", err)
	}
	end, err := c.locator.Locate(b.window.End)
	if err != nil {
		return fmt.Errorf("locating break end: %w", err)
	}

	b.start, b.end, b.resolved = start, end, true
	b.samples = utils.NanosToSamples(b.window.Len(), float64(c.cfg.SampleRate))
	c.logger.Debug("resolved break",
		"start", start.String(),
		"end", end.String(),
		"length", time.Duration(b.window.Len()),
	)

	return nil
}

func (c *Cursor) write(pos clock.Position, v int32) error {
	if c.sink == nil {
		sink, path, err := c.out.Open(len(c.segments))
		if err != nil {
			return err
		}
		c.sink = sink
		c.seg = Segment{
			Index:        len(c.segments),
			VirtualStart: c.virtual,
			Start:        pos,
			Path:         path,
		}
	}

	if err := c.sink.WriteSamples([]int32{v}); err != nil {
		return fmt.Errorf("writing segment %d: %w", c.seg.Index, err)
	}
	c.seg.Samples++
	c.written++
	return nil
}

// finalize closes and renames the open segment, if any.
func (c *Cursor) finalize() error {
	if c.sink == nil {
		return nil
	}

	err := c.sink.Close()
	c.sink = nil
	if err != nil {
		return fmt.Errorf("closing segment %d: %w", c.seg.Index, err)
	}

	c.seg.VirtualEnd = c.virtual
	path, err := c.out.Finalize(c.seg)
	if err != nil {
		return err
	}
	c.seg.Path = path
	c.segments = append(c.segments, c.seg)

	c.logger.Info("segment finalized",
		"path", path,
		"virtual_start", c.seg.VirtualStart,
		"virtual_end", c.seg.VirtualEnd,
		"samples", c.seg.Samples,
	)
	return nil
}

// enterBreak is called when the stream reaches the start of the next break.
func (c *Cursor) enterBreak(b *pendingBreak) error {
	if err := c.finalize(); err != nil {
		return err
	}
	c.advance(b.samples)
	c.budget -= b.samples
	c.active = b
	c.state = skipping
	c.breaks = c.breaks[1:]

	c.logger.Info("skipping break",
		"from", b.start.String(),
		"to", b.end.String(),
		"samples", b.samples,
	)
	return nil
}

// Run streams src until budget audio samples are accounted for or the
// shards run out. The open segment is always finalized.
func (c *Cursor) Run(src Source, budget int64) (res Result, err error) {
	st, err := newStream(src)
	if err != nil {
		return Result{}, err
	}
	defer st.Close()

	c.budget = budget
	bar := c.progress.Bar("extracting", budget)
	defer bar.Done()

	defer func() {
		if ferr := c.finalize(); ferr != nil && err == nil {
			err = ferr
		}
		res = Result{
			Segments:  c.segments,
			Written:   c.written,
			Virtual:   c.virtual,
			Remaining: max(c.budget, 0),
		}
	}()

	pending := 0
	for c.budget > 0 {
		pos, v, err := st.Next()
		if errors.Is(err, io.EOF) {
			c.logger.Warn("shards exhausted before the budget", "remaining", c.budget)
			break
		}
		if err != nil {
			return res, err
		}

		if c.state == skipping {
			if pos.Before(c.active.end) {
				continue
			}
			c.state = writing
			c.active = nil
		}

		if len(c.breaks) > 0 {
			b := c.breaks[0]
			if err := c.resolve(b); err != nil {
				return res, err
			}
			if !pos.Before(b.start) {
				if err := c.enterBreak(b); err != nil {
					return res, err
				}
				if c.budget <= 0 || pos.Before(b.end) {
					continue
				}
				c.state = writing
				c.active = nil
			}
		}

		if marker.IsSentinel(v) {
			c.skip = c.cfg.MarkerSkip
			continue
		}
		if c.skip > 0 {
			c.skip--
			continue
		}
		if st.Index()%c.cfg.Stride != 0 {
			continue
		}

		if err := c.write(pos, v); err != nil {
			return res, err
		}
		c.advance(1)
		c.budget--

		if pending++; pending == progressStep {
			bar.IncrBy(pending)
			pending = 0
		}
	}
	bar.IncrBy(pending)

	return res, nil
}
