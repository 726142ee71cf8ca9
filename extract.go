// SPDX-License-Identifier: EPL-2.0

package ppsalign

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/ik5/ppsalign/audio"
	"github.com/ik5/ppsalign/catalog"
	"github.com/ik5/ppsalign/clock"
	"github.com/ik5/ppsalign/demux"
	"github.com/ik5/ppsalign/extract"
	"github.com/ik5/ppsalign/formats/aiff"
	"github.com/ik5/ppsalign/formats/wav"
	"github.com/ik5/ppsalign/progress"
	"github.com/ik5/ppsalign/table"
	"github.com/ik5/ppsalign/utils"
)

// Options configures the high level operations.
type Options struct {
	// Dir holds the shards.
	Dir string
	// Output is the base path of the produced files. Operations derive the
	// final names from it.
	Output string
	// Extension of the shard files.
	Extension string
	// SampleRate of the shards in Hz.
	SampleRate int
	// Channels interleaved in a shard. Only the first one is extracted.
	Channels int
	// LookBack bounds the marker search before the requested start.
	LookBack time.Duration
	// AudioPerVirtual relates audio samples to virtual samples.
	AudioPerVirtual int
	// MarkerSkip is the number of samples dropped after a sentinel.
	MarkerSkip int
	// DemuxChannels is the channel count of multiplexed shards.
	DemuxChannels int
	// DemuxMarkerSkip is MarkerSkip for multiplexed shards.
	DemuxMarkerSkip int
	// OutputRate is the sample rate written into demultiplexed outputs.
	OutputRate int
	// Associations is an optional clock association table used instead of
	// scanning for markers.
	Associations string

	Logger   *slog.Logger
	Progress progress.Reporter
}

// DefaultOptions returns the settings of the recorder this tool was built
// for: 48 kHz stereo shards, 2400 audio samples per virtual sample.
func DefaultOptions() Options {
	return Options{
		Extension:       "wav",
		SampleRate:      48000,
		Channels:        2,
		LookBack:        clock.DefaultLookBack,
		AudioPerVirtual: extract.DefaultAudioPerVirtual,
		MarkerSkip:      extract.DefaultMarkerSkip,
		DemuxChannels:   4,
		DemuxMarkerSkip: extract.DefaultDemuxMarkerSkip,
		OutputRate:      48000,
	}
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}

// NewRegistry returns a registry with every shard codec: wav, aif and aiff.
func NewRegistry() *audio.Registry {
	reg := audio.NewRegistry()
	reg.Register("wav", wav.Decoder{})
	reg.Register("aif", aiff.Decoder{})
	reg.Register("aiff", aiff.Decoder{})
	return reg
}

// Resolver lists the shard directory and prepares a clock resolver for
// shards with channels interleaved channels.
func (o Options) Resolver(channels int) (*clock.Resolver, error) {
	cat, err := catalog.List(o.Dir, o.Extension, o.logger())
	if err != nil {
		return nil, err
	}

	r := &clock.Resolver{
		Catalog:    cat,
		Registry:   NewRegistry(),
		Channels:   channels,
		SampleRate: o.SampleRate,
		LookBack:   o.LookBack,
		Logger:     o.logger(),
		Progress:   o.Progress,
	}

	if o.Associations != "" {
		rows, err := table.ReadAssociationsFile(o.Associations)
		if err != nil {
			return nil, fmt.Errorf("reading associations: %w", err)
		}
		if r.Anchors, err = clock.AnchorsFromAssociations(rows, cat); err != nil {
			return nil, err
		}
		o.logger().Info("using clock associations", "rows", len(rows))
	}

	return r, nil
}

func (o Options) budget(from, to time.Time, rate int) (int64, error) {
	if !to.After(from) {
		return 0, fmt.Errorf("%w: %s is not after %s", ErrEmptyInterval, to, from)
	}
	return utils.NanosToSamples(to.Sub(from).Nanoseconds(), float64(rate)), nil
}

func (o Options) createMono(rate int) func(string) (audio.Sink, error) {
	return func(path string) (audio.Sink, error) {
		return wav.Create(path, rate, 1)
	}
}

// start resolves from and returns the stream source beginning there.
func (o Options) start(from time.Time, channels int) (*clock.Resolver, extract.Source, error) {
	r, err := o.Resolver(channels)
	if err != nil {
		return nil, extract.Source{}, err
	}

	pos, err := r.Locate(from.UnixNano())
	if err != nil {
		return nil, extract.Source{}, err
	}

	return r, extract.Source{
		Shards:   r.Catalog,
		Start:    pos,
		Channels: channels,
		Open:     r.Registry.Open,
	}, nil
}

func (o Options) cursorConfig() extract.Config {
	return extract.Config{
		SampleRate:      o.SampleRate,
		AudioPerVirtual: o.AudioPerVirtual,
		MarkerSkip:      o.MarkerSkip,
		Stride:          o.Channels,
	}
}

// Cut extracts the first channel of [from, to) into a single file named
// after the start instant.
func Cut(o Options, from, to time.Time) (extract.Result, error) {
	budget, err := o.budget(from, to, o.SampleRate)
	if err != nil {
		return extract.Result{}, err
	}

	_, src, err := o.start(from, o.Channels)
	if err != nil {
		return extract.Result{}, err
	}

	out := &extract.FileSegments{
		Base:   o.Output,
		Create: o.createMono(o.SampleRate),
		Name: func(base string, _ extract.Segment) string {
			return extract.TimestampName(base, from.UnixNano())
		},
	}

	c := extract.NewCursor(o.cursorConfig(), out, nil, nil, o.logger()).WithProgress(o.Progress)
	return c.Run(src, budget)
}

// Splice extracts [from, to) like Cut but leaves out the break windows.
// Every contiguous run becomes its own file named after its virtual range.
func Splice(o Options, from, to time.Time, windows []extract.BreakWindow) (extract.Result, error) {
	budget, err := o.budget(from, to, o.SampleRate)
	if err != nil {
		return extract.Result{}, err
	}

	r, src, err := o.start(from, o.Channels)
	if err != nil {
		return extract.Result{}, err
	}

	breaks := extract.ClipWindows(windows, from.UnixNano(), to.UnixNano())
	o.logger().Info("splicing", "breaks", len(breaks), "of", len(windows))

	out := &extract.FileSegments{Base: o.Output, Create: o.createMono(o.SampleRate)}
	c := extract.NewCursor(o.cursorConfig(), out, r, breaks, o.logger()).WithProgress(o.Progress)
	return c.Run(src, budget)
}

// Demultiplex rebuilds both mic groups of a multiplexed recording over
// [from, to) and writes one file per mic and tap. It returns the paths
// written.
func Demultiplex(o Options, from, to time.Time) ([]string, extract.DemuxResult, error) {
	var res extract.DemuxResult

	budget, err := o.budget(from, to, o.OutputRate)
	if err != nil {
		return nil, res, err
	}

	_, src, err := o.start(from, o.DemuxChannels)
	if err != nil {
		return nil, res, err
	}

	var (
		sinks [demux.Groups][demux.Outputs]audio.Sink
		paths []string
	)
	closeAll := func() {
		for _, g := range sinks {
			for _, s := range g {
				if s != nil {
					s.Close()
				}
			}
		}
	}
	for mic := range demux.Groups {
		for tap := range demux.Outputs {
			path := extract.DemuxName(o.Output, mic+1, tap)
			w, err := wav.Create(path, o.OutputRate, 1)
			if err != nil {
				closeAll()
				return nil, res, fmt.Errorf("creating %s: %w", path, err)
			}
			sinks[mic][tap] = w
			paths = append(paths, path)
		}
	}

	d := demux.NewDemux(sinks, int(budget))
	res, err = extract.Demultiplex(src, d, o.DemuxMarkerSkip, o.Progress)
	if cerr := d.Close(); cerr != nil && err == nil {
		err = fmt.Errorf("closing outputs: %w", cerr)
	}
	if err != nil {
		return paths, res, err
	}
	if !d.Done() {
		o.logger().Warn("shards exhausted before the budget",
			"mic1", d.Remaining(0),
			"mic2", d.Remaining(1),
		)
	}

	return paths, res, nil
}

// CutOne copies count raw samples of a single shard starting at raw index
// start into o.Output. The output keeps the shard's channel layout.
func CutOne(o Options, input string, start, count int) (int, error) {
	src, err := NewRegistry().Open(input)
	if err != nil {
		return 0, err
	}
	defer src.Close()

	dst, err := wav.Create(o.Output, src.SampleRate(), src.Channels())
	if err != nil {
		return 0, fmt.Errorf("creating %s: %w", o.Output, err)
	}

	n, err := extract.CopyRange(src, dst, start, count)
	if cerr := dst.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return n, err
}
