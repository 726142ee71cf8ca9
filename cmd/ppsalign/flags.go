// SPDX-License-Identifier: EPL-2.0

package main

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/spf13/pflag"

	"github.com/ik5/ppsalign"
	"github.com/ik5/ppsalign/internal/config"
	"github.com/ik5/ppsalign/internal/logger"
	"github.com/ik5/ppsalign/progress"
	"github.com/ik5/ppsalign/table"
)

// TimeLayout is the preferred layout of --from and --to.
const TimeLayout = "2006-01-02 15:04:05.000 -0700"

// common holds the flags shared by the shard commands.
type common struct {
	fs *pflag.FlagSet

	config       string
	dir          string
	out          string
	ext          string
	associations string
	logLevel     string
	logFormat    string
	rate         int
	channels     int
	lookBack     time.Duration
	noProgress   bool
}

func newCommon(name string, stderr io.Writer) *common {
	c := &common{fs: pflag.NewFlagSet(name, pflag.ContinueOnError)}
	c.fs.SetOutput(stderr)

	c.fs.StringVarP(&c.config, "config", "c", "", "YAML configuration file")
	c.fs.StringVarP(&c.dir, "dir", "d", ".", "shard directory")
	c.fs.StringVarP(&c.out, "out", "o", "out.wav", "base path of the output files")
	c.fs.StringVar(&c.ext, "ext", "", "shard file extension (default from config: wav)")
	c.fs.StringVar(&c.associations, "associations", "", "clock association table used instead of a marker scan")
	c.fs.StringVar(&c.logLevel, "log-level", "", "debug, info, warn or error")
	c.fs.StringVar(&c.logFormat, "log-format", "", "pretty or json")
	c.fs.IntVar(&c.rate, "rate", 0, "shard sample rate in Hz")
	c.fs.IntVar(&c.channels, "channels", 0, "channels interleaved in a shard")
	c.fs.DurationVar(&c.lookBack, "look-back", 0, "how far before the start to search for markers")
	c.fs.BoolVar(&c.noProgress, "no-progress", false, "do not draw progress bars")

	return c
}

// setup loads the configuration, applies the flags that were set and
// builds the options. The returned function waits for the progress bars
// and must be called before printing results.
func (c *common) setup(stderr io.Writer) (ppsalign.Options, *slog.Logger, func(), error) {
	cfg := config.Default()
	if c.config != "" {
		var err error
		if cfg, err = config.Load(c.config); err != nil {
			return ppsalign.Options{}, nil, nil, err
		}
	}

	if c.fs.Changed("ext") {
		cfg.Extension = c.ext
	}
	if c.fs.Changed("rate") {
		cfg.SampleRate = c.rate
	}
	if c.fs.Changed("channels") {
		cfg.Channels = c.channels
	}
	if c.fs.Changed("look-back") {
		cfg.LookBack = c.lookBack
	}
	if c.fs.Changed("log-level") {
		cfg.Log.Level = c.logLevel
	}
	if c.fs.Changed("log-format") {
		cfg.Log.Format = c.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return ppsalign.Options{}, nil, nil, err
	}

	level, _ := logger.ParseLevel(cfg.Log.Level)
	log := logger.New(logger.Config{Writer: stderr, Format: cfg.Log.Format, Level: level})

	o := cfg.Options()
	o.Dir = c.dir
	o.Output = c.out
	o.Associations = c.associations
	o.Logger = log

	wait := func() {}
	if !c.noProgress {
		t := progress.New(stderr)
		o.Progress = t
		wait = t.Wait
	}

	return o, log, wait, nil
}

// interval holds the flags selecting [from, to).
type interval struct {
	from   string
	to     string
	flight string
}

func (iv *interval) register(fs *pflag.FlagSet) {
	fs.StringVar(&iv.from, "from", "", `start instant ("`+TimeLayout+`", RFC 3339 or epoch ns)`)
	fs.StringVar(&iv.to, "to", "", "end instant, same formats as --from")
	fs.StringVar(&iv.flight, "flight", "", "flight log CSV giving the interval instead of --from/--to")
}

func (iv *interval) resolve() (from, to time.Time, err error) {
	if iv.flight != "" {
		w, err := table.FlightIntervalFile(iv.flight)
		if err != nil {
			return from, to, err
		}
		return time.Unix(0, w.Start), time.Unix(0, w.End), nil
	}

	if iv.from == "" || iv.to == "" {
		return from, to, fmt.Errorf("--from and --to are required without --flight")
	}
	if from, err = parseTime(iv.from); err != nil {
		return from, to, fmt.Errorf("--from: %w", err)
	}
	if to, err = parseTime(iv.to); err != nil {
		return from, to, fmt.Errorf("--to: %w", err)
	}
	return from, to, nil
}

// parseTime accepts TimeLayout, RFC 3339 and integer epoch nanoseconds.
func parseTime(s string) (time.Time, error) {
	if t, err := time.Parse(TimeLayout, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	if ns, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(0, ns), nil
	}
	return time.Time{}, fmt.Errorf("cannot parse %q as a time", s)
}
