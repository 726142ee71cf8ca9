// SPDX-License-Identifier: EPL-2.0

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"

	"github.com/ik5/ppsalign"
	"github.com/ik5/ppsalign/catalog"
	"github.com/ik5/ppsalign/extract"
	"github.com/ik5/ppsalign/marker"
	"github.com/ik5/ppsalign/table"
)

func noArgs(fs *pflag.FlagSet) error {
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected argument: %s", fs.Arg(0))
	}
	return nil
}

func fileSize(path string) string {
	fi, err := os.Stat(path)
	if err != nil {
		return "?"
	}
	return humanize.IBytes(uint64(fi.Size()))
}

func printSegments(w io.Writer, res extract.Result) {
	for _, s := range res.Segments {
		fmt.Fprintf(w, "%s\t%s samples\t%s\n", s.Path, humanize.Comma(s.Samples), fileSize(s.Path))
	}
	if res.Remaining > 0 {
		fmt.Fprintf(w, "shards ran out %s samples short\n", humanize.Comma(res.Remaining))
	}
}

func runCut(args []string, stdout, stderr io.Writer) error {
	c := newCommon("cut", stderr)
	var iv interval
	iv.register(c.fs)

	if err := c.fs.Parse(args); err != nil {
		return err
	}
	if err := noArgs(c.fs); err != nil {
		return err
	}

	from, to, err := iv.resolve()
	if err != nil {
		return err
	}
	o, _, wait, err := c.setup(stderr)
	if err != nil {
		return err
	}

	res, err := ppsalign.Cut(o, from, to)
	wait()
	if err != nil {
		return err
	}

	printSegments(stdout, res)
	return nil
}

func runSplice(args []string, stdout, stderr io.Writer) error {
	c := newCommon("splice", stderr)
	var iv interval
	iv.register(c.fs)
	var (
		breaks string
		ratio  int
	)
	c.fs.StringVarP(&breaks, "breaks", "b", "", "break table CSV (start,end in epoch ns)")
	c.fs.IntVar(&ratio, "audio-per-virtual", 0, "audio samples per virtual sample")

	if err := c.fs.Parse(args); err != nil {
		return err
	}
	if err := noArgs(c.fs); err != nil {
		return err
	}
	if breaks == "" {
		return errors.New("--breaks is required")
	}

	rows, err := table.ReadBreaksFile(breaks)
	if err != nil {
		return err
	}
	windows := make([]extract.BreakWindow, len(rows))
	for i, w := range rows {
		windows[i] = extract.BreakWindow(w)
	}

	from, to, err := iv.resolve()
	if err != nil {
		return err
	}
	o, log, wait, err := c.setup(stderr)
	if err != nil {
		return err
	}
	if c.fs.Changed("audio-per-virtual") {
		if ratio <= 0 {
			wait()
			return fmt.Errorf("--audio-per-virtual must be positive, got %d", ratio)
		}
		o.AudioPerVirtual = ratio
	}
	log.Debug("break table loaded", "file", breaks, "windows", len(windows))

	res, err := ppsalign.Splice(o, from, to, windows)
	wait()
	if err != nil {
		return err
	}

	printSegments(stdout, res)
	fmt.Fprintf(stdout, "%d segments, %s virtual samples\n", len(res.Segments), humanize.Comma(res.Virtual))
	return nil
}

func runDemux(args []string, stdout, stderr io.Writer) error {
	c := newCommon("demux", stderr)
	var iv interval
	iv.register(c.fs)
	var (
		channels   int
		outputRate int
	)
	c.fs.IntVar(&channels, "demux-channels", 0, "channels interleaved in a multiplexed shard")
	c.fs.IntVar(&outputRate, "output-rate", 0, "sample rate of the rebuilt outputs")

	if err := c.fs.Parse(args); err != nil {
		return err
	}
	if err := noArgs(c.fs); err != nil {
		return err
	}

	from, to, err := iv.resolve()
	if err != nil {
		return err
	}
	o, _, wait, err := c.setup(stderr)
	if err != nil {
		return err
	}
	if c.fs.Changed("demux-channels") {
		o.DemuxChannels = channels
	}
	if c.fs.Changed("output-rate") {
		o.OutputRate = outputRate
	}
	if o.DemuxChannels <= 0 || o.OutputRate <= 0 {
		wait()
		return errors.New("--demux-channels and --output-rate must be positive")
	}

	paths, res, err := ppsalign.Demultiplex(o, from, to)
	wait()
	if err != nil {
		return err
	}

	for _, p := range paths {
		fmt.Fprintf(stdout, "%s\t%s\n", p, fileSize(p))
	}
	fmt.Fprintf(stdout, "mic 1: %s samples, mic 2: %s samples, %s raw samples read\n",
		humanize.Comma(int64(res.Outputs[0])),
		humanize.Comma(int64(res.Outputs[1])),
		humanize.Comma(res.Consumed),
	)
	return nil
}

func runMarkers(args []string, stdout, stderr io.Writer) error {
	c := newCommon("markers", stderr)
	var shard string
	c.fs.StringVarP(&shard, "shard", "s", "", "only scan this shard (name or stem)")

	if err := c.fs.Parse(args); err != nil {
		return err
	}
	if err := noArgs(c.fs); err != nil {
		return err
	}

	o, log, wait, err := c.setup(stderr)
	if err != nil {
		return err
	}
	defer wait()

	cat, err := catalog.List(o.Dir, o.Extension, log)
	if err != nil {
		return err
	}
	if shard != "" {
		s, err := cat.ByName(shard)
		if err != nil {
			return err
		}
		cat = catalog.Catalog{s}
	}

	reg := ppsalign.NewRegistry()
	total := 0
	for _, s := range cat {
		for _, m := range marker.ScanShard(reg, s, o.Channels, log) {
			fmt.Fprintf(stdout, "%s\t%d\t%s\n", s.Name, m.Offset, time.Unix(0, m.Nanos).UTC().Format(time.RFC3339Nano))
			total++
		}
	}
	log.Info("scan finished", "shards", len(cat), "markers", total)
	return nil
}

func runCutOne(args []string, stdout, stderr io.Writer) error {
	fs := pflag.NewFlagSet("cut-one", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		in, out      string
		start, count int
	)
	fs.StringVarP(&in, "in", "i", "", "input shard")
	fs.StringVarP(&out, "out", "o", "out.wav", "output file")
	fs.IntVar(&start, "start", 0, "first raw sample to copy")
	fs.IntVar(&count, "count", 0, "number of raw samples to copy")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := noArgs(fs); err != nil {
		return err
	}
	if in == "" {
		return errors.New("--in is required")
	}
	if start < 0 || count <= 0 {
		return fmt.Errorf("invalid range: start %d count %d", start, count)
	}

	n, err := ppsalign.CutOne(ppsalign.Options{Output: out}, in, start, count)
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "%s\t%s samples\t%s\n", out, humanize.Comma(int64(n)), fileSize(out))
	return nil
}
