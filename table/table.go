// SPDX-License-Identifier: EPL-2.0

// Package table reads the CSV side inputs of an extraction: break windows,
// clock associations and flight logs. Columns are located by header name.
package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// FlightRate is the number of flight log rows per second.
const FlightRate = 20

const flightStep = int64(time.Second / FlightRate)

// Window is a wall clock interval [Start, End) in Unix nanoseconds.
type Window struct {
	Start int64
	End   int64
}

// Association ties a wall clock instant to a sample of a shard.
type Association struct {
	Time       int64
	Sample     int64
	FileSample int
	File       string
}

// reader walks a CSV stream with a header row.
type reader struct {
	r    *csv.Reader
	cols map[string]int
	line int
}

func newReader(r io.Reader, required ...string) (*reader, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoRows
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrMissingColumn, name)
		}
	}

	return &reader{r: cr, cols: cols, line: 1}, nil
}

// next returns the next record or io.EOF.
func (t *reader) next() ([]string, error) {
	rec, err := t.r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("%w: %w", ErrMalformedRow, err)
	}
	t.line++
	return rec, nil
}

func (t *reader) field(rec []string, name string) string {
	return strings.TrimSpace(rec[t.cols[name]])
}

func (t *reader) parseInt(rec []string, name string) (int64, error) {
	v, err := strconv.ParseInt(t.field(rec, name), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: line %d column %s: %w", ErrMalformedRow, t.line, name, err)
	}
	return v, nil
}

// ReadBreaks parses a start,end table of nanosecond timestamps.
func ReadBreaks(r io.Reader) ([]Window, error) {
	t, err := newReader(r, "start", "end")
	if err != nil {
		return nil, err
	}

	var out []Window
	for {
		rec, err := t.next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}

		var w Window
		if w.Start, err = t.parseInt(rec, "start"); err != nil {
			return nil, err
		}
		if w.End, err = t.parseInt(rec, "end"); err != nil {
			return nil, err
		}
		if w.End < w.Start {
			return nil, fmt.Errorf("%w: line %d ends before it starts", ErrMalformedRow, t.line)
		}
		out = append(out, w)
	}
}

// ReadAssociations parses a time,sample,file_sample,file table.
func ReadAssociations(r io.Reader) ([]Association, error) {
	t, err := newReader(r, "time", "sample", "file_sample", "file")
	if err != nil {
		return nil, err
	}

	var out []Association
	for {
		rec, err := t.next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}

		var a Association
		if a.Time, err = t.parseInt(rec, "time"); err != nil {
			return nil, err
		}
		if a.Sample, err = t.parseInt(rec, "sample"); err != nil {
			return nil, err
		}
		fs, err := t.parseInt(rec, "file_sample")
		if err != nil {
			return nil, err
		}
		if fs < 0 {
			return nil, fmt.Errorf("%w: line %d negative file_sample", ErrMalformedRow, t.line)
		}
		a.FileSample = int(fs)
		if a.File = t.field(rec, "file"); a.File == "" {
			return nil, fmt.Errorf("%w: line %d empty file", ErrMalformedRow, t.line)
		}
		out = append(out, a)
	}
}

// FlightInterval derives the wall clock span covered by a flight log of
// FlightRate rows per second. The first second is usually partial, so the
// interval starts at the first rfc stamp shifted by the rows missing from
// that second, and lasts one step per following row.
func FlightInterval(r io.Reader) (Window, error) {
	t, err := newReader(r, "rfc")
	if err != nil {
		return Window{}, err
	}

	var (
		rows  int64
		first string
		same  int64
	)
	for {
		rec, err := t.next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Window{}, err
		}

		rfc := t.field(rec, "rfc")
		rows++
		switch {
		case first == "":
			first = rfc
			same++
		case rfc == first:
			same++
		}
	}
	if rows == 0 {
		return Window{}, ErrNoRows
	}

	ts, err := time.Parse(time.RFC3339Nano, first)
	if err != nil {
		return Window{}, fmt.Errorf("%w: rfc %q: %w", ErrMalformedRow, first, err)
	}

	start := ts.UnixNano() + flightStep*(FlightRate-same)
	return Window{Start: start, End: start + (rows-1)*flightStep}, nil
}

func open[T any](path string, read func(io.Reader) (T, error)) (T, error) {
	f, err := os.Open(path)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("%w", err)
	}
	defer f.Close()

	v, err := read(f)
	if err != nil {
		return v, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

// ReadBreaksFile is ReadBreaks over a file.
func ReadBreaksFile(path string) ([]Window, error) { return open(path, ReadBreaks) }

// ReadAssociationsFile is ReadAssociations over a file.
func ReadAssociationsFile(path string) ([]Association, error) {
	return open(path, ReadAssociations)
}

// FlightIntervalFile is FlightInterval over a file.
func FlightIntervalFile(path string) (Window, error) { return open(path, FlightInterval) }
