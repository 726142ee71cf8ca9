// SPDX-License-Identifier: EPL-2.0

// Package shardtest writes synthetic recorder shards for tests.
package shardtest

import (
	"path/filepath"
	"strconv"
	"testing"

	"github.com/ik5/ppsalign/formats/wav"
	"github.com/ik5/ppsalign/utils"
)

const sentinel = int32(-286331154)

// Marker returns the three raw samples that encode nanos in-band.
func Marker(nanos int64) []int32 {
	lo, hi := utils.SplitNanos(nanos)
	return []int32{sentinel, lo, hi}
}

// Ramp returns n samples valued start, start+1, ...
func Ramp(start int32, n int) []int32 {
	out := make([]int32, n)
	for i := range out {
		out[i] = start + int32(i)
	}
	return out
}

// Put copies words into samples at raw index at and returns samples.
func Put(samples []int32, at int, words ...int32) []int32 {
	copy(samples[at:], words)
	return samples
}

// Write stores samples as dir/<nanos>.wav through the real WAV writer and
// returns the file path.
func Write(tb testing.TB, dir string, nanos int64, rate, channels int, samples []int32) string {
	tb.Helper()

	path := filepath.Join(dir, strconv.FormatInt(nanos, 10)+".wav")
	w, err := wav.Create(path, rate, channels)
	if err != nil {
		tb.Fatalf("creating shard %s: %v", path, err)
	}
	if err := w.WriteSamples(samples); err != nil {
		tb.Fatalf("writing shard %s: %v", path, err)
	}
	if err := w.Close(); err != nil {
		tb.Fatalf("closing shard %s: %v", path, err)
	}

	return path
}

// Read decodes a WAV file written by the pipeline.
func Read(tb testing.TB, path string) []int32 {
	tb.Helper()

	src, err := Registry().Open(path)
	if err != nil {
		tb.Fatalf("opening %s: %v", path, err)
	}
	defer src.Close()

	out := make([]int32, src.Len())
	n := 0
	for n < len(out) {
		m, err := src.ReadSamples(out[n:])
		if err != nil {
			tb.Fatalf("reading %s: %v", path, err)
		}
		n += m
	}

	return out
}
