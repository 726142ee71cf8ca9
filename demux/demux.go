// SPDX-License-Identifier: EPL-2.0

package demux

import (
	"errors"
	"fmt"

	"github.com/ik5/ppsalign/audio"
)

const (
	// Rows is the ring capacity of a group.
	Rows = 33
	// Taps is the number of phase taps per row.
	Taps = 8
	// Mid is the centre tap.
	Mid = Taps / 2
	// Outputs is the number of reconstructed streams per group.
	Outputs = Taps + 1
	// Groups is the number of mic groups in the stream.
	Groups = 2
)

// Route extracts the mic group (bit 3) and phase tap (bits 0..2) carried in
// the low bits of a raw sample.
func Route(sample int32) (mic, tap int) {
	u := uint32(sample)
	return int((u >> 3) & 1), int(u & (Taps - 1))
}

// Demux splits a multiplexed stream into Groups x Outputs sinks.
type Demux struct {
	groups  [Groups]*Group
	sinks   [Groups][Outputs]audio.Sink
	left    [Groups]int
	aligned bool

	out [Outputs]int32
	one [1]int32
}

// NewDemux writes up to budget samples into each sink.
func NewDemux(sinks [Groups][Outputs]audio.Sink, budget int) *Demux {
	d := &Demux{sinks: sinks}
	for i := range d.groups {
		d.groups[i] = NewGroup()
		d.left[i] = budget
	}
	return d
}

// Aligned reports whether the stream start was found.
func (d *Demux) Aligned() bool { return d.aligned }

// Remaining is the output budget still open for mic.
func (d *Demux) Remaining(mic int) int { return d.left[mic] }

// Done reports whether every group exhausted its budget.
func (d *Demux) Done() bool {
	for _, n := range d.left {
		if n > 0 {
			return false
		}
	}
	return true
}

// Push routes one raw sample. Samples before the first mic 0 / tap 0 sample
// are discarded so rows start on a frame boundary. It reports the number of
// output samples written to each sink of the group (0 or 1).
func (d *Demux) Push(sample int32) (int, error) {
	mic, tap := Route(sample)
	if !d.aligned {
		if mic != 0 || tap != 0 {
			return 0, nil
		}
		d.aligned = true
	}

	if d.left[mic] <= 0 {
		return 0, nil
	}
	g := d.groups[mic]
	if !g.Set(tap, sample) || !g.Full() {
		return 0, nil
	}

	g.Compute(&d.out)
	for i, sink := range d.sinks[mic] {
		d.one[0] = d.out[i]
		if err := sink.WriteSamples(d.one[:]); err != nil {
			return 0, fmt.Errorf("writing mic %d tap %d: %w", mic+1, i, err)
		}
	}
	d.left[mic]--

	return 1, nil
}

// Close closes every sink.
func (d *Demux) Close() error {
	var errs []error
	for _, group := range d.sinks {
		for _, sink := range group {
			if sink == nil {
				continue
			}
			if err := sink.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
