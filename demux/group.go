// SPDX-License-Identifier: EPL-2.0

package demux

const allTaps = 1<<Taps - 1

// Group rebuilds one mic from its 8 interleaved phase taps.
type Group struct {
	ring *Ring
	row  Row
	mask uint8
}

func NewGroup() *Group {
	return &Group{ring: NewRing(Rows)}
}

// Set stores v in tap's slot of the row being filled. It reports true when
// the write completed the row, which is then pushed into the ring.
func (g *Group) Set(tap int, v int32) bool {
	tap &= Taps - 1
	g.row[tap] = v
	g.mask |= 1 << tap
	if g.mask != allTaps {
		return false
	}

	g.ring.Push(g.row)
	g.row = Row{}
	g.mask = 0
	return true
}

// Full reports whether enough rows were collected to compute outputs.
func (g *Group) Full() bool { return g.ring.Full() }

// Compute fills out with the diagonal averages of the ring. Output i sums
// tap k of ring slot Mid*i + (Mid-i)*k for k in [0, Taps) and divides by
// Taps, truncating toward zero.
func (g *Group) Compute(out *[Outputs]int32) {
	for i := range Outputs {
		j := Mid * i
		step := Mid - i

		var sum int64
		for k := range Taps {
			sum += int64(g.ring.Row(j)[k])
			j += step
		}
		out[i] = int32(sum / Taps)
	}
}
