// SPDX-License-Identifier: EPL-2.0

package demux

// Row holds one value per phase tap.
type Row [Taps]int32

// Ring is a fixed capacity circular buffer of rows. Once full, every push
// overwrites the oldest row.
type Ring struct {
	rows  []Row
	next  int
	count int
}

// NewRing allocates a ring of capacity rows.
func NewRing(capacity int) *Ring {
	return &Ring{rows: make([]Row, max(capacity, 1))}
}

func (r *Ring) Cap() int { return len(r.rows) }
func (r *Ring) Len() int { return r.count }

// Full reports whether the ring has been filled at least once.
func (r *Ring) Full() bool { return r.count == len(r.rows) }

func (r *Ring) Push(row Row) {
	r.rows[r.next] = row
	r.next = (r.next + 1) % len(r.rows)
	if r.count < len(r.rows) {
		r.count++
	}
}

// Row returns the row stored in slot j. Slots are physical: once the ring
// wrapped, slot 0 holds the newest row pushed after the first fill. j wraps
// modulo the capacity.
func (r *Ring) Row(j int) Row {
	n := len(r.rows)
	j %= n
	if j < 0 {
		j += n
	}
	return r.rows[j]
}
