// SPDX-License-Identifier: EPL-2.0

// Package demux reconstructs the two mic groups multiplexed into a single
// raw stream.
//
// Every raw sample carries its routing in the low bits: bit 3 selects the
// mic group and bits 0..2 the phase tap. A group collects rows of 8 taps in
// a ring of 33 rows. Once the ring is full, each completed row produces 9
// outputs, one per diagonal through the ring's fixed slots, compensating
// the delay between phases introduced by the multiplexer.
package demux
