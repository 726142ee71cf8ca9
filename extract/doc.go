// SPDX-License-Identifier: EPL-2.0

// Package extract streams time aligned audio out of a shard sequence.
//
// A Cursor reads raw samples from a resolved start position and writes
// them into one or more segments. It keeps two counters: the audio counter
// advances with every written sample and carries into the virtual counter
// every AudioPerVirtual samples. When the stream reaches a break window the
// open segment is finalized, both counters jump by the length of the break
// and the samples inside the break are discarded. The next written sample
// opens a new segment. Segments are named after the virtual range they
// cover.
//
// Marker words are removed from the output: a sentinel sample and the
// samples carrying its timestamp are neither written nor counted.
package extract
