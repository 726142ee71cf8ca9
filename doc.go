// SPDX-License-Identifier: EPL-2.0

// Package ppsalign extracts wall clock aligned audio from a directory of
// recorder shards.
//
// The recorder writes fixed length PCM files ("shards") named after the
// nanosecond instant they were opened at. Once per second the PPS pulse
// makes it replace three samples with an in-band marker: a sentinel word
// (0xEEEEEEEE) followed by the low and high halves of the nanosecond
// timestamp. The package turns a requested [from, to) interval into
// sample accurate output files using those markers.
//
// # Operations
//
//   - Cut writes the first channel of an interval into one file.
//   - Splice does the same but leaves out break windows, producing one
//     file per contiguous run.
//   - Demultiplex rebuilds the two mic groups of a multiplexed recording
//     through a polyphase filter and writes one file per mic and tap.
//   - CutOne copies a raw sample range out of a single shard.
//
// # Quick Start
//
//	opts := ppsalign.DefaultOptions()
//	opts.Dir = "/data/shards"
//	opts.Output = "/data/out/flight.wav"
//
//	res, err := ppsalign.Cut(opts, from, to)
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(res.Segments[0].Path)
//
// # Building Blocks
//
// The operations are thin compositions of the subpackages:
//
//   - catalog lists and orders the shards.
//   - marker finds markers in a shard.
//   - clock resolves an instant into a shard position.
//   - extract streams samples from a position into segments.
//   - demux holds the polyphase demultiplexer.
//   - table reads break, association and flight log tables.
//
// # Formats
//
// Shards are 32-bit PCM WAV (formats/wav) or AIFF (formats/aiff). Outputs
// are always written as 32-bit PCM WAV.
package ppsalign
