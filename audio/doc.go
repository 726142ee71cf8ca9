// SPDX-License-Identifier: EPL-2.0

// Package audio holds the codec independent contracts of the shard
// pipeline.
//
// # Source Interface
//
// A Source is a random-access reader over interleaved 32-bit signed PCM:
//
//	type Source interface {
//	    SampleRate() int
//	    Channels() int
//	    Len() int
//	    Seek(sample int) error
//	    ReadSamples(dst []int32) (int, error)
//	    Close() error
//	}
//
// Positions passed to Seek and returned by Len count interleaved samples,
// not frames. Frames converts a length into frames.
//
// Samples are never scaled or converted. The recorder stores timing
// markers as raw 32-bit words next to the audio, and a single changed bit
// would destroy them.
//
// # Sinks
//
// A Sink receives samples sequentially and is finished by Close. The WAV
// writer in formats/wav is the only production sink.
//
// # Format Registry
//
// The registry maps file extensions to decoders:
//
//	registry := audio.NewRegistry()
//	registry.Register("wav", wav.Decoder{})
//	src, err := registry.Open("/data/shards/1700000000000000000.wav")
//
// Extensions are matched case-insensitively.
//
// # Error Handling
//
// ReadSamples returns io.EOF once the stream is exhausted:
//
//	for {
//	    n, err := src.ReadSamples(buf)
//	    if err == io.EOF {
//	        break
//	    }
//	    if err != nil {
//	        return err
//	    }
//	    // use buf[:n]
//	}
package audio
