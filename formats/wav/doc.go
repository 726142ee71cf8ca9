// SPDX-License-Identifier: EPL-2.0

// Package wav reads and writes 32-bit integer PCM WAV shards.
//
// Recorder shards carry marker words that use every bit of a sample, so the
// decoder refuses anything that is not 32-bit integer PCM instead of
// converting it.
//
// # Decoding
//
//	f, _ := os.Open("1700000000000000000.wav")
//	src, err := wav.Decoder{}.Decode(f)
//	if err != nil {
//	    // ErrNotWavFile, ErrOnlyPCM32bitSupported or ErrUnsupportedWavChunks
//	}
//	defer src.Close()
//
//	buf := make([]int32, 4096)
//	n, err := src.ReadSamples(buf)
//
// The returned source supports Seek to any interleaved sample index; the
// file offset is computed directly so seeking is constant time.
//
// # Writing
//
//	w, err := wav.Create("out.wav", 48000, 1)
//	err = w.WriteSamples(samples)
//	err = w.Close()
//
// Close finalizes the RIFF sizes. A writer closed without any samples still
// produces a valid, empty file. Leftover samples that do not fill a whole
// frame are dropped and reported as ErrPartialFrame.
//
// Both directions use github.com/go-audio/wav.
package wav
