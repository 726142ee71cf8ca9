// SPDX-License-Identifier: EPL-2.0

// Package aiff decodes 32-bit integer PCM AIFF shards.
//
// It uses github.com/go-audio/aiff. Only 32-bit samples are accepted since
// marker words occupy the full sample width.
//
//	f, _ := os.Open("1700000000000000000.aiff")
//	src, err := aiff.Decoder{}.Decode(f)
//
// The go-audio decoder streams the sound data chunk, so the returned source
// can only Seek forward. Seeking backwards fails with audio.ErrSeekBackward;
// reopen the shard instead.
package aiff
