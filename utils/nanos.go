// SPDX-License-Identifier: EPL-2.0

package utils

import "math"

// NanosPerSecond is the number of nanoseconds in one second.
const NanosPerSecond = 1_000_000_000

// PackNanos joins two 32-bit marker words into a nanosecond timestamp.
// lo supplies the low 32 bits and hi the high 32 bits.
func PackNanos(lo, hi int32) int64 {
	return int64(uint64(uint32(lo)) | uint64(uint32(hi))<<32)
}

// SplitNanos is the inverse of PackNanos.
func SplitNanos(nanos int64) (lo, hi int32) {
	u := uint64(nanos)
	return int32(uint32(u)), int32(uint32(u >> 32))
}

// NanosToSamples converts a nanosecond span into a whole number of samples
// at rate Hz, rounding half away from zero.
func NanosToSamples(nanos int64, rate float64) int64 {
	return int64(math.Round(float64(nanos) / NanosPerSecond * rate))
}

// SamplesToNanos converts a sample count at rate Hz into nanoseconds.
func SamplesToNanos(samples int64, rate float64) int64 {
	if rate == 0 {
		return 0
	}
	return int64(math.Round(float64(samples) / rate * NanosPerSecond))
}

// AbsInt64 returns |v|.
func AbsInt64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
