// Package marker finds the in-band wall clock markers of recorder shards.
//
// A marker is three consecutive raw samples: the sentinel 0xEEEEEEEE, the
// low 32 bits of a nanosecond Unix timestamp, then the high 32 bits.
package marker
