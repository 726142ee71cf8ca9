// SPDX-License-Identifier: EPL-2.0

package extract

import (
	"cmp"
	"slices"
)

// BreakWindow is a known bad wall clock span [Start, End) in Unix
// nanoseconds.
type BreakWindow struct {
	Start int64
	End   int64
}

func (w BreakWindow) Len() int64 { return w.End - w.Start }

// ClipWindows returns the windows overlapping [from, to), clipped to it,
// sorted and with overlapping windows merged.
func ClipWindows(windows []BreakWindow, from, to int64) []BreakWindow {
	var out []BreakWindow
	for _, w := range windows {
		w.Start = max(w.Start, from)
		w.End = min(w.End, to)
		if w.End <= w.Start {
			continue
		}
		out = append(out, w)
	}

	slices.SortFunc(out, func(a, b BreakWindow) int { return cmp.Compare(a.Start, b.Start) })

	merged := out[:0]
	for _, w := range out {
		if n := len(merged); n > 0 && w.Start <= merged[n-1].End {
			merged[n-1].End = max(merged[n-1].End, w.End)
			continue
		}
		merged = append(merged, w)
	}
	return merged
}
