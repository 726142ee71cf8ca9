// SPDX-License-Identifier: EPL-2.0

package clock

import (
	"cmp"
	"fmt"

	"github.com/ik5/ppsalign/catalog"
)

// Position is a frame offset inside a shard.
type Position struct {
	Shard  catalog.Shard
	Offset int
}

// Compare orders positions by shard start time, then offset.
func (p Position) Compare(o Position) int {
	if c := cmp.Compare(p.Shard.Nanos, o.Shard.Nanos); c != 0 {
		return c
	}
	return cmp.Compare(p.Offset, o.Offset)
}

func (p Position) Before(o Position) bool { return p.Compare(o) < 0 }

func (p Position) String() string {
	return fmt.Sprintf("%s@%d", p.Shard.Name, p.Offset)
}
