// SPDX-License-Identifier: EPL-2.0

package clock

import (
	"fmt"

	"github.com/ik5/ppsalign/catalog"
	"github.com/ik5/ppsalign/marker"
	"github.com/ik5/ppsalign/table"
)

// AnchorsFromAssociations turns clock association rows into markers on the
// shards they name.
func AnchorsFromAssociations(rows []table.Association, cat catalog.Catalog) ([]marker.Marker, error) {
	out := make([]marker.Marker, 0, len(rows))
	for _, row := range rows {
		shard, err := cat.ByName(row.File)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUnknownShard, err)
		}
		out = append(out, marker.Marker{
			Nanos:  row.Time,
			Offset: row.FileSample,
			Shard:  shard,
		})
	}
	return out, nil
}
