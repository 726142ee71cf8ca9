package clock

import "errors"

var (
	// ErrMarkerNotFound means no candidate shard carried a marker.
	ErrMarkerNotFound = errors.New("no marker found near target")

	// ErrStartNotFound means the walk from the marker ran out of shards.
	ErrStartNotFound = errors.New("start position not found")

	// ErrUnknownShard is returned for association rows naming a shard
	// that is not in the catalog.
	ErrUnknownShard = errors.New("association references unknown shard")
)
