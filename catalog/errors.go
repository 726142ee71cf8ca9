package catalog

import "errors"

var (
	// ErrEmpty is returned when a directory holds no shard with the extension.
	ErrEmpty = errors.New("no shards found")

	// ErrShardNotFound is returned by lookups for a shard the catalog lacks.
	ErrShardNotFound = errors.New("shard not in catalog")
)
