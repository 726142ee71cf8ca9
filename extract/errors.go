package extract

import "errors"

var (
	// ErrReader means a shard could not be opened or read after the start
	// position was located.
	ErrReader = errors.New("shard read failed during extraction")

	// ErrStartShard is returned when the start shard is not part of the
	// shard sequence.
	ErrStartShard = errors.New("start shard not in sequence")
)
