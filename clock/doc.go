// Package clock resolves wall clock instants to positions inside recorder
// shards.
//
// Resolution happens in two steps. FindBest scans the shards around the
// target for the marker closest in time. FindStart then converts the
// remaining distance into samples and walks the catalog forward or backward
// from the marker until the remainder lands inside a shard.
//
// When a clock association table is available its rows act as markers and
// no shard needs to be scanned.
package clock
