// SPDX-License-Identifier: EPL-2.0

package catalog

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
)

// Shard is one recording file named after its capture start in
// nanoseconds since the Unix epoch.
type Shard struct {
	Path  string
	Name  string
	Nanos int64
}

// Catalog is the time ordered list of shards of one directory.
type Catalog []Shard

// List reads dir and returns every regular file with extension ext whose
// stem parses as a signed 64-bit nanosecond timestamp, sorted numerically.
// Files with other stems are logged and skipped.
func List(dir, ext string, logger *slog.Logger) (Catalog, error) {
	if logger == nil {
		logger = slog.Default()
	}
	ext = "." + strings.TrimPrefix(strings.ToLower(ext), ".")

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}

	var cat Catalog
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		name := e.Name()
		if strings.ToLower(filepath.Ext(name)) != ext {
			continue
		}

		stem := strings.TrimSuffix(name, filepath.Ext(name))
		nanos, err := strconv.ParseInt(stem, 10, 64)
		if err != nil {
			logger.Warn("skipping shard with non numeric name", "file", name, "error", err)
			continue
		}

		cat = append(cat, Shard{
			Path:  filepath.Join(dir, name),
			Name:  name,
			Nanos: nanos,
		})
	}

	if len(cat) == 0 {
		return nil, fmt.Errorf("%w: %s (*%s)", ErrEmpty, dir, ext)
	}

	slices.SortStableFunc(cat, func(a, b Shard) int {
		switch {
		case a.Nanos < b.Nanos:
			return -1
		case a.Nanos > b.Nanos:
			return 1
		}
		return strings.Compare(a.Name, b.Name)
	})
	logger.Debug("listed shards", "dir", dir, "count", len(cat))

	return cat, nil
}

// Since returns the shards starting at or after nanos.
func (c Catalog) Since(nanos int64) Catalog {
	i, _ := slices.BinarySearchFunc(c, nanos, func(s Shard, t int64) int {
		switch {
		case s.Nanos < t:
			return -1
		case s.Nanos > t:
			return 1
		}
		return 0
	})
	return c[i:]
}

// IndexOf returns the position of s in the catalog or -1.
func (c Catalog) IndexOf(s Shard) int {
	return slices.IndexFunc(c, func(o Shard) bool { return o.Path == s.Path })
}

// ByName finds a shard by file name. A bare stem matches too.
func (c Catalog) ByName(name string) (Shard, error) {
	base := filepath.Base(name)
	for _, s := range c {
		if s.Name == base || strings.TrimSuffix(s.Name, filepath.Ext(s.Name)) == base {
			return s, nil
		}
	}
	return Shard{}, fmt.Errorf("%w: %s", ErrShardNotFound, name)
}
