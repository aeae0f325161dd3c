// Package rehashcache is an opt-in, on-disk cache of file digests keyed by
// path, size and modification time, backed by a pebble LSM store. It lets a
// create run skip re-reading files that have not changed since the last
// time the same --cache-dir was used.
package rehashcache

import (
	"fmt"

	"github.com/cockroachdb/pebble/v2"
)

// Cache wraps a pebble instance rooted at a caller-supplied directory.
type Cache struct {
	db *pebble.DB
}

// Open creates or reopens the cache at dir.
func Open(dir string) (*Cache, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("open rehash cache %q: %w", dir, err)
	}
	return &Cache{db: db}, nil
}

func (c *Cache) Close() error {
	return c.db.Close()
}

func key(path string, size uint64, mtime int64) []byte {
	return []byte(fmt.Sprintf("%s|%d|%d", path, size, mtime))
}

// Entry is the pair of digests stored per cache key.
type Entry struct {
	Checksum   [64]byte
	Similarity []byte
}

// Lookup returns the cached digest pair for (path, size, mtime), if any.
func (c *Cache) Lookup(path string, size uint64, mtime int64) (Entry, bool) {
	v, closer, err := c.db.Get(key(path, size, mtime))
	if err != nil {
		return Entry{}, false
	}
	defer closer.Close()
	if len(v) < 64 {
		return Entry{}, false
	}
	var e Entry
	copy(e.Checksum[:], v[:64])
	if len(v) > 64 {
		e.Similarity = append([]byte(nil), v[64:]...)
	}
	return e, true
}

// Store records the digest pair for (path, size, mtime).
func (c *Cache) Store(path string, size uint64, mtime int64, e Entry) error {
	v := make([]byte, 64+len(e.Similarity))
	copy(v, e.Checksum[:])
	copy(v[64:], e.Similarity)
	return c.db.Set(key(path, size, mtime), v, pebble.Sync)
}
