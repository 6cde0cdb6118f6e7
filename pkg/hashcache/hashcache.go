// Package hashcache computes md5, sha1 and sha256 digests of files and caches them by file identity.
// A cached entry is reused while path, device, inode, size and mtime stay the same, so a content change
// keeping all of them is not detected. That is the price of not re-reading unchanged files.
package hashcache

import (
	"crypto/md5"  // nolint
	"crypto/sha1" // nolint
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"sync/atomic"
)

// ErrNotFound returned when the path can't be stat-ed, i.e. vanished or never existed
var ErrNotFound = errors.New("file not found")

// Digests of a file content, hex encoded
type Digests struct {
	MD5    string
	SHA1   string
	SHA256 string
}

// Identity is the tuple deciding if a cached entry is still valid
type Identity struct {
	Path    string
	Device  uint64
	Inode   uint64
	Size    int64
	ModTime int64 // unix nanoseconds
}

// Stats of the cache usage
type Stats struct {
	Hits   int64
	Misses int64
	Stores int64
}

type entry struct {
	id      Identity
	digests Digests
}

// Cache is a concurrency-safe digest cache. Zero value is not usable, use New.
type Cache struct {
	enabled atomic.Bool
	lock    sync.RWMutex
	entries map[string]entry

	hits, misses, stores atomic.Int64
}

// New makes a cache, enabled or disabled
func New(enabled bool) *Cache {
	res := &Cache{entries: make(map[string]entry)}
	res.enabled.Store(enabled)
	return res
}

// SetEnabled turns caching on or off. Disabled cache always recomputes and never stores.
// Entries stored before are kept and used again once enabled.
func (c *Cache) SetEnabled(enabled bool) { c.enabled.Store(enabled) }

// Enabled reports whether caching is on
func (c *Cache) Enabled() bool { return c.enabled.Load() }

// GetOrCompute returns digests of the file, from cache if the identity of the file didn't change.
// The lock is held only for map access, hashing runs outside of it.
func (c *Cache) GetOrCompute(path string) (Digests, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return Digests{}, fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	if fi.IsDir() {
		return Digests{}, fmt.Errorf("can't hash directory %s", path)
	}
	id := identity(path, fi)

	if c.Enabled() {
		c.lock.RLock()
		e, ok := c.entries[path]
		c.lock.RUnlock()
		if ok && e.id == id {
			c.hits.Add(1)
			return e.digests, nil
		}
	}
	c.misses.Add(1)

	digests, readID, stable, err := compute(path)
	if err != nil {
		return Digests{}, err
	}
	if !stable {
		log.Printf("[DEBUG] %s changed while hashing, not cached", path)
		return digests, nil
	}
	if c.Enabled() {
		c.lock.Lock()
		c.entries[path] = entry{id: readID, digests: digests}
		c.lock.Unlock()
		c.stores.Add(1)
	}
	return digests, nil
}

// Stats returns usage counters
func (c *Cache) Stats() Stats {
	return Stats{Hits: c.hits.Load(), Misses: c.misses.Load(), Stores: c.stores.Load()}
}

// Len returns number of cached entries
func (c *Cache) Len() int {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return len(c.entries)
}

// Purge drops all cached entries
func (c *Cache) Purge() {
	c.lock.Lock()
	c.entries = make(map[string]entry)
	c.lock.Unlock()
}

// compute reads the file once, feeding all hashers. Identity is taken from the open handle before
// and after reading, stable is false if they differ.
func compute(path string) (res Digests, id Identity, stable bool, err error) {
	fh, err := os.Open(path) // nolint
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Digests{}, Identity{}, false, fmt.Errorf("%w: %w", ErrNotFound, err)
		}
		return Digests{}, Identity{}, false, fmt.Errorf("can't open %s: %w", path, err)
	}
	defer fh.Close() // nolint

	before, err := fh.Stat()
	if err != nil {
		return Digests{}, Identity{}, false, fmt.Errorf("can't stat open file %s: %w", path, err)
	}

	md5h, sha1h, sha256h := md5.New(), sha1.New(), sha256.New() // nolint
	if _, err = io.Copy(io.MultiWriter(md5h, sha1h, sha256h), fh); err != nil {
		return Digests{}, Identity{}, false, fmt.Errorf("can't read %s: %w", path, err)
	}

	after, err := fh.Stat()
	if err != nil {
		return Digests{}, Identity{}, false, fmt.Errorf("can't stat open file %s: %w", path, err)
	}

	res = Digests{
		MD5:    hex.EncodeToString(md5h.Sum(nil)),
		SHA1:   hex.EncodeToString(sha1h.Sum(nil)),
		SHA256: hex.EncodeToString(sha256h.Sum(nil)),
	}
	id = identity(path, after)
	return res, id, identity(path, before) == id, nil
}
