// Package cache is the content-addressed store for extracted document text.
// Entries are keyed by a fingerprint of the source file's path, modification
// time and size; any metadata change produces a new fingerprint and the old
// entry is simply orphaned. Read and write failures are degraded, never
// fatal: callers treat the cache purely as a performance optimization.
package cache

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lantern-study/lantern/log"
	"github.com/lantern-study/lantern/utils"
)

// Fingerprint is the derived identity of a source file used as the cache key.
// Its hex form is filesystem-safe and used directly as the entry filename.
type Fingerprint string

// Cache maps source-file fingerprints to previously extracted text, one
// .txt blob per fingerprint under dir.
type Cache struct {
	dir string
}

// New returns a cache rooted at dir. The directory is created lazily on the
// first write.
func New(dir string) *Cache {
	return &Cache{dir: dir}
}

// FingerprintFile derives the fingerprint for path from its absolute path,
// mtime and size. Content is deliberately not read: a file rewritten with
// identical path+mtime+size is missed, an accepted trade-off for a local
// single-user tool.
func (c *Cache) FingerprintFile(path string) (Fingerprint, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", err
	}

	sum := md5.Sum([]byte(fmt.Sprintf("%s_%d_%d", abs, info.ModTime().UnixNano(), info.Size())))
	return Fingerprint(hex.EncodeToString(sum[:])), nil
}

// Get returns the cached text for fp, or ok=false on a miss or any read
// error.
func (c *Cache) Get(fp Fingerprint) (string, bool) {
	data, err := os.ReadFile(c.entryPath(fp))
	if err != nil {
		return "", false
	}
	return string(data), true
}

// Put stores text under fp. The write goes through a temp file and rename so
// concurrent writers of the same fingerprint never leave a torn entry.
// Returns false on failure; callers proceed without caching.
func (c *Cache) Put(fp Fingerprint, text string) bool {
	if err := utils.WriteFileAtomic(c.entryPath(fp), []byte(text)); err != nil {
		log.Warn().Err(err).Str("fingerprint", string(fp)).Msg("cache write failed")
		return false
	}
	return true
}

// Stats returns the number of cache entries and their total size in bytes.
func (c *Cache) Stats() (files int, bytes int64) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return 0, 0
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		files++
		if info, err := e.Info(); err == nil {
			bytes += info.Size()
		}
	}
	return files, bytes
}

// Clear removes every cache entry. Operator-invoked; there is no automatic
// eviction.
func (c *Cache) Clear() error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(c.dir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

func (c *Cache) entryPath(fp Fingerprint) string {
	return filepath.Join(c.dir, string(fp)+".txt")
}
