package cache

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DefaultDir is the cache directory used when none is configured. It is
// relative to the working directory.
const DefaultDir = ".npm_time_machine_cache"

// FileCache stores each entry as a JSON file in a single flat directory.
// The filename is derived from the key with [EscapeKey]. The directory is
// created on the first write.
//
// FileCache is safe for concurrent use: writes go to a temporary file that
// is renamed into place, so readers never observe a partial entry.
type FileCache struct {
	dir string
}

// NewFileCache creates a file cache rooted at dir. An empty dir selects
// [DefaultDir].
func NewFileCache(dir string) *FileCache {
	if dir == "" {
		dir = DefaultDir
	}
	return &FileCache{dir: dir}
}

// Dir returns the cache directory.
func (c *FileCache) Dir() string { return c.dir }

// entry wraps cached data with metadata.
type entry struct {
	Data      json.RawMessage `json:"data"`
	ExpiresAt *time.Time      `json:"expires_at,omitempty"`
}

// Get retrieves a value from the cache. Entries that cannot be read or
// decoded (for instance a file truncated by a crashed run) are removed and
// reported as a miss.
func (c *FileCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	path := c.path(key)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false, nil
	}

	var e entry
	if err := json.Unmarshal(data, &e); err != nil || len(e.Data) == 0 {
		_ = os.Remove(path)
		return nil, false, nil
	}

	if e.ExpiresAt != nil && time.Now().After(*e.ExpiresAt) {
		_ = os.Remove(path)
		return nil, false, nil
	}

	return e.Data, true, nil
}

// Set stores data, which must be valid JSON, under key.
func (c *FileCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	e := entry{Data: data}
	if ttl > 0 {
		exp := time.Now().Add(ttl)
		e.ExpiresAt = &exp
	}

	encoded, err := json.Marshal(e)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(c.dir, ".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(encoded); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), c.path(key))
}

// Delete removes a value from the cache.
func (c *FileCache) Delete(ctx context.Context, key string) error {
	err := os.Remove(c.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Clear removes every entry and returns how many were deleted. A missing
// directory counts as an empty cache.
func (c *FileCache) Clear() (int, error) {
	entries, err := os.ReadDir(c.dir)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	count := 0
	for _, de := range entries {
		if de.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(c.dir, de.Name())); err != nil {
			return count, err
		}
		if !strings.HasPrefix(de.Name(), ".tmp-") {
			count++
		}
	}
	return count, nil
}

// Close does nothing for file cache.
func (c *FileCache) Close() error {
	return nil
}

func (c *FileCache) path(key string) string {
	return filepath.Join(c.dir, EscapeKey(key))
}

var _ Cache = (*FileCache)(nil)
