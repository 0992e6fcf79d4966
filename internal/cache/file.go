package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/mrz1836/tollgate/internal/fileutil"
)

// cacheFilePermissions is the permission mode for cache files.
const cacheFilePermissions = 0o640

// ErrCorruptCache indicates the cache file is malformed JSON.
var ErrCorruptCache = errors.New("cache file is corrupted")

// FileStorage persists a ResolutionCache as JSON.
type FileStorage struct {
	path string
}

// NewFileStorage creates a new file-based cache storage.
func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

// Save writes the cache to the filesystem. Expired entries are not written.
func (s *FileStorage) Save(c *ResolutionCache) error {
	c.Prune()

	c.mu.RLock()
	defer c.mu.RUnlock()

	if err := fileutil.WriteJSON(s.path, c, cacheFilePermissions); err != nil {
		return fmt.Errorf("writing cache file: %w", err)
	}
	return nil
}

// Load reads the cache from the filesystem with the given TTL.
// A missing file yields an empty cache. A corrupt file is moved aside and
// an empty cache is returned together with ErrCorruptCache.
func (s *FileStorage) Load(ttl time.Duration) (*ResolutionCache, error) {
	c := NewResolutionCache(ttl)

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading cache file: %w", err)
	}

	var stored struct {
		Entries map[string]Entry `json:"entries"`
	}
	if err := json.Unmarshal(data, &stored); err != nil {
		corruptPath := fmt.Sprintf("%s.corrupt.%d", s.path, time.Now().UTC().UnixNano())
		if renameErr := os.Rename(s.path, corruptPath); renameErr != nil {
			return c, fmt.Errorf("%w: %w (also failed to move file: %w)", ErrCorruptCache, err, renameErr)
		}
		return c, fmt.Errorf("%w: %w (moved to %s)", ErrCorruptCache, err, corruptPath)
	}

	for key, entry := range stored.Entries {
		entry.Key = key
		c.Entries[key] = entry
	}
	c.Prune()

	return c, nil
}

// Delete removes the cache file.
func (s *FileStorage) Delete() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing cache file: %w", err)
	}
	return nil
}

// Path returns the cache file path.
func (s *FileStorage) Path() string {
	return s.path
}
