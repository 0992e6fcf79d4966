package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStorage(t *testing.T) {
	t.Parallel()

	t.Run("Save and Load round-trip", func(t *testing.T) {
		t.Parallel()

		storage := NewFileStorage(filepath.Join(t.TempDir(), "handles.json"))

		c := NewResolutionCache(time.Hour)
		c.Set(Entry{Key: Key("yat", "🦊🚀"), Address: "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", Found: true})
		c.Set(Entry{Key: Key("yat", "🍕"), Found: false})
		require.NoError(t, storage.Save(c))

		loaded, err := storage.Load(time.Hour)
		require.NoError(t, err)
		assert.Equal(t, 2, loaded.Size())

		hit, ok := loaded.Get(Key("yat", "🦊🚀"))
		require.True(t, ok)
		assert.True(t, hit.Found)
		assert.Equal(t, "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", hit.Address)

		miss, ok := loaded.Get(Key("yat", "🍕"))
		require.True(t, ok)
		assert.False(t, miss.Found)
	})

	t.Run("Load returns empty cache when file doesn't exist", func(t *testing.T) {
		t.Parallel()

		storage := NewFileStorage(filepath.Join(t.TempDir(), "nonexistent.json"))
		c, err := storage.Load(time.Minute)
		require.NoError(t, err)
		require.NotNil(t, c)
		assert.Equal(t, 0, c.Size())
	})

	t.Run("Load drops expired entries", func(t *testing.T) {
		t.Parallel()

		storage := NewFileStorage(filepath.Join(t.TempDir(), "handles.json"))
		c := NewResolutionCache(time.Hour)
		c.Set(Entry{Key: "yat|old", Found: true, Address: "0x1"})
		require.NoError(t, storage.Save(c))

		loaded, err := storage.Load(time.Nanosecond)
		require.NoError(t, err)
		assert.Equal(t, 0, loaded.Size())
	})

	t.Run("Corrupt file is moved aside", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, "handles.json")
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

		c, err := NewFileStorage(path).Load(time.Minute)
		require.ErrorIs(t, err, ErrCorruptCache)
		require.NotNil(t, c)
		assert.Equal(t, 0, c.Size())

		_, statErr := os.Stat(path)
		assert.True(t, os.IsNotExist(statErr))

		matches, globErr := filepath.Glob(path + ".corrupt.*")
		require.NoError(t, globErr)
		assert.Len(t, matches, 1)
	})

	t.Run("Delete is idempotent", func(t *testing.T) {
		t.Parallel()

		storage := NewFileStorage(filepath.Join(t.TempDir(), "nested", "handles.json"))
		require.NoError(t, storage.Save(NewResolutionCache(0)))
		require.NoError(t, storage.Delete())
		require.NoError(t, storage.Delete())
	})
}

func TestResolutionCache(t *testing.T) {
	t.Parallel()

	t.Run("Get returns fresh entries", func(t *testing.T) {
		t.Parallel()

		c := NewResolutionCache(time.Minute)
		c.Set(Entry{Key: "k", Address: "0xabc", Found: true})

		entry, ok := c.Get("k")
		require.True(t, ok)
		assert.Equal(t, "0xabc", entry.Address)
		assert.WithinDuration(t, time.Now(), entry.UpdatedAt, time.Second)
	})

	t.Run("Expired entries are missing", func(t *testing.T) {
		t.Parallel()

		now := time.Now()
		c := NewResolutionCache(time.Minute)
		c.now = func() time.Time { return now }
		c.Set(Entry{Key: "k", Found: true})

		c.now = func() time.Time { return now.Add(2 * time.Minute) }
		_, ok := c.Get("k")
		assert.False(t, ok)
		assert.Equal(t, 1, c.Size())

		assert.Equal(t, 1, c.Prune())
		assert.Equal(t, 0, c.Size())
	})

	t.Run("Delete and Clear", func(t *testing.T) {
		t.Parallel()

		c := NewResolutionCache(time.Minute)
		c.Set(Entry{Key: "a"})
		c.Set(Entry{Key: "b"})
		c.Delete("a")
		assert.Equal(t, 1, c.Size())

		c.Clear()
		assert.Equal(t, 0, c.Size())
	})

	t.Run("Default TTL", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, DefaultTTL, NewResolutionCache(0).TTL())
	})

	t.Run("Key trims the handle", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "yat|🦊", Key("yat", " 🦊 "))
	})
}
