package activity

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func storeFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "activity.json")
}

func TestStore(t *testing.T) {
	epoch := time.UnixMilli(0)

	t.Run("unknown user returns the epoch", func(t *testing.T) {
		store := NewStore(storeFile(t))
		assert.True(t, store.LastSeen("nobody").Equal(epoch))
	})

	t.Run("record overwrites the previous timestamp", func(t *testing.T) {
		store := NewStore(storeFile(t))
		t1 := time.Now().Add(-time.Hour)
		t2 := time.Now()
		store.Record("u1", t1)
		store.Record("u1", t2)
		assert.Equal(t, t2.UnixMilli(), store.LastSeen("u1").UnixMilli())
	})

	t.Run("load creates a missing file", func(t *testing.T) {
		filename := storeFile(t)
		store := NewStore(filename)
		store.Load()
		_, err := os.Stat(filename)
		require.NoError(t, err)
	})

	t.Run("mapping round trips through disk", func(t *testing.T) {
		filename := storeFile(t)
		store := NewStore(filename)
		t1 := time.Now().Add(-24 * time.Hour)
		t2 := time.Now()
		store.Record("u1", t1)
		store.Record("u2", t2)

		reloaded := NewStore(filename)
		reloaded.Load()
		assert.Equal(t, 2, reloaded.Count())
		assert.Equal(t, t1.UnixMilli(), reloaded.LastSeen("u1").UnixMilli())
		assert.Equal(t, t2.UnixMilli(), reloaded.LastSeen("u2").UnixMilli())
	})

	t.Run("corrupt file resets to empty", func(t *testing.T) {
		filename := storeFile(t)
		require.NoError(t, os.WriteFile(filename, []byte("not json at all"), 0o644))

		store := NewStore(filename)
		store.Load()
		assert.Equal(t, 0, store.Count())
		assert.True(t, store.LastSeen("u1").Equal(epoch))

		// The reset mapping replaced the broken file
		reloaded := NewStore(filename)
		reloaded.Load()
		assert.Equal(t, 0, reloaded.Count())
	})
}
