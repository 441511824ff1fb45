package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func caches(t *testing.T) map[string]Cache {
	return map[string]Cache{
		"memory": NewMemory(),
		"file":   NewFile(t.TempDir()),
	}
}

func TestCache_SetGetClear(t *testing.T) {
	for name, cache := range caches(t) {
		t.Run(name, func(t *testing.T) {
			_, ok := cache.Get()
			assert.False(t, ok)

			cache.Set("alice")
			got, ok := cache.Get()
			assert.True(t, ok)
			assert.Equal(t, "alice", got)

			cache.Set("bob")
			got, _ = cache.Get()
			assert.Equal(t, "bob", got)

			cache.Clear()
			_, ok = cache.Get()
			assert.False(t, ok)
		})
	}
}

// Clear must be safe to call redundantly; the session store and the
// gateway's policy both call it without coordinating.
func TestCache_ClearIsIdempotent(t *testing.T) {
	for name, cache := range caches(t) {
		t.Run(name, func(t *testing.T) {
			cache.Clear()
			cache.Clear()

			cache.Set("alice")
			cache.Clear()
			cache.Clear()
			_, ok := cache.Get()
			assert.False(t, ok)
		})
	}
}

func TestFile_SurvivesRestart(t *testing.T) {
	dir := t.TempDir()

	NewFile(dir).Set("alice")

	got, ok := NewFile(dir).Get()
	assert.True(t, ok)
	assert.Equal(t, "alice", got)
}

func TestFile_SetEmptyClears(t *testing.T) {
	dir := t.TempDir()
	cache := NewFile(dir)
	cache.Set("alice")
	cache.Set("")

	_, ok := cache.Get()
	assert.False(t, ok)
}
