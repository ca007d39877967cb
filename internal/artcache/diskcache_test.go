package artcache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutAndGetRoundTrip(t *testing.T) {
	c, err := NewDiskCache(t.TempDir(), 1024*1024, nil)
	require.NoError(t, err)

	require.NoError(t, c.Put("album:abc", []byte("hello")))
	data, ok := c.Get("album:abc")
	require.True(t, ok)
	assert.Equal(t, []byte("hello"), data)
}

func TestGetMissReturnsFalse(t *testing.T) {
	c, err := NewDiskCache(t.TempDir(), 1024*1024, nil)
	require.NoError(t, err)

	_, ok := c.Get("missing")
	assert.False(t, ok)
}

func TestEvictsOldestWhenOverBudget(t *testing.T) {
	c, err := NewDiskCache(t.TempDir(), 10, nil)
	require.NoError(t, err)

	require.NoError(t, c.Put("a", []byte("12345")))
	require.NoError(t, c.Put("b", []byte("12345")))
	// Adding a third entry should evict "a" (least recently used).
	require.NoError(t, c.Put("c", []byte("12345")))

	_, ok := c.Get("a")
	assert.False(t, ok)
	_, ok = c.Get("b")
	assert.True(t, ok)
	_, ok = c.Get("c")
	assert.True(t, ok)
}

func TestManifestSurvivesReload(t *testing.T) {
	dir := t.TempDir()
	c, err := NewDiskCache(dir, 1024*1024, nil)
	require.NoError(t, err)
	require.NoError(t, c.Put("album:abc", []byte("hello")))

	reopened, err := NewDiskCache(dir, 1024*1024, nil)
	require.NoError(t, err)
	data, ok := reopened.Get("album:abc")
	require.True(t, ok)
	assert.Equal(t, []byte("hello"), data)
}
