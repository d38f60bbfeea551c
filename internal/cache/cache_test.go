package cache

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openclimate-tools/climateview/internal/model"
)

func TestKey_Deterministic(t *testing.T) {
	assert.Equal(t, Key("pledges", "CA"), Key("pledges", "CA"))
	assert.NotEqual(t, Key("pledges", "CA"), Key("pledges", "US"))
	assert.NotEqual(t, Key("pledges", "CA"), Key("dataset", "CA"))
	assert.Contains(t, Key("dataset", "unfccc"), "climateview:v1:")
}

func TestMemoryCache_RoundTrip(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	_, found := c.Get("missing")
	assert.False(t, found)

	require.NoError(t, c.Set("k", []byte("v"), time.Minute))
	val, found := c.Get("k")
	require.True(t, found)
	assert.Equal(t, []byte("v"), val)

	require.NoError(t, c.Delete("k"))
	_, found = c.Get("k")
	assert.False(t, found)
}

func TestDiskCache_RoundTrip(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Minute)

	require.NoError(t, c.Set("k", []byte("payload"), 0))
	val, found := c.Get("k")
	require.True(t, found)
	assert.Equal(t, []byte("payload"), val)
}

func TestDiskCache_Expiry(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Minute)

	require.NoError(t, c.Set("k", []byte("v"), -time.Second))
	_, found := c.Get("k")
	assert.False(t, found)
}

func TestSQLiteCache_RoundTrip(t *testing.T) {
	c, err := NewSQLiteCache(filepath.Join(t.TempDir(), "cache.db"), time.Minute)
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Set("k", []byte("payload"), 0))
	val, found := c.Get("k")
	require.True(t, found)
	assert.Equal(t, []byte("payload"), val)

	require.NoError(t, c.Set("k", []byte("updated"), 0))
	val, _ = c.Get("k")
	assert.Equal(t, []byte("updated"), val)

	require.NoError(t, c.Clear())
	_, found = c.Get("k")
	assert.False(t, found)
}

func TestSQLiteCache_Expiry(t *testing.T) {
	c, err := NewSQLiteCache(filepath.Join(t.TempDir(), "cache.db"), time.Minute)
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Set("k", []byte("v"), -time.Second))
	_, found := c.Get("k")
	assert.False(t, found)
}

func TestLayeredCache_PromotesOnHit(t *testing.T) {
	memory := NewMemoryCache(time.Minute, time.Minute)
	disk := NewDiskCache(t.TempDir(), time.Minute)
	layered := NewLayeredCache(memory, disk)

	// seed only the persistent layer
	require.NoError(t, disk.Set("k", []byte("v"), time.Minute))

	val, found := layered.Get("k")
	require.True(t, found)
	assert.Equal(t, []byte("v"), val)

	// hit should now be served from memory
	val, found = memory.Get("k")
	require.True(t, found)
	assert.Equal(t, []byte("v"), val)
}

func TestNew_DisabledReturnsNop(t *testing.T) {
	c, err := New(model.CacheConfig{Enabled: false})
	require.NoError(t, err)

	require.NoError(t, c.Set("k", []byte("v"), time.Minute))
	_, found := c.Get("k")
	assert.False(t, found)
}

func TestNew_UnknownBackend(t *testing.T) {
	_, err := New(model.CacheConfig{Enabled: true, Backend: "redis"})
	assert.Error(t, err)
}
