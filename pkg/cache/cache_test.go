package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFileCacheRoundTrip(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	require.NoError(t, err)
	defer c.Close()

	ctx := t.Context()

	_, hit, err := c.Get(ctx, "missing")
	require.NoError(t, err)
	require.False(t, hit)

	require.NoError(t, c.Set(ctx, "svg", []byte("<svg/>"), 0))
	data, hit, err := c.Get(ctx, "svg")
	require.NoError(t, err)
	require.True(t, hit)
	require.Equal(t, []byte("<svg/>"), data)

	require.NoError(t, c.Delete(ctx, "svg"))
	_, hit, err = c.Get(ctx, "svg")
	require.NoError(t, err)
	require.False(t, hit)

	require.NoError(t, c.Delete(ctx, "svg"))
}

func TestFileCacheExpiry(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	require.NoError(t, err)
	defer c.Close()

	ctx := t.Context()
	require.NoError(t, c.Set(ctx, "short", []byte("x"), time.Millisecond))
	time.Sleep(5 * time.Millisecond)

	_, hit, err := c.Get(ctx, "short")
	require.NoError(t, err)
	require.False(t, hit)
}

func TestNullCacheAlwaysMisses(t *testing.T) {
	c := NewNullCache()
	defer c.Close()

	ctx := t.Context()
	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Hour))

	data, hit, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, hit)
	require.Nil(t, data)
}

func TestKeyIsStableAndDistinct(t *testing.T) {
	type opts struct {
		Module    string
		Waypoints bool
	}

	a := Key("render", opts{Module: "main"}, []byte("snapshot"))
	b := Key("render", opts{Module: "main"}, []byte("snapshot"))
	require.Equal(t, a, b)

	c := Key("render", opts{Module: "aux"}, []byte("snapshot"))
	require.NotEqual(t, a, c)
}
