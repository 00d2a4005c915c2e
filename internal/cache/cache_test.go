package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpup/scenario-geometry/server/internal/lib/geo"
	"github.com/dpup/scenario-geometry/server/internal/lib/roadnet"
	"github.com/dpup/scenario-geometry/server/internal/lib/routing"
)

func sampleRoute() routing.GeoRoute {
	return routing.GeoRoute{
		{Coordinate: geo.GeoCoordinate{Latitude: 42, Longitude: 2}, Option: roadnet.LaneFollow},
		{Coordinate: geo.GeoCoordinate{Latitude: 42.0001, Longitude: 2}, Option: roadnet.Left},
	}
}

func TestCacheSetGet(t *testing.T) {
	c := NewCache(nil)

	require.NoError(t, c.Set("k", map[string]int{"a": 1}, time.Minute))

	var got map[string]int
	found, err := c.Get("k", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 1, got["a"])

	found, err = c.Get("missing", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCacheExpiry(t *testing.T) {
	c := NewCache(nil)
	require.NoError(t, c.Set("k", "v", -time.Second))

	var got string
	found, err := c.Get("k", &got)
	require.NoError(t, err)
	assert.False(t, found, "expired entries are misses")
	assert.Equal(t, 1, c.Stats().StaleEntries, "expired entries stay until cleanup")
}

func TestCacheStatsAndCleanup(t *testing.T) {
	c := NewCache(nil)
	require.NoError(t, c.Set("fresh", 1, time.Minute))
	require.NoError(t, c.Set("stale", 2, -time.Second))

	stats := c.Stats()
	assert.Equal(t, 2, stats.TotalEntries)
	assert.Equal(t, 1, stats.FreshEntries)
	assert.Equal(t, 1, stats.StaleEntries)

	assert.Equal(t, 1, c.CleanupStale())
	stats = c.Stats()
	assert.Equal(t, 1, stats.TotalEntries)
	assert.Equal(t, 0, stats.StaleEntries)
	assert.False(t, stats.OldestEntry.IsZero())
}

func TestCachePeriodicCleanup(t *testing.T) {
	c := NewCache(nil)
	require.NoError(t, c.Set("stale", 1, -time.Second))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c.StartPeriodicCleanup(ctx, 10*time.Millisecond)

	assert.Eventually(t, func() bool {
		return c.Stats().TotalEntries == 0
	}, time.Second, 10*time.Millisecond)
}

func TestCacheRouteStore(t *testing.T) {
	var store RouteStore = NewCache(nil)
	ctx := context.Background()

	_, found, err := store.GetRoute(ctx, "fourway")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.SetRoute(ctx, "fourway", sampleRoute(), time.Minute))

	got, found, err := store.GetRoute(ctx, "fourway")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, sampleRoute(), got)
}

func TestValkeyStore_Integration(t *testing.T) {
	addr := os.Getenv("VALKEY_ADDR")
	if testing.Short() || addr == "" {
		t.Skip("Skipping Valkey integration test; set VALKEY_ADDR to run")
	}

	store, err := NewValkeyStore(addr, "roadgeo-test")
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	key := "integration-" + time.Now().Format("150405.000")
	defer func() { _ = store.Delete(ctx, key) }()

	_, found, err := store.GetRoute(ctx, key)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.SetRoute(ctx, key, sampleRoute(), time.Minute))

	got, found, err := store.GetRoute(ctx, key)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, sampleRoute(), got)
}
