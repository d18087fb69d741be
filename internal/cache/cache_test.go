package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := NewRedis(Dial(mr.Addr(), "", 0), time.Minute, nil)
	t.Cleanup(func() { c.Close() })
	return c, mr
}

func TestRedisRoundTrip(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	key := c.Key(ctx, "list", map[string]string{"page": "1", "city": "Bangkok"})
	var out map[string]int
	found, err := c.Get(ctx, key, &out)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.Set(ctx, key, map[string]int{"total": 3}))
	found, err = c.Get(ctx, key, &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 3, out["total"])
}

func TestKeyIgnoresParamOrder(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	a := c.Key(ctx, "list", map[string]string{"a": "1", "b": "2"})
	b := c.Key(ctx, "list", map[string]string{"b": "2", "a": "1"})
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c.Key(ctx, "search", map[string]string{"a": "1", "b": "2"}))
}

func TestInvalidateChangesKeys(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()
	params := map[string]string{"page": "1"}

	before := c.Key(ctx, "list", params)
	require.NoError(t, c.Set(ctx, before, "stale"))
	require.NoError(t, c.Invalidate(ctx))
	after := c.Key(ctx, "list", params)

	assert.NotEqual(t, before, after)
	var out string
	found, err := c.Get(ctx, after, &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestEntriesExpire(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	key := c.Key(ctx, "types", nil)
	require.NoError(t, c.Set(ctx, key, []string{"CONDO"}))

	mr.FastForward(2 * time.Minute)

	var out []string
	found, err := c.Get(ctx, key, &out)
	require.NoError(t, err)
	assert.False(t, found)
}
