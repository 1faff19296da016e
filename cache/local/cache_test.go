package local

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *LocalCache {
	c, err := NewCache(Config{GCInterval: time.Minute})
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func TestGetSet(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "key1", "value1", 0))

	v, err := c.Get(ctx, "key1")
	require.NoError(t, err)
	assert.Equal(t, "value1", v)
}

func TestGetMissing(t *testing.T) {
	c := newTestCache(t)
	_, err := c.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTTLExpiry(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "ttl_key", "val", 10*time.Millisecond))

	time.Sleep(20 * time.Millisecond)
	_, err := c.Get(ctx, "ttl_key")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDel(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()
	_ = c.Set(ctx, "a", "1", 0)
	_ = c.Set(ctx, "b", "2", 0)
	require.NoError(t, c.Del(ctx, "a", "b"))

	ok, _ := c.Exists(ctx, "a")
	assert.False(t, ok)
	ok, _ = c.Exists(ctx, "b")
	assert.False(t, ok)
}

func TestSetNX(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	ok, err := c.SetNX(ctx, "nx", "first", 0)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.SetNX(ctx, "nx", "second", 0)
	require.NoError(t, err)
	assert.False(t, ok)

	v, _ := c.Get(ctx, "nx")
	assert.Equal(t, "first", v)
}

func TestSetNX_AfterExpiry(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	ok, _ := c.SetNX(ctx, "nx", "first", 10*time.Millisecond)
	require.True(t, ok)
	time.Sleep(20 * time.Millisecond)

	ok, _ = c.SetNX(ctx, "nx", "second", 0)
	assert.True(t, ok)
}

func TestSetNX_SingleWinner(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := c.SetNX(ctx, "race", "x", time.Minute); ok {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins.Load())
}

func TestDelIfEqual(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()
	_ = c.Set(ctx, "owner", "token-a", 0)

	ok, err := c.DelIfEqual(ctx, "owner", "token-b")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = c.DelIfEqual(ctx, "owner", "token-a")
	require.NoError(t, err)
	assert.True(t, ok)

	exists, _ := c.Exists(ctx, "owner")
	assert.False(t, exists)
}

func TestPurgeRemovesExpired(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()
	_ = c.Set(ctx, "short", "v", time.Millisecond)
	_ = c.Set(ctx, "long", "v", 0)
	time.Sleep(5 * time.Millisecond)

	c.purge()

	c.mu.Lock()
	defer c.mu.Unlock()
	_, shortKept := c.kv["short"]
	_, longKept := c.kv["long"]
	assert.False(t, shortKept)
	assert.True(t, longKept)
}
