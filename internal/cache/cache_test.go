package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (AuthorSetCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisAuthorSetCache(client, time.Minute), mr
}

func TestRedisAuthorSetCache_MissThenHit(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	_, gen, ok, err := c.Get(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, gen)

	require.NoError(t, c.Set(ctx, 1, gen, []uint{1, 2, 3}))
	ids, _, ok, err := c.Get(ctx, 1)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.ElementsMatch(t, []uint{1, 2, 3}, ids)
}

func TestRedisAuthorSetCache_EmptySetIsAHit(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, 7, 0, nil))
	ids, _, ok, err := c.Get(ctx, 7)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, ids)
}

func TestRedisAuthorSetCache_SetReplacesMembers(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, 1, 0, []uint{1, 2}))
	require.NoError(t, c.Set(ctx, 1, 0, []uint{1}))
	ids, _, _, err := c.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []uint{1}, ids)
}

func TestRedisAuthorSetCache_InvalidateAndExpire(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, 1, 0, []uint{1}))
	require.NoError(t, c.Invalidate(ctx, 1))
	_, gen, ok, err := c.Get(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, int64(1), gen)

	require.NoError(t, c.Set(ctx, 2, 0, []uint{2}))
	mr.FastForward(2 * time.Minute)
	_, _, ok, err = c.Get(ctx, 2)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisAuthorSetCache_ServerDown(t *testing.T) {
	c, mr := newTestCache(t)
	mr.Close()

	_, _, ok, err := c.Get(context.Background(), 1)
	assert.Error(t, err)
	assert.False(t, ok)

	err = c.Set(context.Background(), 1, 0, []uint{1})
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrStale)
}

func TestRedisAuthorSetCache_SetAfterInvalidateIsRejected(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	// a reader misses and captures the generation
	_, gen, ok, err := c.Get(ctx, 1)
	require.NoError(t, err)
	require.False(t, ok)

	// the follow graph changes before the reader writes back
	require.NoError(t, c.Invalidate(ctx, 1))

	assert.ErrorIs(t, c.Set(ctx, 1, gen, []uint{1}), ErrStale)
	assert.False(t, mr.Exists("feed:authors:1"))

	_, gen, ok, err = c.Get(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, c.Set(ctx, 1, gen, []uint{1, 2}))
	ids, _, ok, err := c.Get(ctx, 1)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.ElementsMatch(t, []uint{1, 2}, ids)
}

func TestRedisAuthorSetCache_InvalidateKeepsGenerationAlive(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Invalidate(ctx, 3))
	require.NoError(t, c.Invalidate(ctx, 3))
	got, err := mr.Get("feed:authors:gen:3")
	require.NoError(t, err)
	assert.Equal(t, "2", got)
	assert.Equal(t, genTTL, mr.TTL("feed:authors:gen:3"))
}

func TestNoopAuthorSetCache(t *testing.T) {
	c := NewNoopAuthorSetCache()
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, 1, 0, []uint{1}))
	_, _, ok, err := c.Get(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, c.Invalidate(ctx, 1))
}
