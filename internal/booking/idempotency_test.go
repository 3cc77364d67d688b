package booking

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdempotencyKeyDeterministic(t *testing.T) {
	loc, _ := time.LoadLocation("Europe/London")
	start := time.Date(2025, 6, 10, 15, 0, 0, 0, loc)
	slot := Slot{Start: start, End: start.Add(30 * time.Minute)}

	key1 := IdempotencyKey("jane@example.com", slot)
	key2 := IdempotencyKey("  JANE@example.com ", slot)
	assert.Equal(t, key1, key2, "key must normalize email case and whitespace")

	otherSlot := Slot{Start: start.Add(time.Hour), End: start.Add(90 * time.Minute)}
	assert.NotEqual(t, key1, IdempotencyKey("jane@example.com", otherSlot))
	assert.NotEqual(t, key1, IdempotencyKey("john@example.com", slot))
	assert.Len(t, key1, 64)
}

func TestMemoryIdempotencyStore(t *testing.T) {
	store := NewMemoryIdempotencyStore(time.Hour)
	ctx := context.Background()

	ok, err := store.Reserve(ctx, "key-1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Reserve(ctx, "key-1")
	require.NoError(t, err)
	assert.False(t, ok, "second reservation must report duplicate")

	ok, err = store.Reserve(ctx, "key-2")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, store.Release(ctx, "key-1"))
	ok, err = store.Reserve(ctx, "key-1")
	require.NoError(t, err)
	assert.True(t, ok, "released key must be reservable again")
}

func TestMemoryIdempotencyStoreExpiry(t *testing.T) {
	store := NewMemoryIdempotencyStore(time.Minute)
	now := time.Now()
	store.now = func() time.Time { return now }
	ctx := context.Background()

	ok, err := store.Reserve(ctx, "key-1")
	require.NoError(t, err)
	require.True(t, ok)

	now = now.Add(2 * time.Minute)
	ok, err = store.Reserve(ctx, "key-1")
	require.NoError(t, err)
	assert.True(t, ok, "expired key must be reservable again")
}

func TestRedisIdempotencyStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisIdempotencyStore(client, time.Hour, nil)
	ctx := context.Background()

	ok, err := store.Reserve(ctx, "key-1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Reserve(ctx, "key-1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Release(ctx, "key-1"))
	ok, err = store.Reserve(ctx, "key-1")
	require.NoError(t, err)
	assert.True(t, ok, "released key must be reservable again")

	mr.FastForward(2 * time.Hour)

	ok, err = store.Reserve(ctx, "key-1")
	require.NoError(t, err)
	assert.True(t, ok, "key must expire after the TTL window")
}

func TestRedisIdempotencyStoreUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisIdempotencyStore(client, time.Hour, nil)
	mr.Close()

	_, err := store.Reserve(context.Background(), "key-1")
	require.Error(t, err)
}
