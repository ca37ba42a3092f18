package kv

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPebble(t *testing.T) *Pebble {
	t.Helper()
	store, err := OpenPebble(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestPebble_GetSetDelete(t *testing.T) {
	store := testPebble(t)
	ctx := context.Background()

	_, ok, err := store.Get(ctx, "post:1")
	require.NoError(t, err)
	assert.False(t, ok, "absent key is not an error")

	require.NoError(t, store.Set(ctx, "post:1", []byte(`{"id":"1"}`), 0))
	val, ok, err := store.Get(ctx, "post:1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte(`{"id":"1"}`), val)

	require.NoError(t, store.Delete(ctx, "post:1"))
	_, ok, err = store.Get(ctx, "post:1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPebble_TTLExpiry(t *testing.T) {
	store := testPebble(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "session:1", []byte("x"), 20*time.Millisecond))
	_, ok, err := store.Get(ctx, "session:1")
	require.NoError(t, err)
	assert.True(t, ok)

	time.Sleep(40 * time.Millisecond)
	_, ok, err = store.Get(ctx, "session:1")
	require.NoError(t, err)
	assert.False(t, ok, "expired key reads as absent")
}

func TestPebble_Sets(t *testing.T) {
	store := testPebble(t)
	ctx := context.Background()

	require.NoError(t, store.SAdd(ctx, "posts:all", "a"))
	require.NoError(t, store.SAdd(ctx, "posts:all", "b"))
	require.NoError(t, store.SAdd(ctx, "posts:all", "b")) // idempotent

	members, err := store.SMembers(ctx, "posts:all")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, members)

	require.NoError(t, store.SRem(ctx, "posts:all", "a"))
	require.NoError(t, store.SRem(ctx, "posts:all", "missing")) // no-op

	members, err = store.SMembers(ctx, "posts:all")
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, members)

	members, err = store.SMembers(ctx, "posts:empty")
	require.NoError(t, err)
	assert.Empty(t, members)
}

func TestPebble_SetsDoNotCollideWithValues(t *testing.T) {
	store := testPebble(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "posts:all", []byte("value"), 0))
	require.NoError(t, store.SAdd(ctx, "posts:all", "a"))

	val, ok, err := store.Get(ctx, "posts:all")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("value"), val)

	members, err := store.SMembers(ctx, "posts:all")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, members)
}

func TestPebble_KeysPattern(t *testing.T) {
	store := testPebble(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "post:1", []byte("a"), 0))
	require.NoError(t, store.Set(ctx, "post:2", []byte("b"), 0))
	require.NoError(t, store.Set(ctx, "category:1", []byte("c"), 0))

	keys, err := store.Keys(ctx, "post:*")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"post:1", "post:2"}, keys)

	keys, err = store.Keys(ctx, "*")
	require.NoError(t, err)
	assert.Len(t, keys, 3)
}

func TestPebble_CancelledContext(t *testing.T) {
	store := testPebble(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := store.Get(ctx, "post:1")
	assert.ErrorIs(t, err, ErrUnavailable)
	err = store.Set(ctx, "post:1", nil, 0)
	assert.ErrorIs(t, err, ErrUnavailable)
}
