package redisstore

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/shop/internal/core/session"
)

func newTestStore(t *testing.T, origin string) (*Store, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return New(rdb, origin), mr
}

func TestStore(t *testing.T) {
	ctx := context.Background()

	t.Run("empty store is logged out", func(t *testing.T) {
		store, _ := newTestStore(t, "http://localhost:8000")

		got, err := store.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, session.Session{}, got)
	})

	t.Run("set get clear", func(t *testing.T) {
		store, mr := newTestStore(t, "http://localhost:8000")

		require.NoError(t, store.Set(ctx, session.Session{Access: "a1", Refresh: "r1"}))
		assert.Equal(t, "a1", mr.HGet(store.Key(), session.KeyAccess))

		got, err := store.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, session.Session{Access: "a1", Refresh: "r1"}, got)

		require.NoError(t, store.Clear(ctx))
		assert.False(t, mr.Exists(store.Key()))
	})

	t.Run("set replaces stale fields", func(t *testing.T) {
		store, _ := newTestStore(t, "http://localhost:8000")

		require.NoError(t, store.Set(ctx, session.Session{Access: "a1", Refresh: "r1"}))
		require.NoError(t, store.Set(ctx, session.Session{Access: "a2"}))

		got, err := store.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, session.Session{Access: "a2"}, got)
	})

	t.Run("key is scoped by origin", func(t *testing.T) {
		store, _ := newTestStore(t, "https://shop.example.com")
		assert.Equal(t, "storefront:session:https://shop.example.com", store.Key())
	})

	t.Run("describe names server and key", func(t *testing.T) {
		store, mr := newTestStore(t, "http://localhost:8000")

		got, err := store.Describe(ctx)
		require.NoError(t, err)
		assert.Equal(t, mr.Addr()+" storefront:session:http://localhost:8000", got)
	})

	t.Run("connection failure surfaces", func(t *testing.T) {
		mr, err := miniredis.Run()
		require.NoError(t, err)
		addr := mr.Addr()
		mr.Close()

		rdb := redis.NewClient(&redis.Options{Addr: addr, MaxRetries: -1})
		t.Cleanup(func() { _ = rdb.Close() })
		store := New(rdb, "http://localhost:8000")

		_, err = store.Get(ctx)
		assert.Error(t, err)
		assert.Error(t, store.Ping(ctx))
	})
}
