package journal

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 需要本地 Redis：REDIS_ADDR=127.0.0.1:6379 go test ./internal/logic/journal/
func TestRedisStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR 未设置，跳过")
	}
	ctx := context.Background()
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	defer rdb.Close()

	store := NewRedisStore(rdb, time.Minute)
	w := "journal-test-" + time.Now().Format("150405.000000")
	defer rdb.Del(ctx, store.getKey(w))

	e := Entry{Wallet: w, Signature: "sig1", Action: "deposit", LastValidBlockHeight: 42, RecordedAt: time.Now()}
	require.NoError(t, store.Put(ctx, e))

	list, err := store.List(ctx, w)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "sig1", list[0].Signature)
	assert.Equal(t, uint64(42), list[0].LastValidBlockHeight)

	ttl, err := rdb.TTL(ctx, store.getKey(w)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, store.Delete(ctx, w, "sig1"))
	list, err = store.List(ctx, w)
	require.NoError(t, err)
	assert.Empty(t, list)
}
