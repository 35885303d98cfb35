package journal

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/zeromicro/go-zero/core/jsonx"
)

// Redis key 前缀，每个钱包一个 hash：field=signature, value=Entry JSON
const pendingPrefix = "journal:pending"

// 待确认记录的 TTL（可调），远大于 blockhash 有效期
const defaultTTL = 24 * time.Hour

// RedisStore 管理 Redis 中的待确认交易记录，多进程共享同一钱包时使用
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func (r *RedisStore) getKey(wallet string) string {
	return fmt.Sprintf("%s:%s", pendingPrefix, wallet)
}

func (r *RedisStore) Put(ctx context.Context, e Entry) error {
	data, err := jsonx.Marshal(e)
	if err != nil {
		return err
	}
	key := r.getKey(e.Wallet)
	pipe := r.rdb.TxPipeline()
	pipe.HSet(ctx, key, e.Signature, data)
	pipe.Expire(ctx, key, r.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis put error: %w", err)
	}
	return nil
}

func (r *RedisStore) List(ctx context.Context, wallet string) ([]Entry, error) {
	vals, err := r.rdb.HGetAll(ctx, r.getKey(wallet)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall error: %w", err)
	}
	list := make([]Entry, 0, len(vals))
	for sig, raw := range vals {
		var e Entry
		if err := jsonx.UnmarshalFromString(raw, &e); err != nil {
			return nil, fmt.Errorf("decode journal entry %s: %w", sig, err)
		}
		list = append(list, e)
	}
	sortEntries(list)
	return list, nil
}

func (r *RedisStore) Delete(ctx context.Context, wallet, signature string) error {
	return r.rdb.HDel(ctx, r.getKey(wallet), signature).Err()
}
