package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisTier is the optional second cache tier, adapted from the teacher's
// RedisCacheService (app/services/redis_cache_service.go): same prefix
// scheme, same connectivity check at construction, same hit/miss
// bookkeeping, retargeted to cache raw serialized Result bytes instead of
// the teacher's *AddressResult.
type RedisTier struct {
	client *redis.Client
	logger *zap.Logger
	prefix string
	ttl    time.Duration
	hits   int64
	misses int64
}

// NewRedisTier connects to redisURL and verifies reachability with a
// bounded Ping, matching the teacher's 5s construction timeout.
func NewRedisTier(redisURL string, ttl time.Duration, logger *zap.Logger) (*RedisTier, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("reference_unavailable: parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("reference_unavailable: connect redis: %w", err)
	}

	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisTier{client: client, logger: logger, prefix: "vnaddrnorm:", ttl: ttl}, nil
}

func (t *RedisTier) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := t.client.Get(ctx, t.prefix+key).Bytes()
	if err == redis.Nil {
		t.misses++
		return nil, false, nil
	}
	if err != nil {
		t.logger.Error("redis get failed", zap.Error(err), zap.String("key", key))
		return nil, false, err
	}
	t.hits++
	return val, true, nil
}

func (t *RedisTier) Set(ctx context.Context, key string, result []byte) error {
	if err := t.client.Set(ctx, t.prefix+key, result, t.ttl).Err(); err != nil {
		t.logger.Error("redis set failed", zap.Error(err), zap.String("key", key))
		return err
	}
	return nil
}

func (t *RedisTier) Delete(ctx context.Context, key string) error {
	return t.client.Del(ctx, t.prefix+key).Err()
}

func (t *RedisTier) Clear(ctx context.Context) error {
	keys, err := t.client.Keys(ctx, t.prefix+"*").Result()
	if err != nil {
		return fmt.Errorf("list keys: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	return t.client.Del(ctx, keys...).Err()
}

func (t *RedisTier) Stats(ctx context.Context) (Stats, error) {
	total := t.hits + t.misses
	var rate float64
	if total > 0 {
		rate = float64(t.hits) / float64(total)
	}
	keys, err := t.client.Keys(ctx, t.prefix+"*").Result()
	items := int64(0)
	if err == nil {
		items = int64(len(keys))
	}
	return Stats{HitRate: rate, TotalHits: t.hits, TotalMiss: t.misses, TotalItems: items}, nil
}

func (t *RedisTier) Close() error {
	return t.client.Close()
}

var _ Cache = (*RedisTier)(nil)
