package cache

import (
	"context"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

// LRUTier is the in-process cache tier, the fast path ahead of any
// network-backed tier. Safe for concurrent use: golang-lru/v2 locks
// internally and hit/miss counters are atomic.
type LRUTier struct {
	store  *lru.Cache[string, []byte]
	logger *zap.Logger
	hits   int64
	misses int64
}

// NewLRUTier builds an LRU tier of the given capacity.
func NewLRUTier(size int, logger *zap.Logger) (*LRUTier, error) {
	if size <= 0 {
		size = 10000
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	c, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, err
	}
	return &LRUTier{store: c, logger: logger}, nil
}

func (t *LRUTier) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, ok := t.store.Get(key)
	if ok {
		atomic.AddInt64(&t.hits, 1)
		return v, true, nil
	}
	atomic.AddInt64(&t.misses, 1)
	return nil, false, nil
}

func (t *LRUTier) Set(ctx context.Context, key string, result []byte) error {
	t.store.Add(key, result)
	return nil
}

func (t *LRUTier) Delete(ctx context.Context, key string) error {
	t.store.Remove(key)
	return nil
}

func (t *LRUTier) Clear(ctx context.Context) error {
	t.store.Purge()
	return nil
}

func (t *LRUTier) Stats(ctx context.Context) (Stats, error) {
	hits, misses := atomic.LoadInt64(&t.hits), atomic.LoadInt64(&t.misses)
	total := hits + misses
	var rate float64
	if total > 0 {
		rate = float64(hits) / float64(total)
	}
	return Stats{HitRate: rate, TotalHits: hits, TotalMiss: misses, TotalItems: int64(t.store.Len())}, nil
}

func (t *LRUTier) Close() error {
	return nil
}

var _ Cache = (*LRUTier)(nil)
