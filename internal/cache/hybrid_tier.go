package cache

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// HybridCache combines an in-process LRUTier (L1) with an optional
// network-backed tier such as RedisTier (L2), adapted from the teacher's
// HybridCacheService (app/services/hybrid_cache_service.go): L1 is
// checked first, an L2 hit backfills L1 in the background, and an L2
// failure degrades to L1-only rather than failing the request.
type HybridCache struct {
	l1     *LRUTier
	l2     Cache
	logger *zap.Logger
}

// NewHybridCache builds a two-tier cache. l2 may be nil to run L1-only.
func NewHybridCache(l1 *LRUTier, l2 Cache, logger *zap.Logger) *HybridCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HybridCache{l1: l1, l2: l2, logger: logger}
}

func (h *HybridCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if v, ok, err := h.l1.Get(ctx, key); err == nil && ok {
		return v, true, nil
	}
	if h.l2 == nil {
		return nil, false, nil
	}

	v, ok, err := h.l2.Get(ctx, key)
	if err != nil {
		h.logger.Warn("L2 cache get failed, degrading to L1-only", zap.Error(err))
		return nil, false, nil
	}
	if !ok {
		return nil, false, nil
	}

	go func(key string, v []byte) {
		bgCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := h.l1.Set(bgCtx, key, v); err != nil {
			h.logger.Warn("L2->L1 backfill failed", zap.Error(err))
		}
	}(key, v)

	return v, true, nil
}

func (h *HybridCache) Set(ctx context.Context, key string, result []byte) error {
	if err := h.l1.Set(ctx, key, result); err != nil {
		h.logger.Warn("L1 cache set failed", zap.Error(err))
	}
	if h.l2 == nil {
		return nil
	}
	if err := h.l2.Set(ctx, key, result); err != nil {
		h.logger.Warn("L2 cache set failed", zap.Error(err))
	}
	return nil
}

func (h *HybridCache) Delete(ctx context.Context, key string) error {
	h.l1.Delete(ctx, key)
	if h.l2 != nil {
		return h.l2.Delete(ctx, key)
	}
	return nil
}

func (h *HybridCache) Clear(ctx context.Context) error {
	h.l1.Clear(ctx)
	if h.l2 != nil {
		return h.l2.Clear(ctx)
	}
	return nil
}

func (h *HybridCache) Stats(ctx context.Context) (Stats, error) {
	return h.l1.Stats(ctx)
}

func (h *HybridCache) Close() error {
	h.l1.Close()
	if h.l2 != nil {
		return h.l2.Close()
	}
	return nil
}

var _ Cache = (*HybridCache)(nil)
