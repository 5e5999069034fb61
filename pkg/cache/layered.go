package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// LayeredCache keeps a bounded in-process copy of entries read from or
// written to a remote Service. Writes go to the remote first.
type LayeredCache struct {
	near   *MemoryCache
	far    Service
	maxTTL time.Duration
}

func NewLayeredCache(remote Service, opts ...LayeredOption) *LayeredCache {
	cfg := LayeredConfig{MemoryMaxSize: 500, L1TTL: 30 * time.Second}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &LayeredCache{
		near:   NewMemoryCache(WithMemoryMaxSize(cfg.MemoryMaxSize)),
		far:    remote,
		maxTTL: cfg.L1TTL,
	}
}

func (lc *LayeredCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if err := lc.far.Set(ctx, key, value, ttl); err != nil {
		return err
	}
	nearTTL := lc.maxTTL
	if ttl > 0 && ttl < nearTTL {
		nearTTL = ttl
	}
	return lc.near.Set(ctx, key, value, nearTTL)
}

func (lc *LayeredCache) Get(ctx context.Context, key string, dest interface{}) error {
	if lc.near.Get(ctx, key, dest) == nil {
		return nil
	}

	var raw json.RawMessage
	if err := lc.far.Get(ctx, key, &raw); err != nil {
		return err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return err
	}
	// remote TTL is unknown here, so the promoted copy gets the local cap
	_ = lc.near.Set(ctx, key, raw, lc.maxTTL)
	return nil
}

func (lc *LayeredCache) Delete(ctx context.Context, keys ...string) error {
	_ = lc.near.Delete(ctx, keys...)
	return lc.far.Delete(ctx, keys...)
}

func (lc *LayeredCache) Exists(ctx context.Context, keys ...string) (bool, error) {
	if ok, _ := lc.near.Exists(ctx, keys...); ok {
		return true, nil
	}
	return lc.far.Exists(ctx, keys...)
}

func (lc *LayeredCache) Close() error {
	return errors.Join(lc.near.Close(), lc.far.Close())
}

// Ping reports the remote backend's health when it has one.
func (lc *LayeredCache) Ping(ctx context.Context) error {
	if p, ok := lc.far.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}
