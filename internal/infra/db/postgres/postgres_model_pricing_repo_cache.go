package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"ai-access-platform/internal/domain/model"
	"ai-access-platform/internal/domain/ports/repository"
	"ai-access-platform/internal/infra/metrics"
	red "ai-access-platform/internal/infra/redis"
)

var _ repository.ModelPricingRepository = (*pricingRepoCacheDecorator)(nil)

// pricingRepoCacheDecorator caches the model catalog in Redis. The catalog is
// read on every /model/suggest call and changes rarely, so the hit rate is
// what keeps routing cheap.
type pricingRepoCacheDecorator struct {
	inner repository.ModelPricingRepository
	cache red.RedisClient
	ttl   time.Duration
}

func NewPricingRepoCacheDecorator(inner repository.ModelPricingRepository, cache red.RedisClient, ttl time.Duration) repository.ModelPricingRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &pricingRepoCacheDecorator{inner: inner, cache: cache, ttl: ttl}
}

const pricingListKey = "pricing:active"

func pricingKey(name string) string { return fmt.Sprintf("pricing:model:%s", name) }

// Writes invalidate both the per-model key and the list key.
func (d *pricingRepoCacheDecorator) Create(ctx context.Context, tx repository.Tx, p *model.ModelPricing) error {
	_ = d.cache.Del(ctx, pricingKey(p.ModelName), pricingListKey)
	return d.inner.Create(ctx, tx, p)
}

func (d *pricingRepoCacheDecorator) Update(ctx context.Context, tx repository.Tx, p *model.ModelPricing) error {
	_ = d.cache.Del(ctx, pricingKey(p.ModelName), pricingListKey)
	return d.inner.Update(ctx, tx, p)
}

func (d *pricingRepoCacheDecorator) GetByModelName(ctx context.Context, tx repository.Tx, name string) (*model.ModelPricing, error) {
	key := pricingKey(name)
	val, err := d.cache.Get(ctx, key)
	if err == nil {
		var p model.ModelPricing
		if json.Unmarshal([]byte(val), &p) == nil {
			metrics.IncCacheRequest("pricing", "hit")
			return &p, nil
		}
	} else if err != redis.Nil {
		metrics.IncCacheRequest("pricing", "bypass")
		return d.inner.GetByModelName(ctx, tx, name)
	}

	metrics.IncCacheRequest("pricing", "miss")
	p, err := d.inner.GetByModelName(ctx, tx, name)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(p); err == nil {
		_ = d.cache.Set(ctx, key, b, d.ttl)
	}
	return p, nil
}

func (d *pricingRepoCacheDecorator) ListActive(ctx context.Context, tx repository.Tx) ([]*model.ModelPricing, error) {
	val, err := d.cache.Get(ctx, pricingListKey)
	if err == nil {
		var list []*model.ModelPricing
		if json.Unmarshal([]byte(val), &list) == nil {
			metrics.IncCacheRequest("pricing_list", "hit")
			return list, nil
		}
	} else if err != redis.Nil {
		metrics.IncCacheRequest("pricing_list", "bypass")
		return d.inner.ListActive(ctx, tx)
	}

	metrics.IncCacheRequest("pricing_list", "miss")
	list, err := d.inner.ListActive(ctx, tx)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(list); err == nil {
		_ = d.cache.Set(ctx, pricingListKey, b, d.ttl)
	}
	return list, nil
}
