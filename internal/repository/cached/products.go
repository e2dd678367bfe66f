// Package cached layers a Redis read-through cache over a ProductRepository.
package cached

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"shopapi/internal/model"
	"shopapi/internal/repository"
)

const listKey = "products:all"

func productKey(id string) string { return "product:" + id }

// Cache is the subset of Redis the product cache needs.
type Cache interface {
	GetString(ctx context.Context, key string) (string, error)
	SetString(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// Products serves reads from the cache and falls back to the wrapped repository on a miss
// or on any cache error, backfilling afterwards.
type Products struct {
	Repo  repository.ProductRepository
	Cache Cache
	TTL   time.Duration
	Log   zerolog.Logger
}

var _ repository.ProductRepository = (*Products)(nil)

func (p *Products) List(ctx context.Context) ([]model.Product, error) {
	var out []model.Product
	if p.get(ctx, listKey, &out) {
		return out, nil
	}

	out, err := p.Repo.List(ctx)
	if err != nil {
		return nil, err
	}
	p.set(ctx, listKey, out)
	return out, nil
}

func (p *Products) FindByID(ctx context.Context, id string) (*model.Product, error) {
	var out model.Product
	if p.get(ctx, productKey(id), &out) {
		return &out, nil
	}

	found, err := p.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p.set(ctx, productKey(id), found)
	return found, nil
}

// Seed always goes to the repository and drops the cached list, which may predate the seed.
func (p *Products) Seed(ctx context.Context, products []model.Product) ([]model.Product, error) {
	out, err := p.Repo.Seed(ctx, products)
	if err != nil {
		return nil, err
	}
	if err := p.Cache.Delete(ctx, listKey); err != nil {
		p.Log.Warn().Err(err).Str("key", listKey).Msg("cache invalidate failed")
	}
	return out, nil
}

func (p *Products) get(ctx context.Context, key string, v any) bool {
	s, err := p.Cache.GetString(ctx, key)
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			p.Log.Warn().Err(err).Str("key", key).Msg("cache read failed")
		}
		return false
	}
	if err := json.Unmarshal([]byte(s), v); err != nil {
		p.Log.Warn().Err(err).Str("key", key).Msg("cache entry corrupt")
		return false
	}
	return true
}

func (p *Products) set(ctx context.Context, key string, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := p.Cache.SetString(ctx, key, string(b), p.TTL); err != nil {
		p.Log.Warn().Err(err).Str("key", key).Msg("cache backfill failed")
	}
}
