package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
)

type BaseCache interface {
	Get(ctx context.Context, prefix string, uniqKey interface{}) (interface{}, bool)
	Set(ctx context.Context, prefix string, uniqKey, value interface{})
	SetWithExpiry(ctx context.Context, prefix string, uniqKey, value interface{}, expiry time.Duration)
	Del(ctx context.Context, prefix string, uniqKey interface{})
	Flush(ctx context.Context)
	Close(ctx context.Context) error
}

type baseCache struct {
	cache *cache.Cache
}

const defaultExpiration = 30 * time.Minute

func NewBaseCache(_ context.Context) BaseCache {
	return &baseCache{
		cache: cache.New(defaultExpiration, 15*time.Minute),
	}
}

func (bc *baseCache) Get(_ context.Context, prefix string, uniqKey interface{}) (interface{}, bool) {
	return bc.cache.Get(bc.getKey(prefix, uniqKey))
}

func (bc *baseCache) Set(_ context.Context, prefix string, uniqKey, value interface{}) {
	bc.cache.Set(bc.getKey(prefix, uniqKey), value, defaultExpiration)
}

func (bc *baseCache) SetWithExpiry(_ context.Context, prefix string, uniqKey, value interface{}, expiry time.Duration) {
	bc.cache.Set(bc.getKey(prefix, uniqKey), value, expiry)
}

func (bc *baseCache) Del(_ context.Context, prefix string, uniqKey interface{}) {
	bc.cache.Delete(bc.getKey(prefix, uniqKey))
}

func (bc *baseCache) getKey(prefix string, uniqKey interface{}) string {
	return fmt.Sprintf("%s:%v", prefix, uniqKey)
}

func (bc *baseCache) Flush(_ context.Context) {
	bc.cache.Flush()
}

func (bc *baseCache) Close(ctx context.Context) error {
	bc.Flush(ctx)
	return nil
}
