package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"

	"github.com/de-tools/service-atlas/pkg/metrics"
)

const (
	DefaultTTL  = 5 * time.Minute
	DefaultSize = 128
)

type Settings struct {
	TTL  time.Duration `mapstructure:"ttl"`
	Size int           `mapstructure:"size"`
	// SingleFlight collapses concurrent loads of the same key into one.
	SingleFlight bool `mapstructure:"single_flight"`
}

// LoadFunc produces a value for a missing key. Values reported as not
// cacheable are returned to the caller but never stored.
type LoadFunc[V any] func(ctx context.Context) (value V, cacheable bool)

// Cache is a size-bounded TTL cache keyed by request parameters.
type Cache[V any] struct {
	name  string
	lru   *expirable.LRU[string, V]
	group *singleflight.Group
}

func New[V any](name string, s Settings) *Cache[V] {
	if s.TTL <= 0 {
		s.TTL = DefaultTTL
	}
	if s.Size <= 0 {
		s.Size = DefaultSize
	}
	c := &Cache[V]{
		name: name,
		lru:  expirable.NewLRU[string, V](s.Size, nil, s.TTL),
	}
	if s.SingleFlight {
		c.group = &singleflight.Group{}
	}
	return c
}

func (c *Cache[V]) Get(key string) (V, bool) {
	return c.lru.Get(key)
}

func (c *Cache[V]) Add(key string, value V) {
	c.lru.Add(key, value)
}

func (c *Cache[V]) Len() int {
	return c.lru.Len()
}

func (c *Cache[V]) Purge() {
	c.lru.Purge()
}

type loaded[V any] struct {
	value     V
	cacheable bool
}

// GetOrLoad returns the cached value for key or runs load. The second
// result reports a cache hit.
func (c *Cache[V]) GetOrLoad(ctx context.Context, key string, load LoadFunc[V]) (V, bool) {
	if v, ok := c.lru.Get(key); ok {
		metrics.ObserveCache(c.name, true)
		return v, true
	}
	metrics.ObserveCache(c.name, false)

	if c.group == nil {
		return c.load(ctx, key, load).value, false
	}

	res, _, _ := c.group.Do(key, func() (any, error) {
		if v, ok := c.lru.Get(key); ok {
			return loaded[V]{value: v, cacheable: true}, nil
		}
		return c.load(ctx, key, load), nil
	})
	return res.(loaded[V]).value, false
}

func (c *Cache[V]) load(ctx context.Context, key string, load LoadFunc[V]) loaded[V] {
	v, cacheable := load(ctx)
	if cacheable {
		c.lru.Add(key, v)
	}
	return loaded[V]{value: v, cacheable: cacheable}
}

// Key joins request parameters into a cache key.
func Key(parts ...any) string {
	s := make([]string, len(parts))
	for i, p := range parts {
		s[i] = fmt.Sprint(p)
	}
	return strings.Join(s, "|")
}
