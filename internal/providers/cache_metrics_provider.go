package providers

import (
	"socialstats/internal/structures"
	"strings"
	"time"
)

// MetricsCacheProvider wraps a CacheProviderInterface and counts hits, misses
// and evictions per key kind.
type MetricsCacheProvider struct {
	inner   CacheProviderInterface
	metrics MetricsProviderInterface
}

// cacheKind reduces a key to its family so the metric labels stay bounded:
// "twitch:token:<client>" -> "twitch:token", "snapshot:latest" -> "snapshot".
func cacheKind(key string) string {
	parts := strings.SplitN(key, ":", 3)
	switch len(parts) {
	case 3:
		return parts[0] + ":" + parts[1]
	default:
		return parts[0]
	}
}

func (c *MetricsCacheProvider) Get(key string) ([]byte, bool) {
	val, ok := c.inner.Get(key)
	if ok {
		c.metrics.IncCacheHits(cacheKind(key))
	} else {
		c.metrics.IncCacheMisses(cacheKind(key))
	}
	return val, ok
}

func (c *MetricsCacheProvider) Set(key string, value []byte) {
	c.inner.Set(key, value)
}

func (c *MetricsCacheProvider) SetWithTTL(key string, value []byte, ttl time.Duration) {
	c.inner.SetWithTTL(key, value, ttl)
}

func (c *MetricsCacheProvider) Del(key string) {
	c.inner.Del(key)
	c.metrics.IncCacheEvictions(cacheKind(key))
}

// NewInstrumentedCacheProvider wraps the cache with metrics. A disabled cache
// is returned bare so it does not report phantom misses.
func NewInstrumentedCacheProvider(conf *structures.Config, logger Logger, metrics MetricsProviderInterface) CacheProviderInterface {
	inner := NewCacheProvider(conf, logger)
	if !conf.Cache.Enabled {
		return inner
	}
	return &MetricsCacheProvider{
		inner:   inner,
		metrics: metrics,
	}
}
