package cache

import (
	"context"

	"formzen/internal/metrics"
)

type metered struct {
	Cache
}

// WithMetrics counts hits, misses and errors of c
func WithMetrics(c Cache) Cache {
	return &metered{Cache: c}
}

func (m *metered) Get(ctx context.Context, key string, dest any) (bool, error) {
	ok, err := m.Cache.Get(ctx, key, dest)
	switch {
	case err != nil:
		metrics.CacheRequestsTotal.WithLabelValues("error").Inc()
	case ok:
		metrics.CacheRequestsTotal.WithLabelValues("hit").Inc()
	default:
		metrics.CacheRequestsTotal.WithLabelValues("miss").Inc()
	}
	return ok, err
}
