package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"TokenPulse/internal/domain/models"
	drepo "TokenPulse/internal/domain/repository"
	"TokenPulse/internal/service/cache"
	"TokenPulse/pkg/logger"
)

// CachedAdapter wraps a SourceAdapter with a byte cache so repeated scans
// within the TTL reuse the same raw series instead of hitting the provider
// again. Cache failures are logged and treated as misses.
type CachedAdapter struct {
	inner drepo.SourceAdapter
	store cache.BytesCache
	ttl   time.Duration
	log   *logger.Logger
}

// NewCachedAdapter decorates inner with a series cache.
func NewCachedAdapter(inner drepo.SourceAdapter, store cache.BytesCache, ttl time.Duration, log *logger.Logger) drepo.SourceAdapter {
	if log == nil {
		log = logger.Nop()
	}
	return &CachedAdapter{inner: inner, store: store, ttl: ttl, log: log}
}

// Name implements SourceAdapter.
func (c *CachedAdapter) Name() string { return c.inner.Name() }

// FetchSeries implements SourceAdapter.
func (c *CachedAdapter) FetchSeries(ctx context.Context, key string, interval drepo.Interval, lookback int) (*models.PriceSeries, error) {
	cacheKey := fmt.Sprintf("series:%s:%s:%s:%d", c.inner.Name(), key, interval, lookback)

	if b, ok, err := c.store.GetBytes(ctx, cacheKey); err != nil {
		c.log.Warn("series cache get failed", logger.String("key", cacheKey), logger.Error(err))
	} else if ok {
		var series models.PriceSeries
		if err := json.Unmarshal(b, &series); err == nil {
			return &series, nil
		}
		c.log.Warn("series cache entry corrupt", logger.String("key", cacheKey))
	}

	series, err := c.inner.FetchSeries(ctx, key, interval, lookback)
	if err != nil {
		return nil, err
	}

	if b, err := json.Marshal(series); err == nil {
		if err := c.store.SetBytes(ctx, cacheKey, b, c.ttl); err != nil {
			c.log.Warn("series cache set failed", logger.String("key", cacheKey), logger.Error(err))
		}
	}
	return series, nil
}
