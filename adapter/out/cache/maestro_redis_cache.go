// Package cache implements the analysis cache on Redis. Entries are
// normalized results keyed by content hash; a cold or unreachable Redis
// degrades to cache misses, never to request failures.
package cache

import (
	"context"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"mailmaestro/core/domain"
	"mailmaestro/core/port/out"
	"mailmaestro/pkg/logger"
)

// AnalysisCache implements out.AnalysisCache
type AnalysisCache struct {
	client *redis.Client
	log    *logger.Logger
}

// NewAnalysisCache creates a Redis-backed analysis cache.
func NewAnalysisCache(client *redis.Client) out.AnalysisCache {
	return &AnalysisCache{
		client: client,
		log:    logger.WithField("component", "analysis_cache"),
	}
}

func (c *AnalysisCache) Get(ctx context.Context, key string) (*domain.AnalysisResult, bool) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.WithError(err).Debug("cache get failed")
		}
		return nil, false
	}

	var res domain.AnalysisResult
	if err := json.Unmarshal(data, &res); err != nil {
		c.log.WithError(err).Warn("cache entry corrupt, dropping")
		c.client.Del(ctx, key)
		return nil, false
	}
	return &res, true
}

func (c *AnalysisCache) Set(ctx context.Context, key string, res *domain.AnalysisResult, ttl time.Duration) {
	data, err := json.Marshal(res)
	if err != nil {
		c.log.WithError(err).Warn("cache marshal failed")
		return
	}
	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		c.log.WithError(err).Debug("cache set failed")
	}
}
