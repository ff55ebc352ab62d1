// Package cache keeps availability snapshots in Redis. Every method is safe
// on a cache without a client: lookups miss and writes are dropped, so the
// service keeps working when Redis is unreachable.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"toolshed-backend/internal/config"
	"toolshed-backend/internal/domain"
	"toolshed-backend/internal/logger"
	"toolshed-backend/internal/metrics"

	"github.com/redis/go-redis/v9"
)

const summaryKeyFmt = "availability:summary:%d"

type AvailabilityCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewAvailabilityCache connects to Redis when cfg.Addr is set. A failed ping
// logs a warning and returns a cache that always misses.
func NewAvailabilityCache(ctx context.Context, cfg config.RedisConfig) *AvailabilityCache {
	c := &AvailabilityCache{ttl: cfg.TTL}
	if cfg.Addr == "" {
		logger.Info("Availability cache disabled (no redis address)")
		return c
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	logger.ExternalServiceCall("redis", "PING", "addr", cfg.Addr)
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.ExternalServiceResult("redis", "PING", err, "addr", cfg.Addr)
		client.Close()
		return c
	}
	logger.ExternalServiceResult("redis", "PING", nil, "addr", cfg.Addr)
	c.client = client
	return c
}

// NewAvailabilityCacheWithClient wraps an existing client; nil is allowed.
func NewAvailabilityCacheWithClient(client *redis.Client, ttl time.Duration) *AvailabilityCache {
	return &AvailabilityCache{client: client, ttl: ttl}
}

func (c *AvailabilityCache) Enabled() bool {
	return c != nil && c.client != nil
}

func (c *AvailabilityCache) GetSummary(ctx context.Context, toolID int32) (*domain.AvailabilitySummary, bool) {
	if !c.Enabled() {
		return nil, false
	}
	data, err := c.client.Get(ctx, fmt.Sprintf(summaryKeyFmt, toolID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.ExternalServiceResult("redis", "GET", err, "toolID", toolID)
		}
		metrics.CacheLookupsTotal.WithLabelValues("miss").Inc()
		return nil, false
	}

	var summary domain.AvailabilitySummary
	if err := json.Unmarshal(data, &summary); err != nil {
		metrics.CacheLookupsTotal.WithLabelValues("miss").Inc()
		return nil, false
	}
	metrics.CacheLookupsTotal.WithLabelValues("hit").Inc()
	return &summary, true
}

func (c *AvailabilityCache) SetSummary(ctx context.Context, summary *domain.AvailabilitySummary) {
	if !c.Enabled() || summary == nil {
		return
	}
	data, err := json.Marshal(summary)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, fmt.Sprintf(summaryKeyFmt, summary.ToolID), data, c.ttl).Err(); err != nil {
		logger.ExternalServiceResult("redis", "SET", err, "toolID", summary.ToolID)
	}
}

// Invalidate drops the snapshot of a tool after any capacity change.
func (c *AvailabilityCache) Invalidate(ctx context.Context, toolID int32) {
	if !c.Enabled() {
		return
	}
	if err := c.client.Del(ctx, fmt.Sprintf(summaryKeyFmt, toolID)).Err(); err != nil {
		logger.ExternalServiceResult("redis", "DEL", err, "toolID", toolID)
	}
}

func (c *AvailabilityCache) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Close()
}
