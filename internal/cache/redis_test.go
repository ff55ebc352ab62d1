package cache

import (
	"context"
	"testing"
	"time"

	"toolshed-backend/internal/config"
	"toolshed-backend/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestAvailabilityCache_Disabled(t *testing.T) {
	ctx := context.Background()

	t.Run("NoAddress", func(t *testing.T) {
		c := NewAvailabilityCache(ctx, config.RedisConfig{TTL: time.Minute})
		assert.False(t, c.Enabled())

		c.SetSummary(ctx, &domain.AvailabilitySummary{ToolID: 1, TotalQuantity: 2})
		got, ok := c.GetSummary(ctx, 1)
		assert.False(t, ok)
		assert.Nil(t, got)
		c.Invalidate(ctx, 1)
		assert.NoError(t, c.Close())
	})

	t.Run("NilReceiver", func(t *testing.T) {
		var c *AvailabilityCache
		assert.False(t, c.Enabled())
		_, ok := c.GetSummary(ctx, 1)
		assert.False(t, ok)
		c.Invalidate(ctx, 1)
	})

	t.Run("NilClient", func(t *testing.T) {
		c := NewAvailabilityCacheWithClient(nil, time.Minute)
		assert.False(t, c.Enabled())
	})
}
