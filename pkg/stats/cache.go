package stats

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ayushbridge/platform/pkg/common/models"
)

const (
	latestBatchKey     = "ayushbridge:stats:latest-batch"
	cumulativeStatsKey = "ayushbridge:stats:cumulative"
)

var ErrCacheMiss = errors.New("batch cache miss")

// BatchCache keeps the most recent batch summary and the cumulative totals
// in redis so status endpoints survive a service restart. A nil client
// disables caching; every method becomes a no-op.
type BatchCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewBatchCache(client *redis.Client, ttl time.Duration) *BatchCache {
	return &BatchCache{client: client, ttl: ttl}
}

func (c *BatchCache) StoreLatest(ctx context.Context, summary models.BatchSummary) error {
	if c == nil || c.client == nil {
		return nil
	}
	payload, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, latestBatchKey, payload, c.ttl).Err()
}

func (c *BatchCache) Latest(ctx context.Context) (*models.BatchSummary, error) {
	if c == nil || c.client == nil {
		return nil, ErrCacheMiss
	}
	payload, err := c.client.Get(ctx, latestBatchKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}
	var summary models.BatchSummary
	if err := json.Unmarshal([]byte(payload), &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

func (c *BatchCache) StoreCumulative(ctx context.Context, totals models.CumulativeStats) error {
	if c == nil || c.client == nil {
		return nil
	}
	payload, err := json.Marshal(totals)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, cumulativeStatsKey, payload, 0).Err()
}
