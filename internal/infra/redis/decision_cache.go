package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ai-access-platform/internal/domain/model"
	"ai-access-platform/internal/infra/metrics"

	"github.com/go-redis/redis/v8"
)

// DecisionCache keeps the computed access decision per user so the guard
// middleware doesn't hit Postgres on every protected request. Every mutating
// operation (redeem, suspend, block, revoke) must invalidate the user's key.
type DecisionCache struct {
	client RedisClient
	ttl    time.Duration
}

func NewDecisionCache(client RedisClient, ttl time.Duration) *DecisionCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &DecisionCache{client: client, ttl: ttl}
}

func decisionKey(userID string) string {
	return fmt.Sprintf("access:decision:%s", userID)
}

// Get returns (nil, nil) on a miss; errors are only real Redis failures.
func (c *DecisionCache) Get(ctx context.Context, userID string) (*model.AccessStatus, error) {
	val, err := c.client.Get(ctx, decisionKey(userID))
	if err == redis.Nil {
		metrics.IncCacheRequest("access_decision", "miss")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var st model.AccessStatus
	if err := json.Unmarshal([]byte(val), &st); err != nil {
		// Treat a corrupt entry as a miss and drop it.
		_ = c.client.Del(ctx, decisionKey(userID))
		metrics.IncCacheRequest("access_decision", "miss")
		return nil, nil
	}
	metrics.IncCacheRequest("access_decision", "hit")
	return &st, nil
}

func (c *DecisionCache) Set(ctx context.Context, st *model.AccessStatus) error {
	b, err := json.Marshal(st)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, decisionKey(st.UserID), b, c.ttl)
}

func (c *DecisionCache) Invalidate(ctx context.Context, userID string) error {
	return c.client.Del(ctx, decisionKey(userID))
}
