// Package redis caches settled-round snapshots so result queries and
// replays do not hit the archive database.
package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Allen-Saji/sui-lotto-contract/internal/modules/lottery/domain"
)

// resultTTL bounds how long a settled snapshot stays hot
const resultTTL = 10 * time.Minute

// RoundCache stores settled-round snapshots in Redis with a TTL
type RoundCache struct {
	client *redis.Client
}

// NewRoundCache creates a cache on the given client
func NewRoundCache(client *redis.Client) *RoundCache {
	return &RoundCache{client: client}
}

func resultKey(roundID string) string {
	return "lottery:round_result:" + roundID
}

// SetResult writes the settled snapshot. Failures are returned but
// callers treat the cache as best-effort.
func (c *RoundCache) SetResult(ctx context.Context, view domain.View) error {
	b, err := json.Marshal(view)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, resultKey(view.RoundID), b, resultTTL).Err()
}

// GetResult reads a settled snapshot; the second return is false on a
// cache miss.
func (c *RoundCache) GetResult(ctx context.Context, roundID string) (domain.View, bool, error) {
	b, err := c.client.Get(ctx, resultKey(roundID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return domain.View{}, false, nil
		}
		return domain.View{}, false, err
	}
	var view domain.View
	if err := json.Unmarshal(b, &view); err != nil {
		return domain.View{}, false, err
	}
	return view, true, nil
}
