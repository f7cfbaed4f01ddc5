package cooldown

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "bid_cooldown:"

const redisTimeout = 300 * time.Millisecond

// Gate is the per-user bid rate limiter. It is advisory only: the check
// and the set are not atomic with the bid transaction, so two concurrent
// requests may both pass the check. Balances never depend on it.
type Gate struct {
	Redis *redis.Client
	TTL   time.Duration
}

// Active reports whether the user has placed a bid within the TTL window.
func (g *Gate) Active(ctx context.Context, userID int) (bool, error) {
	var cancel context.CancelFunc
	ctx, cancel = context.WithTimeout(ctx, redisTimeout)
	defer cancel()

	n, err := g.Redis.Exists(ctx, userKey(userID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return false, fmt.Errorf("can't check cooldown key: %w", err)
	}

	return n > 0, nil
}

// Set arms the cooldown for the user. Called only after the bid
// transaction has committed.
func (g *Gate) Set(ctx context.Context, userID int) error {
	var cancel context.CancelFunc
	ctx, cancel = context.WithTimeout(ctx, redisTimeout)
	defer cancel()

	if err := g.Redis.Set(ctx, userKey(userID), "1", g.TTL).Err(); err != nil {
		return fmt.Errorf("can't set cooldown key: %w", err)
	}

	return nil
}

func userKey(userID int) string {
	return cacheKeyPrefix + strconv.Itoa(userID)
}
