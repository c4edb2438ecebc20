package sortedstorage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/beka-birhanu/vinom-evolve/service/i"
	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "vinom-evolve:leaderboard"

// RedisLeaderboard keeps one sorted set per maze shape, scored by the
// generation that first reached the goal. Lower is better.
type RedisLeaderboard struct {
	client *redis.Client
	locker *redsync.Redsync
	ttl    time.Duration
}

// NewRedisLeaderboard initializes a RedisLeaderboard with the provided Redis client and TTL.
// A non-positive TTL keeps boards forever.
func NewRedisLeaderboard(client *redis.Client, ttlSeconds int) (i.Leaderboard, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	board := &RedisLeaderboard{
		client: client,
		ttl:    time.Duration(ttlSeconds) * time.Second,
	}
	pool := goredis.NewPool(client)
	board.locker = redsync.New(pool)
	return board, nil
}

func boardKey(rows, cols int) string {
	return fmt.Sprintf("%s:%dx%d", keyPrefix, rows, cols)
}

// Record stores generation for the run unless it already holds a lower one.
func (rl *RedisLeaderboard) Record(ctx context.Context, rows, cols int, runID string, generation int) error {
	key := boardKey(rows, cols)
	mutex := rl.locker.NewMutex(key + ":lock")
	if err := mutex.LockContext(ctx); err != nil {
		return err
	}
	defer func() {
		_, _ = mutex.UnlockContext(ctx)
	}()

	current, err := rl.client.ZScore(ctx, key, runID).Result()
	switch {
	case err == nil && current <= float64(generation):
		return nil
	case err != nil && !errors.Is(err, redis.Nil):
		return err
	}

	if err := rl.client.ZAdd(ctx, key, redis.Z{Score: float64(generation), Member: runID}).Err(); err != nil {
		return err
	}

	// Set expiration only if it's not already set
	if rl.ttl > 0 {
		ttl, err := rl.client.TTL(ctx, key).Result()
		if err == nil && ttl == -1 {
			_ = rl.client.Expire(ctx, key, rl.ttl).Err()
		}
	}
	return nil
}

// Top returns up to n runs with the fewest generations.
func (rl *RedisLeaderboard) Top(ctx context.Context, rows, cols int, n int64) ([]i.LeaderboardEntry, error) {
	if n <= 0 {
		return []i.LeaderboardEntry{}, nil
	}

	scores, err := rl.client.ZRangeWithScores(ctx, boardKey(rows, cols), 0, n-1).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]i.LeaderboardEntry, 0, len(scores))
	for _, z := range scores {
		member, ok := z.Member.(string)
		if !ok {
			continue
		}
		entries = append(entries, i.LeaderboardEntry{RunID: member, Generations: int(z.Score)})
	}
	return entries, nil
}
