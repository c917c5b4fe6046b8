package app

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kudoshq/kudos-service/internal/domain"
)

// RedisLeaderboardCache serves leaderboard snapshots from Redis so repeated
// reads skip the aggregate query. Entries are keyed per result bound and
// expire after a short TTL; balance mutations invalidate the whole keyspace
// prefix eagerly.
type RedisLeaderboardCache struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewRedisLeaderboardCache creates a cache with the given key prefix and TTL.
func NewRedisLeaderboardCache(client redis.UniversalClient, prefix string, ttl time.Duration) *RedisLeaderboardCache {
	trimmedPrefix := strings.TrimSpace(prefix)
	if trimmedPrefix == "" {
		trimmedPrefix = "kudos:leaderboard"
	}
	trimmedPrefix = strings.TrimSuffix(trimmedPrefix, ":")
	if ttl <= 0 {
		ttl = 30 * time.Second
	}

	return &RedisLeaderboardCache{
		client: client,
		prefix: trimmedPrefix,
		ttl:    ttl,
	}
}

func (c *RedisLeaderboardCache) key(limit int) string {
	return fmt.Sprintf("%s:limit:%d", c.prefix, limit)
}

// Get returns the cached snapshot for the given bound, with a hit flag.
func (c *RedisLeaderboardCache) Get(ctx context.Context, limit int) ([]domain.LeaderboardEntry, bool, error) {
	if c == nil || c.client == nil {
		return nil, false, nil
	}

	raw, err := c.client.Get(ctx, c.key(limit)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var entries []domain.LeaderboardEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, false, err
	}
	return entries, true, nil
}

// Set stores a snapshot under the bound's key with the configured TTL.
func (c *RedisLeaderboardCache) Set(ctx context.Context, limit int, entries []domain.LeaderboardEntry) error {
	if c == nil || c.client == nil {
		return nil
	}

	raw, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(limit), raw, c.ttl).Err()
}

// Invalidate drops every cached snapshot under the prefix.
func (c *RedisLeaderboardCache) Invalidate(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}

	iter := c.client.Scan(ctx, 0, c.prefix+":limit:*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}
