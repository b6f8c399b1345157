package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"

	"github.com/electometer/smart-meter/internal/domain"
	"github.com/electometer/smart-meter/internal/repository"
)

const liveKeyPrefix = "meter:live:"

func liveKey(meterID string) string { return liveKeyPrefix + meterID }

// Connect opens a redis client and checks it answers.
func Connect(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolTimeout:  4 * time.Second,
		IdleTimeout:  5 * time.Minute,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	log.Info().Str("addr", addr).Msg("redis connected")
	return client, nil
}

// LiveCache keeps the latest reading of each meter in redis.
type LiveCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewLiveCache(client *redis.Client, ttl time.Duration) *LiveCache {
	return &LiveCache{client: client, ttl: ttl}
}

// GetLive returns repository.ErrNotFound on a miss.
func (c *LiveCache) GetLive(ctx context.Context, meterID string) (*domain.Reading, error) {
	val, err := c.client.Get(ctx, liveKey(meterID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get live reading: %w", err)
	}
	var r domain.Reading
	if err := json.Unmarshal(val, &r); err != nil {
		return nil, fmt.Errorf("decode live reading: %w", err)
	}
	return &r, nil
}

// SetLive stores r unless the cached reading is newer.
func (c *LiveCache) SetLive(ctx context.Context, r domain.Reading) error {
	if cur, err := c.GetLive(ctx, r.MeterID); err == nil && cur.Timestamp.After(r.Timestamp) {
		return nil
	}
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}
	return c.client.Set(ctx, liveKey(r.MeterID), data, c.ttl).Err()
}
