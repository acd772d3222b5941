package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MikeSquared-Agency/wayfarer/internal/dialogue"
)

const snapshotKeyPrefix = "wayfarer:session:%s"

// RedisSnapshots stores session state as JSON strings with a TTL.
type RedisSnapshots struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewRedisClient parses a redis:// URL and returns a connected client.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func NewRedisSnapshots(client *redis.Client, ttl time.Duration) *RedisSnapshots {
	return &RedisSnapshots{redis: client, ttl: ttl}
}

func (s *RedisSnapshots) Save(ctx context.Context, st dialogue.State) error {
	payload, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	return s.redis.Set(ctx, snapshotKey(st.ID), payload, s.ttl).Err()
}

func (s *RedisSnapshots) Load(ctx context.Context, id string) (dialogue.State, bool, error) {
	raw, err := s.redis.Get(ctx, snapshotKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return dialogue.State{}, false, nil
	}
	if err != nil {
		return dialogue.State{}, false, fmt.Errorf("get session: %w", err)
	}
	var st dialogue.State
	if err := json.Unmarshal(raw, &st); err != nil {
		return dialogue.State{}, false, fmt.Errorf("unmarshal session: %w", err)
	}
	return st, true, nil
}

func (s *RedisSnapshots) Delete(ctx context.Context, id string) error {
	return s.redis.Del(ctx, snapshotKey(id)).Err()
}

func snapshotKey(id string) string {
	return fmt.Sprintf(snapshotKeyPrefix, id)
}
