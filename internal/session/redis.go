package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sakif/fittrack/internal/config"
	"github.com/sakif/fittrack/internal/model"
)

const keyPrefix = "fittrack:chat:"

// NewRedisClient builds a client from cfg. It does not dial; call Ping.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// Ping checks the Redis connection.
func Ping(ctx context.Context, client *redis.Client) error {
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("session: pinging redis: %w", err)
	}
	return nil
}

// RedisStore keeps each session as one JSON value with a sliding TTL, so
// several server instances share conversations.
type RedisStore struct {
	client     redis.Cmdable
	maxHistory int
	ttl        time.Duration
}

func NewRedisStore(client redis.Cmdable, maxHistory int, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, maxHistory: maxHistory, ttl: ttl}
}

func (s *RedisStore) Load(ctx context.Context, sessionID string) ([]model.ChatMessage, error) {
	raw, err := s.client.Get(ctx, keyPrefix+sessionID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []model.ChatMessage{}, nil
		}
		return nil, fmt.Errorf("session: loading %s: %w", sessionID, err)
	}

	var history []model.ChatMessage
	if err := json.Unmarshal(raw, &history); err != nil {
		return nil, fmt.Errorf("session: decoding %s: %w", sessionID, err)
	}
	return history, nil
}

func (s *RedisStore) Save(ctx context.Context, sessionID string, history []model.ChatMessage) error {
	raw, err := json.Marshal(Trim(history, s.maxHistory))
	if err != nil {
		return fmt.Errorf("session: encoding %s: %w", sessionID, err)
	}
	if err := s.client.Set(ctx, keyPrefix+sessionID, raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("session: saving %s: %w", sessionID, err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, keyPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("session: clearing %s: %w", sessionID, err)
	}
	return nil
}
