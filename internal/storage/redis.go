package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gearinhere/internal/domain"

	"github.com/redis/go-redis/v9"
)

const draftKeyPrefix = "draft:"

// RedisStore handles draft sessions in Redis, one JSON value per draft with a TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(addr, password string, db int, ttl time.Duration) *RedisStore {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisStore{client: rdb, ttl: ttl}
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Save writes the draft and refreshes its expiry.
func (s *RedisStore) Save(ctx context.Context, draft *domain.Draft) error {
	data, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("encode draft %s: %w", draft.ID, err)
	}
	return s.client.Set(ctx, draftKeyPrefix+draft.ID, data, s.ttl).Err()
}

func (s *RedisStore) Get(ctx context.Context, id string) (*domain.Draft, error) {
	data, err := s.client.Get(ctx, draftKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrDraftNotFound
	}
	if err != nil {
		return nil, err
	}

	var draft domain.Draft
	if err := json.Unmarshal(data, &draft); err != nil {
		return nil, fmt.Errorf("decode draft %s: %w", id, err)
	}
	return &draft, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
