package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "careerguide:session:"

// maxUpdateRetries bounds optimistic-lock retries in Update.
const maxUpdateRetries = 5

// RedisStore keeps sessions in Redis as JSON with a sliding TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// RedisConfig holds connection settings.
type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, cfg RedisConfig, ttl time.Duration) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return NewRedisStoreFromClient(client, ttl), nil
}

// NewRedisStoreFromClient wraps an existing client.
func NewRedisStoreFromClient(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, id string) (*Record, error) {
	raw, err := s.client.Get(ctx, keyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &rec, nil
}

// Update implements Store using WATCH/MULTI so concurrent requests on the
// same session do not lose transcript entries.
func (s *RedisStore) Update(ctx context.Context, id string, fn func(*Record) error) (*Record, error) {
	key := keyPrefix + id
	var result *Record

	txf := func(tx *redis.Tx) error {
		rec := &Record{ID: id}
		raw, err := tx.Get(ctx, key).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
		case err != nil:
			return fmt.Errorf("failed to read session: %w", err)
		default:
			if err := json.Unmarshal(raw, rec); err != nil {
				return fmt.Errorf("failed to decode session: %w", err)
			}
		}

		if err := fn(rec); err != nil {
			return err
		}
		rec.ID = id
		rec.UpdatedAt = time.Now()

		encoded, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to encode session: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, encoded, s.ttl)
			return nil
		})
		if err == nil {
			result = rec
		}
		return err
	}

	for i := 0; i < maxUpdateRetries; i++ {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return result, nil
	}
	return nil, fmt.Errorf("session %s: too much contention", id)
}

// Delete implements Store.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, keyPrefix+id).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Close implements Store.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
