package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/julianstephens/habitquest/internal/constants"
)

const redisKeyPrefix = constants.AppName + ":"

// RedisBackend stores each record as a plain string key under the
// "habitquest:" prefix.
type RedisBackend struct {
	url    string
	client *redis.Client
}

func NewRedisBackend(url string) *RedisBackend {
	return &RedisBackend{url: url}
}

// NewRedisBackendWithClient wraps an existing client (for testing)
func NewRedisBackendWithClient(client *redis.Client) *RedisBackend {
	return &RedisBackend{url: "redis://" + client.Options().Addr, client: client}
}

func (s *RedisBackend) Init() error {
	return s.Load()
}

func (s *RedisBackend) Load() error {
	if s.client == nil {
		opts, err := redis.ParseURL(s.url)
		if err != nil {
			return fmt.Errorf("invalid redis URL: %w", err)
		}
		s.client = redis.NewClient(opts)
	}

	ctx, cancel := context.WithTimeout(context.Background(), constants.ConnectTimeout)
	defer cancel()
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	return nil
}

func (s *RedisBackend) Close() error {
	if s.client == nil {
		return nil
	}
	err := s.client.Close()
	s.client = nil
	return err
}

func (s *RedisBackend) Get(key string) ([]byte, error) {
	if s.client == nil {
		return nil, errNotLoaded
	}

	ctx, cancel := context.WithTimeout(context.Background(), constants.ConnectTimeout)
	defer cancel()

	data, err := s.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read record %s: %w", key, err)
	}
	return data, nil
}

// Put writes all records inside one MULTI/EXEC transaction.
func (s *RedisBackend) Put(records ...Record) error {
	if s.client == nil {
		return errNotLoaded
	}

	ctx, cancel := context.WithTimeout(context.Background(), constants.ConnectTimeout)
	defer cancel()

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, r := range records {
			pipe.Set(ctx, redisKeyPrefix+r.Key, r.Value, 0)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to write records: %w", err)
	}
	return nil
}

func (s *RedisBackend) GetConfigPath() string {
	if opts, err := redis.ParseURL(s.url); err == nil {
		return "redis://" + opts.Addr
	}
	return s.url
}
