package kv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a Store backed by a Redis server. Useful when several instances
// need to share conversational state.
type Redis struct {
	client *redis.Client
}

// OpenRedis connects to the Redis server at url (redis://host:port).
func OpenRedis(url, password string, db int) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if password != "" {
		opts.Password = password
	}
	opts.DB = db
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second
	opts.MaxRetries = 3

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Redis{client: client}, nil
}

func (r *Redis) Get(key string) ([]byte, error) {
	v, err := r.client.Get(context.Background(), key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return v, nil
}

func (r *Redis) Put(key string, value []byte) error {
	return r.client.Set(context.Background(), key, value, 0).Err()
}

func (r *Redis) Has(key string) bool {
	n, err := r.client.Exists(context.Background(), key).Result()
	return err == nil && n > 0
}

func (r *Redis) Remove(key string) error {
	return r.client.Del(context.Background(), key).Err()
}

func (r *Redis) Close() error { return r.client.Close() }
