package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"

	"github.com/emilythestrangee/yatube/internal/config"
)

// RedisNamespace prefixes every key the store writes, so Clear leaves
// foreign keys alone.
const RedisNamespace = "yatube:"

type RedisStore struct {
	inner     *redis.Client
	namespace string
}

func NewRedisStore(ctx context.Context, cfg *config.Config) (*RedisStore, error) {
	redisClient := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       0, // use default DB
	})
	if _, err := redisClient.Ping(ctx).Result(); err != nil {
		return nil, errors.Wrap(err, "ping redis")
	}
	return &RedisStore{inner: redisClient, namespace: RedisNamespace}, nil
}

func (r *RedisStore) Addr() string {
	return r.inner.Options().Addr
}

func (r *RedisStore) key(k string) string {
	return r.namespace + k
}

func (r *RedisStore) Get(ctx context.Context, key string) (*Entry, error) {
	raw, err := r.inner.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, errors.Wrap(err, "redis get")
	}
	var entry Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, errors.Wrap(err, "decode cache entry")
	}
	return &entry, nil
}

func (r *RedisStore) Set(ctx context.Context, key string, entry *Entry, ttl time.Duration) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return errors.Wrap(err, "encode cache entry")
	}
	return errors.Wrap(r.inner.Set(ctx, r.key(key), raw, ttl).Err(), "redis set")
}

func (r *RedisStore) Delete(ctx context.Context, key string) error {
	return errors.Wrap(r.inner.Del(ctx, r.key(key)).Err(), "redis del")
}

func (r *RedisStore) Clear(ctx context.Context) error {
	var keys []string
	iter := r.inner.Scan(ctx, 0, r.namespace+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return errors.Wrap(err, "redis scan")
	}
	if len(keys) == 0 {
		return nil
	}
	return errors.Wrap(r.inner.Del(ctx, keys...).Err(), "redis del")
}

func (r *RedisStore) Close() error {
	return r.inner.Close()
}
