package cache

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/emilythestrangee/yatube/internal/config"
	"github.com/emilythestrangee/yatube/internal/logging"
)

// ErrMiss is returned by Store.Get for absent or expired keys.
var ErrMiss = errors.New("cache miss")

// Entry is a complete cached response.
type Entry struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// Store keeps entries for a fixed time.
type Store interface {
	Get(ctx context.Context, key string) (*Entry, error)
	Set(ctx context.Context, key string, entry *Entry, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// Clear drops every entry owned by the store.
	Clear(ctx context.Context) error
}

// New returns the Redis store when REDIS_HOST is configured and the
// in-process store otherwise.
func New(ctx context.Context, cfg *config.Config) (Store, error) {
	if cfg.RedisHost == "" {
		logging.Log.Info("page cache: in memory")
		return NewMemoryStore(), nil
	}
	store, err := NewRedisStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	logging.Log.WithField("addr", store.Addr()).Info("page cache: redis")
	return store, nil
}
