// Package redis persists client storage keys in Redis.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vehicle-parking/vpa-client/internal/core/ports"
)

const (
	keyPrefix   = "vpa:storage:"
	clientName  = "vpa-client"
	dialTimeout = 5 * time.Second
)

// Options selects the Redis server holding the client's keys.
type Options struct {
	Addr     string
	Password string
	DB       int
}

// Store implements ports.Storage on Redis strings without expiry.
// Key format: vpa:storage:<key>
type Store struct {
	client *redis.Client
}

var _ ports.Storage = (*Store)(nil)

// Open dials Redis and pings it before handing back a Store.
func Open(ctx context.Context, opts Options) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        opts.Addr,
		Password:    opts.Password,
		DB:          opts.DB,
		ClientName:  clientName,
		DialTimeout: dialTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis storage at %s: %w", opts.Addr, err)
	}
	return NewStore(client), nil
}

func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	v, err := s.client.Get(ctx, keyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("redis get %s: %w", key, err)
	}
	return v, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, keyPrefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

// Close releases the connection pool.
func (s *Store) Close(context.Context) error {
	return s.client.Close()
}
