// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package session

import (
	"context"
	"fmt"
	"time"

	"github.com/alexedwards/scs/goredisstore"
	"github.com/alexedwards/scs/v2"
	"github.com/redis/go-redis/v9"
)

// DefaultRedisKeyPrefix namespaces session keys in a shared Redis.
const DefaultRedisKeyPrefix = "auth0:session:"

// Default timeouts for Redis operations.
const (
	DefaultDialTimeout  = 5 * time.Second
	DefaultReadTimeout  = 3 * time.Second
	DefaultWriteTimeout = 3 * time.Second
)

// RedisConfig holds the connection settings for NewRedisStore.
type RedisConfig struct {
	// Addrs is a single host:port. With MasterName set they are the
	// addresses of the Sentinels instead.
	Addrs []string

	// MasterName selects a Sentinel deployment.
	MasterName string

	Username string
	Password string
	DB       int

	// KeyPrefix defaults to DefaultRedisKeyPrefix.
	KeyPrefix string

	// Timeouts (defaults: Dial=5s, Read=3s, Write=3s).
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// RedisStore is an scs.Store backed by Redis, so that sessions are shared
// between instances of the application. Each session is one Redis key that
// expires with the session.
type RedisStore struct {
	*goredisstore.RedisStore
	client *redis.Client
}

var _ scs.Store = (*RedisStore)(nil)

// NewRedisStore connects to Redis and returns a RedisStore. The connection
// is verified with a PING before returning. Call Close when done.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	const op = "session.NewRedisStore"
	switch {
	case len(cfg.Addrs) == 0:
		return nil, fmt.Errorf("%s: at least one address is required: %w", op, ErrInvalidParameter)
	case len(cfg.Addrs) > 1 && cfg.MasterName == "":
		return nil, fmt.Errorf("%s: several addresses require a sentinel master name: %w", op, ErrInvalidParameter)
	}
	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = DefaultDialTimeout
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = DefaultReadTimeout
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = DefaultWriteTimeout
	}

	var client *redis.Client
	if cfg.MasterName != "" {
		client = redis.NewFailoverClient(&redis.FailoverOptions{
			MasterName:    cfg.MasterName,
			SentinelAddrs: cfg.Addrs,
			Username:      cfg.Username,
			Password:      cfg.Password,
			DB:            cfg.DB,
			DialTimeout:   cfg.DialTimeout,
			ReadTimeout:   cfg.ReadTimeout,
			WriteTimeout:  cfg.WriteTimeout,
		})
	} else {
		client = redis.NewClient(&redis.Options{
			Addr:         cfg.Addrs[0],
			Username:     cfg.Username,
			Password:     cfg.Password,
			DB:           cfg.DB,
			DialTimeout:  cfg.DialTimeout,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		})
	}
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%s: unable to connect to redis: %w", op, err)
	}
	return NewRedisStoreWithClient(client, cfg.KeyPrefix), nil
}

// NewRedisStoreWithClient returns a RedisStore using a pre-configured client.
// An empty keyPrefix selects DefaultRedisKeyPrefix.
func NewRedisStoreWithClient(client *redis.Client, keyPrefix string) *RedisStore {
	if keyPrefix == "" {
		keyPrefix = DefaultRedisKeyPrefix
	}
	return &RedisStore{
		RedisStore: goredisstore.NewWithPrefix(client, keyPrefix),
		client:       client,
	}
}

// Close closes the underlying client.
func (r *RedisStore) Close() error {
	return r.client.Close()
}
