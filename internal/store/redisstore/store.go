// Package redisstore keeps the client session in Redis so several machines
// (or containers) can share one login.
package redisstore

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/hay-kot/shop/internal/core/session"
)

const keyPrefix = "storefront:session:"

// Store implements session.Store as a Redis hash per origin.
type Store struct {
	rdb *redis.Client
	key string
}

// New returns a Store scoped to origin.
func New(rdb *redis.Client, origin string) *Store {
	return &Store{rdb: rdb, key: keyPrefix + origin}
}

// Key returns the hash key the session is stored under.
func (s *Store) Key() string {
	return s.key
}

func (s *Store) Get(ctx context.Context) (session.Session, error) {
	vals, err := s.rdb.HMGet(ctx, s.key, session.KeyAccess, session.KeyRefresh).Result()
	if err != nil {
		return session.Session{}, fmt.Errorf("read session: %w", err)
	}

	return session.Session{
		Access:  str(vals[0]),
		Refresh: str(vals[1]),
	}, nil
}

// Set replaces both fields in a single transaction.
func (s *Store) Set(ctx context.Context, sess session.Session) error {
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.key)
		fields := map[string]any{}
		if sess.Access != "" {
			fields[session.KeyAccess] = sess.Access
		}
		if sess.Refresh != "" {
			fields[session.KeyRefresh] = sess.Refresh
		}
		if len(fields) > 0 {
			pipe.HSet(ctx, s.key, fields)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

func (s *Store) Clear(ctx context.Context) error {
	if err := s.rdb.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// Describe names the server and hash key holding the session.
func (s *Store) Describe(context.Context) (string, error) {
	return s.rdb.Options().Addr + " " + s.Key(), nil
}

func str(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
