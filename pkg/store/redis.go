package store

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/dverbeek/patchwork/pkg/snapshot"
)

const redisKeyPrefix = "patchwork:snapshot:"

// RedisStore keeps snapshots as JSON strings under a shared key prefix.
type RedisStore struct {
	client redis.UniversalClient
}

// NewRedisStore wraps an existing Redis client. The client is owned by the
// store and closed with it.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

// Save writes the snapshot under its prefixed key with no expiry.
func (s *RedisStore) Save(ctx context.Context, name string, snap snapshot.Snapshot) error {
	if err := checkName(name); err != nil {
		return err
	}
	data, err := snapshot.Marshal(snap)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, redisKeyPrefix+name, data, 0).Err()
}

// Load retrieves and decodes a snapshot.
func (s *RedisStore) Load(ctx context.Context, name string) (snapshot.Snapshot, error) {
	if err := checkName(name); err != nil {
		return snapshot.Snapshot{}, err
	}
	data, err := s.client.Get(ctx, redisKeyPrefix+name).Bytes()
	if errors.Is(err, redis.Nil) {
		return snapshot.Snapshot{}, ErrNotFound
	}
	if err != nil {
		return snapshot.Snapshot{}, err
	}
	return snapshot.Unmarshal(data)
}

// Delete removes a snapshot key.
func (s *RedisStore) Delete(ctx context.Context, name string) error {
	if err := checkName(name); err != nil {
		return err
	}
	removed, err := s.client.Del(ctx, redisKeyPrefix+name).Result()
	if err != nil {
		return err
	}
	if removed == 0 {
		return ErrNotFound
	}
	return nil
}

// List scans the prefix and returns the stored names, sorted.
func (s *RedisStore) List(ctx context.Context) ([]string, error) {
	var names []string
	iter := s.client.Scan(ctx, 0, redisKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		names = append(names, strings.TrimPrefix(iter.Val(), redisKeyPrefix))
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	slices.Sort(names)
	return names, nil
}

// Close closes the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ensure RedisStore implements Store.
var _ Store = (*RedisStore)(nil)
