package tokenstore

import (
	"context"
	"encoding/json"

	"github.com/jrsteele09/go-admin-console/credentials"
	apperrors "github.com/jrsteele09/go-admin-console/internal/errors"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

var _ Store = (*RedisStore)(nil)

// RedisStore keeps the serialized bundle under one Redis key, for consoles that
// share a session across hosts.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore wraps an existing client. An empty key uses DefaultKey.
func NewRedisStore(client *redis.Client, key string) *RedisStore {
	if key == "" {
		key = DefaultKey
	}
	return &RedisStore{client: client, key: key}
}

// DialRedis parses url and verifies the connection with a PING.
func DialRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Wrap(err, "[DialRedis] parse redis URL")
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, errors.Wrap(err, "[DialRedis] redis ping failed")
	}
	return client, nil
}

func (rs *RedisStore) Get(ctx context.Context) (*credentials.Bundle, error) {
	raw, err := rs.client.Get(ctx, rs.key).Bytes()
	if apperrors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "[RedisStore.Get]")
	}
	var bundle credentials.Bundle
	if err := json.Unmarshal(raw, &bundle); err != nil {
		return nil, errors.Wrap(err, "[RedisStore.Get] unmarshal bundle")
	}
	return &bundle, nil
}

func (rs *RedisStore) Set(ctx context.Context, bundle *credentials.Bundle) error {
	if bundle == nil {
		return errors.New("[RedisStore.Set] bundle is required")
	}
	raw, err := json.Marshal(bundle)
	if err != nil {
		return errors.Wrap(err, "[RedisStore.Set] marshal bundle")
	}
	// No TTL: the console never expires a bundle on its own.
	return errors.Wrap(rs.client.Set(ctx, rs.key, raw, 0).Err(), "[RedisStore.Set]")
}

func (rs *RedisStore) Clear(ctx context.Context) error {
	return errors.Wrap(rs.client.Del(ctx, rs.key).Err(), "[RedisStore.Clear]")
}
