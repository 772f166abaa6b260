package util

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ecommerce/pkg/metrics"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the key only if it still holds our token, so an
// expired lock re-acquired by another request is not released by us.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type RedisLocker struct {
	client  redis.UniversalClient
	service string
}

func NewRedisClient(addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return client, nil
}

func NewRedisLocker(client redis.UniversalClient, service string) *RedisLocker {
	return &RedisLocker{client: client, service: service}
}

func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	timer := metrics.NewRedisTimer(l.service, metrics.RedisOpLock)
	defer timer.ObserveDuration()

	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		metrics.RecordRedisError(l.service, metrics.RedisOpLock)
		return "", false, fmt.Errorf("failed to acquire lock %s: %w", key, err)
	}
	if !ok {
		metrics.RecordLockContention(l.service, keyPrefix(key))
		return "", false, nil
	}

	return token, true, nil
}

func (l *RedisLocker) Release(ctx context.Context, key, token string) error {
	timer := metrics.NewRedisTimer(l.service, metrics.RedisOpUnlock)
	defer timer.ObserveDuration()

	if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
		metrics.RecordRedisError(l.service, metrics.RedisOpUnlock)
		return fmt.Errorf("failed to release lock %s: %w", key, err)
	}
	return nil
}

func keyPrefix(key string) string {
	if i := strings.IndexByte(key, ':'); i > 0 {
		return key[:i]
	}
	return key
}
