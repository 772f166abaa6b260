package util

import (
	"context"
	"time"
)

// Locker is a short-lived mutual exclusion keyed by string. Acquire reports
// ok=false when someone else holds the key; the returned token must be
// passed to Release.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error)
	Release(ctx context.Context, key, token string) error
}

// MessagePublisher sends a keyed message to the event stream.
type MessagePublisher interface {
	PublishMessage(ctx context.Context, key string, value []byte) error
	Close() error
}
