package analytics

import (
	"context"
	"time"

	domfb "github.com/kailas-cloud/feedex/internal/domain/feedback"
)

// ItemReader pages through all feedback in id order.
type ItemReader interface {
	After(ctx context.Context, afterID int64, limit int) ([]domfb.Item, error)
}

// Cache is the key-value port holding the serialized snapshot.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}
