package feedback

import (
	"context"

	"github.com/kailas-cloud/feedex/internal/domain/critical"
	domfb "github.com/kailas-cloud/feedex/internal/domain/feedback"
)

// Repository is the structured store for feedback items.
type Repository interface {
	Create(ctx context.Context, it domfb.Item) (domfb.Item, error)
	Get(ctx context.Context, id int64) (domfb.Item, error)
	List(ctx context.Context, f domfb.Filter) (domfb.Page, error)
	Replace(ctx context.Context, items []domfb.Item) ([]domfb.Item, error)
}

// CriticalReader lists the critical view.
type CriticalReader interface {
	List(ctx context.Context) ([]critical.Flag, error)
}

// Invalidator drops the analytics cache after writes.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}
