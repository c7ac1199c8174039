package analysis

import (
	"context"

	"github.com/kailas-cloud/feedex/internal/domain/classification"
	"github.com/kailas-cloud/feedex/internal/domain/critical"
	domfb "github.com/kailas-cloud/feedex/internal/domain/feedback"
	domvec "github.com/kailas-cloud/feedex/internal/domain/vector"
)

// Store reads pending items and commits their labels.
type Store interface {
	Unprocessed(ctx context.Context, limit int) ([]domfb.Item, error)
	SaveClassification(ctx context.Context, id int64, r classification.Result) error
}

// Classifier labels text. It never fails.
type Classifier interface {
	Classify(ctx context.Context, text string) classification.Result
}

// Indexer embeds one item and writes it to the vector index.
type Indexer interface {
	Upsert(ctx context.Context, doc domvec.Document) error
}

// Journal remembers completed steps per item content.
type Journal interface {
	Done(ctx context.Context, id int64, step, digest string) (bool, string, error)
	Mark(ctx context.Context, id int64, step, digest, runID string) error
}

// CriticalFlags keeps the high-priority view.
type CriticalFlags interface {
	Upsert(ctx context.Context, f critical.Flag) error
}

// Invalidator drops derived caches after labels change.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}
