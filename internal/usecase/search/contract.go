package search

import (
	"context"

	domfb "github.com/kailas-cloud/feedex/internal/domain/feedback"
	domvec "github.com/kailas-cloud/feedex/internal/domain/vector"
)

// QueryEmbedder turns a query into a validated vector.
type QueryEmbedder interface {
	Generate(ctx context.Context, text string) ([]float32, error)
}

// Index runs nearest-neighbour queries, best match first.
type Index interface {
	Query(ctx context.Context, vec []float32, k int) ([]domvec.Match, error)
}

// ItemReader loads current feedback for hydration.
type ItemReader interface {
	Get(ctx context.Context, id int64) (domfb.Item, error)
}
