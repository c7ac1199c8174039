package vectorindex

import (
	"context"

	domvec "github.com/kailas-cloud/feedex/internal/domain/vector"
)

// Generator produces validated document embeddings.
type Generator interface {
	Generate(ctx context.Context, text string) ([]float32, error)
}

// Repository persists and queries vector records.
type Repository interface {
	Upsert(ctx context.Context, rec domvec.Record) error
	UpsertMany(ctx context.Context, recs []domvec.Record) error
	Query(ctx context.Context, vec []float32, k int) ([]domvec.Match, error)
}
