// Package indexing rebuilds the vector index from the full feedback corpus.
package indexing

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/feedex/internal/domain/batch"
	domfb "github.com/kailas-cloud/feedex/internal/domain/feedback"
	domvec "github.com/kailas-cloud/feedex/internal/domain/vector"
)

// DefaultPageSize is how many items are read from the store at a time.
const DefaultPageSize = 100

// ItemReader pages through feedback in id order.
type ItemReader interface {
	After(ctx context.Context, afterID int64, limit int) ([]domfb.Item, error)
}

// BatchIndexer embeds and writes documents chunk by chunk.
type BatchIndexer interface {
	BatchUpsert(ctx context.Context, docs []domvec.Document) batch.IndexResult
}

// Service indexes every stored item.
type Service struct {
	items    ItemReader
	indexer  BatchIndexer
	pageSize int
	logger   *zap.Logger
}

// New creates an indexing service.
func New(items ItemReader, indexer BatchIndexer, pageSize int, logger *zap.Logger) *Service {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{items: items, indexer: indexer, pageSize: pageSize, logger: logger}
}

// IndexAll feeds all items to the batch indexer. A store read failure aborts
// the run; chunks already written stay indexed.
func (s *Service) IndexAll(ctx context.Context) (batch.IndexResult, error) {
	var total batch.IndexResult
	var last int64
	for {
		page, err := s.items.After(ctx, last, s.pageSize)
		if err != nil {
			return total, fmt.Errorf("read feedback after %d: %w", last, err)
		}
		if len(page) == 0 {
			break
		}

		docs := make([]domvec.Document, len(page))
		for i, it := range page {
			docs[i] = domvec.Document{ID: it.ID(), Content: it.Content(), Source: it.Source()}
		}
		total.Merge(s.indexer.BatchUpsert(ctx, docs))

		if len(page) < s.pageSize {
			break
		}
		last = page[len(page)-1].ID()
	}

	s.logger.Info("Index rebuild finished",
		zap.Int("total", total.Total),
		zap.Int("indexed", total.Indexed),
		zap.Int("failed", total.Failed),
		zap.Int("failed_chunks", total.FailedChunks),
	)
	return total, nil
}
