// Package vectorindex embeds feedback and maintains the similarity index.
package vectorindex

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/feedex/internal/domain/batch"
	domvec "github.com/kailas-cloud/feedex/internal/domain/vector"
	"github.com/kailas-cloud/feedex/internal/metrics"
)

// DefaultChunkSize bounds both chunk length and in-chunk embedding concurrency.
const DefaultChunkSize = 10

// Service embeds documents and writes them to the vector index.
type Service struct {
	gen       Generator
	repo      Repository
	chunkSize int
	logger    *zap.Logger
	now       func() time.Time
}

// New creates a vector index service.
func New(gen Generator, repo Repository, chunkSize int, logger *zap.Logger) *Service {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{gen: gen, repo: repo, chunkSize: chunkSize, logger: logger, now: time.Now}
}

// Upsert embeds one document and writes it, replacing any previous record for the id.
func (s *Service) Upsert(ctx context.Context, doc domvec.Document) error {
	vec, err := s.gen.Generate(ctx, doc.Content)
	if err != nil {
		return fmt.Errorf("embed item %d: %w", doc.ID, err)
	}
	if err := s.repo.Upsert(ctx, s.record(doc, vec)); err != nil {
		return fmt.Errorf("index item %d: %w", doc.ID, err)
	}
	return nil
}

// BatchUpsert indexes docs in sequential chunks. A chunk is written only when
// every embedding in it succeeded, otherwise all of its items count as failed.
func (s *Service) BatchUpsert(ctx context.Context, docs []domvec.Document) batch.IndexResult {
	res := batch.IndexResult{Total: len(docs)}
	for start := 0; start < len(docs); start += s.chunkSize {
		end := min(start+s.chunkSize, len(docs))
		chunk := docs[start:end]
		res.Chunks++

		if err := s.upsertChunk(ctx, chunk); err != nil {
			res.Failed += len(chunk)
			res.FailedChunks++
			metrics.IndexChunksTotal.WithLabelValues("failed").Inc()
			s.logger.Warn("Index chunk failed",
				zap.Int64("first_id", chunk[0].ID),
				zap.Int("size", len(chunk)),
				zap.Error(err),
			)
			continue
		}
		res.Indexed += len(chunk)
		metrics.IndexChunksTotal.WithLabelValues("ok").Inc()
	}
	return res
}

func (s *Service) upsertChunk(ctx context.Context, chunk []domvec.Document) error {
	records := make([]domvec.Record, len(chunk))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(len(chunk))
	for i, doc := range chunk {
		g.Go(func() error {
			vec, err := s.gen.Generate(gctx, doc.Content)
			if err != nil {
				return fmt.Errorf("embed item %d: %w", doc.ID, err)
			}
			records[i] = s.record(doc, vec)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if err := s.repo.UpsertMany(ctx, records); err != nil {
		return fmt.Errorf("write chunk: %w", err)
	}
	return nil
}

// Query returns up to k matches, most similar first. Ties are broken by id.
func (s *Service) Query(ctx context.Context, vec []float32, k int) ([]domvec.Match, error) {
	if k <= 0 {
		return nil, nil
	}
	matches, err := s.repo.Query(ctx, vec, k)
	if err != nil {
		return nil, fmt.Errorf("query index: %w", err)
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].ID < matches[j].ID
	})
	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

func (s *Service) record(doc domvec.Document, vec []float32) domvec.Record {
	return domvec.Record{
		ID:        doc.ID,
		Vector:    vec,
		Content:   doc.Content,
		Source:    doc.Source,
		IndexedAt: s.now().UTC(),
	}
}
