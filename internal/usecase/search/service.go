// Package search answers semantic queries over indexed feedback.
package search

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/feedex/internal/domain"
	domsearch "github.com/kailas-cloud/feedex/internal/domain/search"
)

const (
	// DefaultK is used when the caller does not ask for a result count.
	DefaultK = 10
	// MaxK caps a single query.
	MaxK = 100
)

// Service handles semantic search.
type Service struct {
	embed  QueryEmbedder
	index  Index
	items  ItemReader
	logger *zap.Logger
}

// New creates a search service.
func New(embed QueryEmbedder, index Index, items ItemReader, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{embed: embed, index: index, items: items, logger: logger}
}

// Search returns up to k matches ordered by descending similarity.
// Content comes from the current item; the index snapshot is used when the item is gone.
func (s *Service) Search(ctx context.Context, query string, k int) ([]domsearch.Match, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query is required", domain.ErrInvalidInput)
	}
	if k <= 0 {
		k = DefaultK
	}
	k = min(k, MaxK)

	vec, err := s.embed.Generate(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	hits, err := s.index.Query(ctx, vec, k)
	if err != nil {
		return nil, fmt.Errorf("query index: %w", err)
	}

	out := make([]domsearch.Match, 0, len(hits))
	for _, h := range hits {
		m := domsearch.Match{ID: h.ID, Content: h.Content, Source: h.Source, Similarity: h.Score}
		it, err := s.items.Get(ctx, h.ID)
		switch {
		case err == nil:
			m.Content = it.Content()
			m.Source = it.Source()
		case !errors.Is(err, domain.ErrNotFound):
			s.logger.Warn("Hydration failed, using indexed snapshot", zap.Int64("feedback_id", h.ID), zap.Error(err))
		}
		out = append(out, m)
	}
	return out, nil
}
