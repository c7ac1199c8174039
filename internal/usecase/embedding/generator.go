// Package embedding turns text into validated fixed-length vectors.
package embedding

import (
	"context"
	"fmt"
	"math"

	"github.com/kailas-cloud/feedex/internal/domain"
)

// Generator validates embeddings against a fixed dimensionality.
type Generator struct {
	embedder   domain.Embedder
	dimensions int
}

// NewGenerator creates a generator expecting vectors of the given length.
func NewGenerator(embedder domain.Embedder, dimensions int) *Generator {
	return &Generator{embedder: embedder, dimensions: dimensions}
}

// Generate embeds text. Backend failures and malformed vectors are *domain.EmbeddingError.
func (g *Generator) Generate(ctx context.Context, text string) ([]float32, error) {
	res, err := g.embedder.Embed(ctx, text)
	if err != nil {
		return nil, &domain.EmbeddingError{Err: fmt.Errorf("%w: %w", domain.ErrEmbeddingProviderError, err)}
	}
	if err := g.validate(res.Embedding); err != nil {
		return nil, &domain.EmbeddingError{Err: err}
	}
	return res.Embedding, nil
}

func (g *Generator) validate(v []float32) error {
	if len(v) == 0 {
		return fmt.Errorf("%w: empty vector", domain.ErrVectorDimMismatch)
	}
	if g.dimensions > 0 && len(v) != g.dimensions {
		return fmt.Errorf("%w: got %d, want %d", domain.ErrVectorDimMismatch, len(v), g.dimensions)
	}
	for i, f := range v {
		if math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
			return fmt.Errorf("%w: non-finite value at %d", domain.ErrVectorDimMismatch, i)
		}
	}
	return nil
}
