package embedding

import (
	"context"
	"errors"
	"math"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/feedex/internal/domain"
)

type mockEmbedder struct {
	result    domain.EmbeddingResult
	err       error
	callCount int
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	m.callCount++
	return m.result, m.err
}

func TestInstrumentedEmbedder(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.1, 0.2}, TotalTokens: 3}}
	p := NewInstrumentedEmbedder(inner, "m", zap.NewNop())

	res, err := p.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Embedding) != 2 || res.TotalTokens != 3 {
		t.Errorf("unexpected result: %+v", res)
	}

	innerErr := errors.New("boom")
	p = NewInstrumentedEmbedder(&mockEmbedder{err: innerErr}, "m", nil)
	if _, err := p.Embed(context.Background(), "hello"); !errors.Is(err, innerErr) {
		t.Errorf("expected wrapped inner error, got %v", err)
	}
}

func vec(n int) []float32 {
	v := make([]float32, n)
	for i := range v {
		v[i] = float32(i) / float32(n)
	}
	return v
}

func TestGenerator_Generate(t *testing.T) {
	g := NewGenerator(&mockEmbedder{result: domain.EmbeddingResult{Embedding: vec(768)}}, 768)

	v, err := g.Generate(context.Background(), "text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(v) != 768 {
		t.Errorf("len = %d", len(v))
	}
}

func TestGenerator_ShapeErrors(t *testing.T) {
	nan := vec(4)
	nan[2] = float32(math.NaN())
	inf := vec(4)
	inf[0] = float32(math.Inf(-1))

	tests := []struct {
		name string
		v    []float32
	}{
		{"empty", nil},
		{"too short", vec(3)},
		{"too long", vec(5)},
		{"nan", nan},
		{"inf", inf},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGenerator(&mockEmbedder{result: domain.EmbeddingResult{Embedding: tt.v}}, 4)
			_, err := g.Generate(context.Background(), "text")

			var ee *domain.EmbeddingError
			if !errors.As(err, &ee) {
				t.Fatalf("expected EmbeddingError, got %v", err)
			}
			if !errors.Is(err, domain.ErrVectorDimMismatch) {
				t.Errorf("expected ErrVectorDimMismatch, got %v", err)
			}
		})
	}
}

func TestGenerator_BackendError(t *testing.T) {
	backendErr := errors.New("503")
	g := NewGenerator(&mockEmbedder{err: backendErr}, 4)

	_, err := g.Generate(context.Background(), "text")
	var ee *domain.EmbeddingError
	if !errors.As(err, &ee) {
		t.Fatalf("expected EmbeddingError, got %v", err)
	}
	if !errors.Is(err, domain.ErrEmbeddingProviderError) || !errors.Is(err, backendErr) {
		t.Errorf("expected provider error wrapping backend error, got %v", err)
	}
}
