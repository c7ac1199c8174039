package embcache

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/kailas-cloud/feedex/internal/domain"
)

func TestEmbed_MissThenHit(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{
		Embedding: []float32{0.1, 0.2, 0.3}, PromptTokens: 10, TotalTokens: 10,
	}}
	ce, ms := newTestCachedEmbedder(t, inner, time.Hour)
	ctx := context.Background()

	first, err := ce.Embed(ctx, "app is laggy")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.TotalTokens != 10 {
		t.Errorf("miss should report inner tokens, got %d", first.TotalTokens)
	}
	if len(ms.setKeys) != 1 || !strings.HasPrefix(ms.setKeys[0], "feedex:emb_cache:") {
		t.Fatalf("unexpected cache writes: %v", ms.setKeys)
	}
	if ms.ttls[ms.setKeys[0]] != time.Hour {
		t.Errorf("ttl = %v", ms.ttls[ms.setKeys[0]])
	}

	second, err := ce.Embed(ctx, "app is laggy")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.callCount != 1 {
		t.Errorf("inner called %d times, want 1", inner.callCount)
	}
	if second.TotalTokens != 0 {
		t.Errorf("hit should report zero tokens, got %d", second.TotalTokens)
	}
	if len(second.Embedding) != 3 || second.Embedding[2] != 0.3 {
		t.Errorf("cached vector = %v", second.Embedding)
	}
}

func TestEmbed_KeyDependsOnModel(t *testing.T) {
	a := New(&mockEmbedder{}, newMockKVStore(), "model-a", 0, nil, nil)
	b := New(&mockEmbedder{}, newMockKVStore(), "model-b", 0, nil, nil)
	if a.cacheKey("x") == b.cacheKey("x") {
		t.Error("cache keys must differ across models")
	}
	if a.cacheKey("x") == a.cacheKey("y") {
		t.Error("cache keys must differ across texts")
	}
}

func TestEmbed_InnerError(t *testing.T) {
	innerErr := errors.New("provider down")
	ce, ms := newTestCachedEmbedder(t, &mockEmbedder{err: innerErr}, 0)

	_, err := ce.Embed(context.Background(), "x")
	if !errors.Is(err, innerErr) {
		t.Errorf("expected wrapped inner error, got %v", err)
	}
	if len(ms.setKeys) != 0 {
		t.Error("errors must not be cached")
	}
}

func TestEmbed_StoreFailuresDegrade(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1}}}
	ce, ms := newTestCachedEmbedder(t, inner, 0)
	ms.getErr = errors.New("redis down")
	ms.setErr = errors.New("redis down")

	res, err := ce.Embed(context.Background(), "x")
	if err != nil {
		t.Fatalf("cache failures must not fail Embed: %v", err)
	}
	if len(res.Embedding) != 1 || inner.callCount != 1 {
		t.Errorf("unexpected result %v / calls %d", res.Embedding, inner.callCount)
	}
}

func TestEmbed_CorruptEntryIsMiss(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1, 2}}}
	ce, ms := newTestCachedEmbedder(t, inner, 0)
	ms.data[ce.cacheKey("x")] = []byte{1, 2, 3}

	res, err := ce.Embed(context.Background(), "x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.callCount != 1 || len(res.Embedding) != 2 {
		t.Errorf("corrupt entry should fall through to inner")
	}
}

func TestEmbed_CountsHitsAndMisses(t *testing.T) {
	counter := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_cache_total"}, []string{"result"})
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1}}}
	ce := New(inner, newMockKVStore(), "m", 0, counter, zap.NewNop())

	_, _ = ce.Embed(context.Background(), "x")
	_, _ = ce.Embed(context.Background(), "x")

	if got := testutil.ToFloat64(counter.WithLabelValues("miss")); got != 1 {
		t.Errorf("miss = %v", got)
	}
	if got := testutil.ToFloat64(counter.WithLabelValues("hit")); got != 1 {
		t.Errorf("hit = %v", got)
	}
}
