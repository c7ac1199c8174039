package critical

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/kailas-cloud/feedex/internal/domain/critical"
)

type mockStore struct {
	hashes map[string]map[string]string
}

func (m *mockStore) HSet(_ context.Context, key string, fields map[string]string) error {
	m.hashes[key] = fields
	return nil
}

func (m *mockStore) HGetAllMulti(_ context.Context, keys []string) ([]map[string]string, error) {
	out := make([]map[string]string, len(keys))
	for i, k := range keys {
		out[i] = m.hashes[k]
	}
	return out, nil
}

func (m *mockStore) Scan(_ context.Context, pattern string) ([]string, error) {
	var keys []string
	for k := range m.hashes {
		if strings.HasPrefix(k, strings.TrimSuffix(pattern, "*")) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func TestUpsert_ReplacesByFeedbackID(t *testing.T) {
	ms := &mockStore{hashes: make(map[string]map[string]string)}
	r := New(ms)
	ctx := context.Background()
	t0 := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	_ = r.Upsert(ctx, critical.Flag{FeedbackID: 3, Content: "down", Score: -0.9, Themes: []string{"bugs"}, FlaggedAt: t0})
	_ = r.Upsert(ctx, critical.Flag{FeedbackID: 3, Content: "still down", Score: -1, FlaggedAt: t0.Add(time.Hour)})

	flags, err := r.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(flags) != 1 {
		t.Fatalf("expected one flag per item, got %d", len(flags))
	}
	if flags[0].Content != "still down" || flags[0].Score != -1 {
		t.Errorf("unexpected flag %+v", flags[0])
	}
}

func TestList_NewestFirst(t *testing.T) {
	ms := &mockStore{hashes: make(map[string]map[string]string)}
	r := New(ms)
	ctx := context.Background()
	t0 := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	_ = r.Upsert(ctx, critical.Flag{FeedbackID: 1, FlaggedAt: t0})
	_ = r.Upsert(ctx, critical.Flag{FeedbackID: 2, FlaggedAt: t0.Add(2 * time.Hour), Themes: []string{"security", "bugs"}})
	_ = r.Upsert(ctx, critical.Flag{FeedbackID: 3, FlaggedAt: t0.Add(time.Hour)})
	ms.hashes["feedex:crit:bad"] = map[string]string{"feedback_id": "nope"}

	flags, err := r.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []int64{2, 3, 1}
	if len(flags) != len(want) {
		t.Fatalf("expected %d flags, got %d", len(want), len(flags))
	}
	for i, id := range want {
		if flags[i].FeedbackID != id {
			t.Errorf("position %d: got %d, want %d", i, flags[i].FeedbackID, id)
		}
	}
	if len(flags[0].Themes) != 2 || !flags[0].FlaggedAt.Equal(t0.Add(2*time.Hour)) {
		t.Errorf("round trip lost fields: %+v", flags[0])
	}
}

func TestList_Empty(t *testing.T) {
	flags, err := New(&mockStore{hashes: map[string]map[string]string{}}).List(context.Background())
	if err != nil || flags != nil {
		t.Errorf("expected empty, got %v, %v", flags, err)
	}
}
