package feedback

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/kailas-cloud/feedex/internal/domain"
	"github.com/kailas-cloud/feedex/internal/domain/classification"
	"github.com/kailas-cloud/feedex/internal/domain/critical"
	domfb "github.com/kailas-cloud/feedex/internal/domain/feedback"
)

type mockRepo struct {
	items      []domfb.Item
	lastFilter domfb.Filter
	replaced   int
	createErr  error
}

func (m *mockRepo) Create(_ context.Context, it domfb.Item) (domfb.Item, error) {
	if m.createErr != nil {
		return domfb.Item{}, m.createErr
	}
	it = it.WithID(int64(len(m.items) + 1))
	m.items = append(m.items, it)
	return it, nil
}

func (m *mockRepo) Get(_ context.Context, id int64) (domfb.Item, error) {
	for _, it := range m.items {
		if it.ID() == id {
			return it, nil
		}
	}
	return domfb.Item{}, domain.ErrNotFound
}

func (m *mockRepo) List(_ context.Context, f domfb.Filter) (domfb.Page, error) {
	m.lastFilter = f
	return domfb.Page{Items: m.items, Total: len(m.items)}, nil
}

func (m *mockRepo) Replace(ctx context.Context, items []domfb.Item) ([]domfb.Item, error) {
	m.replaced++
	m.items = nil
	out := make([]domfb.Item, 0, len(items))
	for _, it := range items {
		c, _ := m.Create(ctx, it)
		out = append(out, c)
	}
	return out, nil
}

type mockCritical struct{ flags []critical.Flag }

func (m *mockCritical) List(context.Context) ([]critical.Flag, error) { return m.flags, nil }

type mockInvalidator struct {
	calls int
	err   error
}

func (m *mockInvalidator) Invalidate(context.Context) error {
	m.calls++
	return m.err
}

func TestCreate(t *testing.T) {
	repo := &mockRepo{}
	inv := &mockInvalidator{}
	svc := New(repo, &mockCritical{}, inv, nil)

	it, err := svc.Create(context.Background(), Input{
		Source: " Email ", Content: "Checkout page is slow", AttachmentRef: "att-1",
		CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if it.ID() != 1 || it.Source() != "email" || it.AttachmentRef() != "att-1" || it.Processed() {
		t.Errorf("unexpected item %+v", it.State())
	}
	if inv.calls != 1 {
		t.Errorf("create must invalidate analytics, calls = %d", inv.calls)
	}
}

func TestCreate_Validation(t *testing.T) {
	svc := New(&mockRepo{}, &mockCritical{}, &mockInvalidator{}, nil)
	for _, content := range []string{"", "   ", strings.Repeat("x", domfb.MaxContentSize+1)} {
		if _, err := svc.Create(context.Background(), Input{Content: content}); !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("content len %d: expected ErrInvalidInput, got %v", len(content), err)
		}
	}
}

func TestCreate_InvalidationFailureIgnored(t *testing.T) {
	inv := &mockInvalidator{err: &domain.InvalidationError{Key: "k", Err: errors.New("timeout")}}
	if _, err := New(&mockRepo{}, &mockCritical{}, inv, nil).Create(context.Background(), Input{Content: "x"}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestGet_NotFound(t *testing.T) {
	_, err := New(&mockRepo{}, &mockCritical{}, &mockInvalidator{}, nil).Get(context.Background(), 7)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestList_NormalizesFilter(t *testing.T) {
	repo := &mockRepo{}
	svc := New(repo, &mockCritical{}, &mockInvalidator{}, nil)

	if _, err := svc.List(context.Background(), domfb.Filter{Source: "EMAIL", Limit: 1000}); err != nil {
		t.Fatalf("List: %v", err)
	}
	if repo.lastFilter.Source != "email" || repo.lastFilter.Limit != domfb.MaxListLimit {
		t.Errorf("unexpected filter %+v", repo.lastFilter)
	}

	_, err := svc.List(context.Background(), domfb.Filter{Sentiment: classification.Sentiment("angry")})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestReseed(t *testing.T) {
	repo := &mockRepo{}
	inv := &mockInvalidator{}
	svc := New(repo, &mockCritical{}, inv, nil)
	_, _ = svc.Create(context.Background(), Input{Content: "old"})

	n, err := svc.Reseed(context.Background(), []Input{{Content: "a"}, {Content: "b", Source: "survey"}})
	if err != nil {
		t.Fatalf("Reseed: %v", err)
	}
	if n != 2 || len(repo.items) != 2 || repo.items[1].Source() != "survey" {
		t.Errorf("unexpected corpus after reseed: %d items", len(repo.items))
	}
	if inv.calls != 2 {
		t.Errorf("reseed must invalidate, calls = %d", inv.calls)
	}
}

func TestReseed_RejectsBeforeDropping(t *testing.T) {
	repo := &mockRepo{}
	svc := New(repo, &mockCritical{}, &mockInvalidator{}, nil)
	_, _ = svc.Create(context.Background(), Input{Content: "keep me"})

	_, err := svc.Reseed(context.Background(), []Input{{Content: "ok"}, {Content: ""}})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if repo.replaced != 0 || len(repo.items) != 1 {
		t.Error("invalid input must not touch the corpus")
	}
}

func TestCritical(t *testing.T) {
	crit := &mockCritical{flags: []critical.Flag{{FeedbackID: 2}, {FeedbackID: 1}}}
	flags, err := New(&mockRepo{}, crit, &mockInvalidator{}, nil).Critical(context.Background())
	if err != nil || len(flags) != 2 || flags[0].FeedbackID != 2 {
		t.Errorf("unexpected flags %+v, %v", flags, err)
	}
}
