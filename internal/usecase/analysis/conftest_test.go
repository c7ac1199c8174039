package analysis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/kailas-cloud/feedex/internal/domain"
	"github.com/kailas-cloud/feedex/internal/domain/classification"
	"github.com/kailas-cloud/feedex/internal/domain/critical"
	domfb "github.com/kailas-cloud/feedex/internal/domain/feedback"
	domvec "github.com/kailas-cloud/feedex/internal/domain/vector"
)

// memStore is an in-memory Store.
type memStore struct {
	mu       sync.Mutex
	items    map[int64]domfb.Item
	failSave map[int64]bool
	fetchErr error
}

func newMemStore(contents ...string) *memStore {
	s := &memStore{items: make(map[int64]domfb.Item), failSave: make(map[int64]bool)}
	for i, c := range contents {
		it, err := domfb.New("email", c, "tester", time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
		if err != nil {
			panic(err)
		}
		s.items[int64(i+1)] = it.WithID(int64(i + 1))
	}
	return s
}

func (s *memStore) Unprocessed(_ context.Context, limit int) ([]domfb.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	var out []domfb.Item
	for _, it := range s.items {
		if !it.Processed() {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memStore) SaveClassification(_ context.Context, id int64, r classification.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failSave[id] {
		return errors.New("write refused")
	}
	it, ok := s.items[id]
	if !ok {
		return domain.ErrNotFound
	}
	s.items[id] = it.Classified(r)
	return nil
}

// countingClassifier returns a fixed result and counts calls.
type countingClassifier struct {
	result classification.Result
	calls  int
	onCall func(n int)
}

func (c *countingClassifier) Classify(_ context.Context, _ string) classification.Result {
	c.calls++
	if c.onCall != nil {
		c.onCall(c.calls)
	}
	return c.result
}

// memIndex records upserts and fails for chosen ids.
type memIndex struct {
	docs   map[int64]domvec.Document
	failOn map[int64]bool
}

func newMemIndex() *memIndex {
	return &memIndex{docs: make(map[int64]domvec.Document), failOn: make(map[int64]bool)}
}

func (m *memIndex) Upsert(_ context.Context, doc domvec.Document) error {
	if m.failOn[doc.ID] {
		return &domain.EmbeddingError{Err: fmt.Errorf("%w: 503", domain.ErrEmbeddingProviderError)}
	}
	m.docs[doc.ID] = doc
	return nil
}

type memJournal struct {
	entries map[string]string
	readErr error
	markErr error
}

func newMemJournal() *memJournal { return &memJournal{entries: make(map[string]string)} }

func (j *memJournal) key(id int64, step, digest string) string {
	return fmt.Sprintf("%d:%s:%s", id, step, digest)
}

func (j *memJournal) Done(_ context.Context, id int64, step, digest string) (bool, string, error) {
	if j.readErr != nil {
		return false, "", j.readErr
	}
	run, ok := j.entries[j.key(id, step, digest)]
	return ok, run, nil
}

func (j *memJournal) Mark(_ context.Context, id int64, step, digest, runID string) error {
	if j.markErr != nil {
		return j.markErr
	}
	j.entries[j.key(id, step, digest)] = runID
	return nil
}

type memFlags struct {
	flags map[int64]critical.Flag
	err   error
}

func (m *memFlags) Upsert(_ context.Context, f critical.Flag) error {
	if m.err != nil {
		return m.err
	}
	m.flags[f.FeedbackID] = f
	return nil
}

type countingInvalidator struct {
	calls int
	err   error
}

func (c *countingInvalidator) Invalidate(_ context.Context) error {
	c.calls++
	return c.err
}

func negativeResult() classification.Result {
	return classification.Result{
		Sentiment: classification.Negative,
		Score:     -0.7,
		Urgency:   classification.High,
		Themes:    []string{"bugs"},
		Path:      classification.PathFallback,
	}
}
