// Package feedback stores feedback items as Redis hashes behind an FT index.
package feedback

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/kailas-cloud/feedex/internal/db"
	"github.com/kailas-cloud/feedex/internal/domain"
	"github.com/kailas-cloud/feedex/internal/domain/classification"
	domfb "github.com/kailas-cloud/feedex/internal/domain/feedback"
)

// store is the consumer interface for feedback (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HSetIfExists(ctx context.Context, key string, fields map[string]string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
	DelMulti(ctx context.Context, keys []string) error
	Incr(ctx context.Context, key string) (int64, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	SearchList(ctx context.Context, q *db.ListQuery) (*db.SearchResult, error)
}

// Repo implements the structured store port over Redis.
type Repo struct {
	store store
}

// New creates a feedback repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

func keyPrefix() string { return domain.KeyPrefix + "fb:" }

func itemKey(id int64) string { return keyPrefix() + strconv.FormatInt(id, 10) }

func seqKey() string { return keyPrefix() + "seq" }

// IndexName is the FT index over feedback hashes.
func IndexName() string { return keyPrefix() + "idx" }

// EnsureIndex creates the feedback index if it does not exist yet.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	def, err := db.NewIndex(IndexName()).
		Prefix(keyPrefix()).
		NumericSortable(fieldID).
		Tag(fieldSource).
		Tag(fieldSentiment).
		Tag(fieldUrgency).
		TagList(fieldThemes, themeSeparator).
		Numeric(fieldProcessed).
		Numeric(fieldCreatedAt).
		Build()
	if err != nil {
		return fmt.Errorf("build feedback index: %w", err)
	}
	if err := r.store.CreateIndex(ctx, def); err != nil && !errors.Is(err, db.ErrIndexExists) {
		return fmt.Errorf("create feedback index: %w", err)
	}
	return nil
}

// Create assigns the next id from the sequence and stores the item.
func (r *Repo) Create(ctx context.Context, it domfb.Item) (domfb.Item, error) {
	id, err := r.store.Incr(ctx, seqKey())
	if err != nil {
		return domfb.Item{}, fmt.Errorf("next id: %w", err)
	}
	it = it.WithID(id)
	if err := r.store.HSet(ctx, itemKey(id), itemFields(it)); err != nil {
		return domfb.Item{}, fmt.Errorf("hset %s: %w", itemKey(id), err)
	}
	return it, nil
}

// Get returns an item by id, or domain.ErrNotFound.
func (r *Repo) Get(ctx context.Context, id int64) (domfb.Item, error) {
	key := itemKey(id)
	m, err := r.store.HGetAll(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domfb.Item{}, domain.ErrNotFound
		}
		return domfb.Item{}, fmt.Errorf("hgetall %s: %w", key, err)
	}
	return parseItem(m)
}

// SaveClassification writes labels and processed=1 in one atomic step.
// A deleted item is reported as domain.ErrNotFound and is never recreated.
func (r *Repo) SaveClassification(ctx context.Context, id int64, res classification.Result) error {
	key := itemKey(id)
	ok, err := r.store.HSetIfExists(ctx, key, labelFields(res))
	if err != nil {
		return fmt.Errorf("hset %s: %w", key, err)
	}
	if !ok {
		return domain.ErrNotFound
	}
	return nil
}

// List returns a filtered page ordered by id.
func (r *Repo) List(ctx context.Context, f domfb.Filter) (domfb.Page, error) {
	q := db.Query{}.
		Tag(fieldSource, f.Source).
		Tag(fieldSentiment, string(f.Sentiment)).
		Tag(fieldUrgency, string(f.Urgency))
	sr, err := r.search(ctx, q, f.Offset, f.Limit)
	if err != nil {
		return domfb.Page{}, err
	}
	items, err := parseItems(sr)
	if err != nil {
		return domfb.Page{}, err
	}
	return domfb.Page{Items: items, Total: sr.Total}, nil
}

// Unprocessed returns up to limit unprocessed items in id order.
func (r *Repo) Unprocessed(ctx context.Context, limit int) ([]domfb.Item, error) {
	sr, err := r.search(ctx, db.Query{}.NumericEq(fieldProcessed, 0), 0, limit)
	if err != nil {
		return nil, err
	}
	return parseItems(sr)
}

// After returns up to limit items with id > afterID, in id order.
func (r *Repo) After(ctx context.Context, afterID int64, limit int) ([]domfb.Item, error) {
	sr, err := r.search(ctx, db.Query{}.NumericAbove(fieldID, afterID), 0, limit)
	if err != nil {
		return nil, err
	}
	return parseItems(sr)
}

// Replace drops every stored item and creates the given ones.
// The id sequence keeps counting so old ids are never reused.
func (r *Repo) Replace(ctx context.Context, items []domfb.Item) ([]domfb.Item, error) {
	keys, err := r.store.Scan(ctx, keyPrefix()+"*")
	if err != nil {
		return nil, fmt.Errorf("scan feedback keys: %w", err)
	}
	var stale []string
	for _, k := range keys {
		if _, err := strconv.ParseInt(strings.TrimPrefix(k, keyPrefix()), 10, 64); err == nil {
			stale = append(stale, k)
		}
	}
	if len(stale) > 0 {
		if err := r.store.DelMulti(ctx, stale); err != nil {
			return nil, fmt.Errorf("delete %d items: %w", len(stale), err)
		}
	}

	out := make([]domfb.Item, 0, len(items))
	for _, it := range items {
		created, err := r.Create(ctx, it)
		if err != nil {
			return out, err
		}
		out = append(out, created)
	}
	return out, nil
}

func (r *Repo) search(ctx context.Context, q db.Query, offset, limit int) (*db.SearchResult, error) {
	sr, err := r.store.SearchList(ctx, &db.ListQuery{
		IndexName: IndexName(),
		Query:     q.String(),
		SortBy:    fieldID,
		Order:     db.SortAsc,
		Offset:    offset,
		Limit:     limit,
	})
	if err != nil {
		if errors.Is(err, db.ErrIndexNotFound) {
			return &db.SearchResult{}, nil
		}
		return nil, fmt.Errorf("search %s: %w", q.String(), err)
	}
	return sr, nil
}

func parseItems(sr *db.SearchResult) ([]domfb.Item, error) {
	items := make([]domfb.Item, 0, len(sr.Entries))
	for _, e := range sr.Entries {
		it, err := parseItem(e.Fields)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", e.Key, err)
		}
		items = append(items, it)
	}
	return items, nil
}
