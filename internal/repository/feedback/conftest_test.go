package feedback

import (
	"context"
	"strings"

	"github.com/kailas-cloud/feedex/internal/db"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	hashes    map[string]map[string]string
	seq       int64
	indexes   []*db.IndexDefinition
	lastList  *db.ListQuery
	deleted   []string
	hsetErr   error
	searchFn  func(ctx context.Context, q *db.ListQuery) (*db.SearchResult, error)
	createErr error

	// beforeWrite runs inside HSetIfExists ahead of the existence check.
	beforeWrite func(key string)
}

func newMockStore() *mockStore {
	return &mockStore{hashes: make(map[string]map[string]string)}
}

func (m *mockStore) HSet(_ context.Context, key string, fields map[string]string) error {
	if m.hsetErr != nil {
		return m.hsetErr
	}
	h, ok := m.hashes[key]
	if !ok {
		h = make(map[string]string)
		m.hashes[key] = h
	}
	for k, v := range fields {
		h[k] = v
	}
	return nil
}

func (m *mockStore) HGetAll(_ context.Context, key string) (map[string]string, error) {
	h, ok := m.hashes[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return h, nil
}

func (m *mockStore) HSetIfExists(ctx context.Context, key string, fields map[string]string) (bool, error) {
	if m.beforeWrite != nil {
		m.beforeWrite(key)
	}
	if _, ok := m.hashes[key]; !ok {
		return false, nil
	}
	return true, m.HSet(ctx, key, fields)
}

func (m *mockStore) Scan(_ context.Context, pattern string) ([]string, error) {
	prefix := strings.TrimSuffix(pattern, "*")
	keys := []string{prefix + "seq"}
	for k := range m.hashes {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func (m *mockStore) DelMulti(_ context.Context, keys []string) error {
	for _, k := range keys {
		delete(m.hashes, k)
	}
	m.deleted = append(m.deleted, keys...)
	return nil
}

func (m *mockStore) Incr(_ context.Context, _ string) (int64, error) {
	m.seq++
	return m.seq, nil
}

func (m *mockStore) CreateIndex(_ context.Context, def *db.IndexDefinition) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.indexes = append(m.indexes, def)
	return nil
}

func (m *mockStore) SearchList(ctx context.Context, q *db.ListQuery) (*db.SearchResult, error) {
	m.lastList = q
	if m.searchFn != nil {
		return m.searchFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}
