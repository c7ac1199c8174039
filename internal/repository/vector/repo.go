// Package vector stores embedding records as Redis hashes under an HNSW index.
package vector

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kailas-cloud/feedex/internal/db"
	"github.com/kailas-cloud/feedex/internal/domain"
	domvec "github.com/kailas-cloud/feedex/internal/domain/vector"
)

const (
	fieldEmbedding = "embedding"
	fieldContent   = "content"
	fieldSource    = "source"
	fieldIndexedAt = "indexed_at"
)

// store is the consumer interface for vector records (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// HNSWConfig holds HNSW index tuning parameters.
type HNSWConfig struct {
	M           int
	EFConstruct int
}

// Repo implements the vector index port over Redis.
type Repo struct {
	store      store
	dimensions int
	hnsw       HNSWConfig
}

// New creates a vector repository for vectors of the given dimension.
func New(s store, dimensions int, hnsw HNSWConfig) *Repo {
	return &Repo{store: s, dimensions: dimensions, hnsw: hnsw}
}

// IndexName is the FT index over vector records.
func IndexName() string { return domain.KeyPrefix + "vec:idx" }

func keyPrefix() string { return domain.KeyPrefix + "vec:" }

func recordKey(id int64) string { return keyPrefix() + strconv.FormatInt(id, 10) }

// EnsureIndex creates the vector index if it does not exist yet.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	def, err := db.NewIndex(IndexName()).
		Prefix(keyPrefix()).
		Tag(fieldSource).
		VectorHNSW(fieldEmbedding, r.dimensions, db.DistanceCosine, r.hnsw.M, r.hnsw.EFConstruct).
		Build()
	if err != nil {
		return fmt.Errorf("build vector index: %w", err)
	}
	if err := r.store.CreateIndex(ctx, def); err != nil && !errors.Is(err, db.ErrIndexExists) {
		return fmt.Errorf("create vector index: %w", err)
	}
	return nil
}

// Upsert writes one record. The last write for an id wins.
func (r *Repo) Upsert(ctx context.Context, rec domvec.Record) error {
	if err := r.checkDim(rec); err != nil {
		return err
	}
	key := recordKey(rec.ID)
	if err := r.store.HSet(ctx, key, recordFields(rec)); err != nil {
		return fmt.Errorf("hset %s: %w", key, err)
	}
	return nil
}

// UpsertMany writes all records in a single transaction.
func (r *Repo) UpsertMany(ctx context.Context, recs []domvec.Record) error {
	if len(recs) == 0 {
		return nil
	}
	items := make([]db.HashSetItem, 0, len(recs))
	for _, rec := range recs {
		if err := r.checkDim(rec); err != nil {
			return err
		}
		items = append(items, db.HashSetItem{Key: recordKey(rec.ID), Fields: recordFields(rec)})
	}
	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("hset %d vector records: %w", len(items), err)
	}
	return nil
}

// Query returns the k nearest records. A missing index yields no matches.
func (r *Repo) Query(ctx context.Context, vec []float32, k int) ([]domvec.Match, error) {
	if len(vec) != r.dimensions {
		return nil, fmt.Errorf("%w: got %d, want %d", domain.ErrVectorDimMismatch, len(vec), r.dimensions)
	}
	sr, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    IndexName(),
		Vector:       vec,
		K:            k,
		ReturnFields: []string{fieldContent, fieldSource},
	})
	if err != nil {
		if errors.Is(err, db.ErrIndexNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("search knn: %w", err)
	}
	return parseMatches(sr), nil
}

func (r *Repo) checkDim(rec domvec.Record) error {
	if len(rec.Vector) != r.dimensions {
		return fmt.Errorf("record %d: %w: got %d, want %d",
			rec.ID, domain.ErrVectorDimMismatch, len(rec.Vector), r.dimensions)
	}
	return nil
}

func recordFields(rec domvec.Record) map[string]string {
	at := rec.IndexedAt
	if at.IsZero() {
		at = time.Now()
	}
	return map[string]string{
		fieldEmbedding: db.EncodeVector(rec.Vector),
		fieldContent:   rec.Content,
		fieldSource:    rec.Source,
		fieldIndexedAt: strconv.FormatInt(at.UnixMilli(), 10),
	}
}

func parseMatches(sr *db.SearchResult) []domvec.Match {
	if sr == nil || len(sr.Entries) == 0 {
		return nil
	}
	out := make([]domvec.Match, 0, len(sr.Entries))
	for _, e := range sr.Entries {
		id, err := strconv.ParseInt(strings.TrimPrefix(e.Key, keyPrefix()), 10, 64)
		if err != nil {
			continue
		}
		out = append(out, domvec.Match{
			ID:      id,
			Score:   e.Score,
			Content: e.Fields[fieldContent],
			Source:  e.Fields[fieldSource],
		})
	}
	return out
}
