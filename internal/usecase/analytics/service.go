// Package analytics serves the aggregate snapshot through a read-through cache.
package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/feedex/internal/db"
	"github.com/kailas-cloud/feedex/internal/domain"
	domanalytics "github.com/kailas-cloud/feedex/internal/domain/analytics"
	domfb "github.com/kailas-cloud/feedex/internal/domain/feedback"
	"github.com/kailas-cloud/feedex/internal/metrics"
)

// DefaultTTL is how long a computed snapshot stays cached.
const DefaultTTL = 5 * time.Minute

const pageSize = 500

// CacheKey is the single key holding the snapshot.
func CacheKey() string { return domain.KeyPrefix + "analytics:snapshot" }

// Service computes and caches analytics snapshots.
type Service struct {
	items  ItemReader
	cache  Cache
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time
}

// New creates an analytics service.
func New(items ItemReader, cache Cache, ttl time.Duration, logger *zap.Logger) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{items: items, cache: cache, ttl: ttl, logger: logger, now: time.Now}
}

// Snapshot returns the cached snapshot, recomputing it on a miss.
// Cache failures degrade to recomputation; only store read failures are returned.
func (s *Service) Snapshot(ctx context.Context) (domanalytics.Snapshot, error) {
	if snap, ok := s.cached(ctx); ok {
		metrics.AnalyticsCacheTotal.WithLabelValues("hit").Inc()
		return snap, nil
	}
	metrics.AnalyticsCacheTotal.WithLabelValues("miss").Inc()

	items, err := s.loadAll(ctx)
	if err != nil {
		return domanalytics.Snapshot{}, err
	}
	snap := domanalytics.Build(items, s.now())

	data, err := json.Marshal(snap)
	if err != nil {
		return snap, nil
	}
	if err := s.cache.SetWithTTL(ctx, CacheKey(), data, s.ttl); err != nil {
		s.logger.Warn("Analytics cache write failed", zap.Error(err))
	}
	return snap, nil
}

// Invalidate drops the cached snapshot. Failures are *domain.InvalidationError.
func (s *Service) Invalidate(ctx context.Context) error {
	if err := s.cache.Del(ctx, CacheKey()); err != nil {
		return &domain.InvalidationError{Key: CacheKey(), Err: err}
	}
	return nil
}

func (s *Service) cached(ctx context.Context) (domanalytics.Snapshot, bool) {
	data, err := s.cache.Get(ctx, CacheKey())
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			s.logger.Warn("Analytics cache read failed", zap.Error(err))
		}
		return domanalytics.Snapshot{}, false
	}
	var snap domanalytics.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		s.logger.Warn("Discarding corrupt analytics snapshot", zap.Error(err))
		return domanalytics.Snapshot{}, false
	}
	return snap, true
}

func (s *Service) loadAll(ctx context.Context) ([]domfb.Item, error) {
	var all []domfb.Item
	var last int64
	for {
		page, err := s.items.After(ctx, last, pageSize)
		if err != nil {
			return nil, fmt.Errorf("load feedback: %w", err)
		}
		all = append(all, page...)
		if len(page) < pageSize {
			return all, nil
		}
		last = page[len(page)-1].ID()
	}
}
