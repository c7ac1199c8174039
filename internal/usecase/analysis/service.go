// Package analysis runs batch classification over unprocessed feedback.
package analysis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/feedex/internal/domain"
	"github.com/kailas-cloud/feedex/internal/domain/batch"
	"github.com/kailas-cloud/feedex/internal/domain/classification"
	"github.com/kailas-cloud/feedex/internal/domain/critical"
	domfb "github.com/kailas-cloud/feedex/internal/domain/feedback"
	domvec "github.com/kailas-cloud/feedex/internal/domain/vector"
	"github.com/kailas-cloud/feedex/internal/metrics"
)

// DefaultBatchSize is the number of items fetched per run.
const DefaultBatchSize = 10

// Journaled steps.
const (
	StepPersist = "persist"
	StepEmbed   = "embed"
)

// Service orchestrates one batch run: fetch, then per item analyze, persist
// and embed, then invalidate analytics.
type Service struct {
	store      Store
	classifier Classifier
	indexer    Indexer
	journal    Journal
	flags      CriticalFlags
	cache      Invalidator
	batchSize  int
	logger     *zap.Logger
	now        func() time.Time
	newRunID   func() string
}

// Option configures the service.
type Option func(*Service)

// WithJournal enables step journaling.
func WithJournal(j Journal) Option { return func(s *Service) { s.journal = j } }

// WithCriticalFlags enables the critical view.
func WithCriticalFlags(f CriticalFlags) Option { return func(s *Service) { s.flags = f } }

// WithBatchSize overrides DefaultBatchSize.
func WithBatchSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// New creates the orchestrator.
func New(
	store Store, classifier Classifier, indexer Indexer, cache Invalidator,
	logger *zap.Logger, opts ...Option,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		store:      store,
		classifier: classifier,
		indexer:    indexer,
		cache:      cache,
		batchSize:  DefaultBatchSize,
		logger:     logger,
		now:        time.Now,
		newRunID:   uuid.NewString,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// RunBatch processes up to the batch size of unprocessed items in id order.
// Per-item failures are reported in the result. The returned error is a
// fetch failure or the context error when the run was cancelled between items.
func (s *Service) RunBatch(ctx context.Context) (batch.RunResult, error) {
	res := batch.RunResult{RunID: s.newRunID()}
	log := s.logger.With(zap.String("run_id", res.RunID))

	items, err := s.store.Unprocessed(ctx, s.batchSize)
	if err != nil {
		return res, fmt.Errorf("fetch unprocessed: %w", err)
	}
	if len(items) == 0 {
		log.Info("Batch run: nothing to do")
		return res, nil
	}

	var runErr error
	for _, it := range items {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		res.Add(s.processItem(ctx, log, res.RunID, it))
	}

	if res.Processed > 0 {
		if err := s.cache.Invalidate(context.WithoutCancel(ctx)); err != nil {
			log.Warn("Analytics invalidation failed", zap.Error(err))
		}
	}

	log.Info("Batch run finished",
		zap.Int("fetched", len(items)),
		zap.Int("processed", res.Processed),
		zap.Int("successful", res.Successful),
		zap.Int("embedded", res.Embedded),
		zap.Int("failed", res.Failed),
		zap.Bool("cancelled", runErr != nil),
	)
	return res, runErr
}

func (s *Service) processItem(ctx context.Context, log *zap.Logger, runID string, it domfb.Item) batch.ItemResult {
	id := it.ID()
	digest := contentDigest(it.Content())
	log = log.With(zap.Int64("feedback_id", id))

	var out batch.ItemResult
	if s.journaled(ctx, log, id, StepPersist, digest) {
		out = batch.ItemResult{ID: id, Status: batch.StatusOK, Skipped: []string{StepPersist}}
		metrics.BatchItemsTotal.WithLabelValues(StepPersist, "skipped").Inc()
	} else {
		labels := s.classifier.Classify(ctx, it.Content()).Normalize()
		if err := s.store.SaveClassification(ctx, id, labels); err != nil {
			metrics.BatchItemsTotal.WithLabelValues(StepPersist, "failed").Inc()
			perr := &domain.PersistenceError{ID: id, Err: err}
			log.Warn("Persist failed", zap.Error(perr))
			return batch.NewFailed(id, perr)
		}
		metrics.BatchItemsTotal.WithLabelValues(StepPersist, "ok").Inc()
		s.mark(ctx, log, id, StepPersist, digest, runID)

		out = batch.NewOK(id, labels)
		if labels.Urgency == classification.Critical {
			s.flagCritical(ctx, log, it, labels)
		}
	}

	if s.journaled(ctx, log, id, StepEmbed, digest) {
		out.Embedded = true
		out.Skipped = append(out.Skipped, StepEmbed)
		metrics.BatchItemsTotal.WithLabelValues(StepEmbed, "skipped").Inc()
		return out
	}
	doc := domvec.Document{ID: id, Content: it.Content(), Source: it.Source()}
	if err := s.indexer.Upsert(ctx, doc); err != nil {
		metrics.BatchItemsTotal.WithLabelValues(StepEmbed, "failed").Inc()
		log.Warn("Embedding failed", zap.Error(err))
		out.Err = err
		return out
	}
	metrics.BatchItemsTotal.WithLabelValues(StepEmbed, "ok").Inc()
	s.mark(ctx, log, id, StepEmbed, digest, runID)
	out.Embedded = true
	return out
}

// journaled reports a committed step. Journal failures read as "not done".
func (s *Service) journaled(ctx context.Context, log *zap.Logger, id int64, step, digest string) bool {
	if s.journal == nil {
		return false
	}
	done, by, err := s.journal.Done(ctx, id, step, digest)
	if err != nil {
		log.Warn("Journal read failed", zap.String("step", step), zap.Error(err))
		return false
	}
	if done {
		log.Debug("Step already committed", zap.String("step", step), zap.String("by_run", by))
	}
	return done
}

func (s *Service) mark(ctx context.Context, log *zap.Logger, id int64, step, digest, runID string) {
	if s.journal == nil {
		return
	}
	if err := s.journal.Mark(ctx, id, step, digest, runID); err != nil {
		log.Warn("Journal write failed", zap.String("step", step), zap.Error(err))
	}
}

func (s *Service) flagCritical(ctx context.Context, log *zap.Logger, it domfb.Item, r classification.Result) {
	if s.flags == nil {
		return
	}
	err := s.flags.Upsert(ctx, critical.Flag{
		FeedbackID: it.ID(),
		Content:    it.Content(),
		Source:     it.Source(),
		Author:     it.Author(),
		Score:      r.Score,
		Themes:     r.Themes,
		FlaggedAt:  s.now().UTC(),
	})
	if err != nil {
		log.Warn("Critical flag write failed", zap.Error(err))
	}
}

func contentDigest(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:8])
}
