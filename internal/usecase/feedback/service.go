// Package feedback implements feedback intake and listing.
package feedback

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/feedex/internal/domain"
	"github.com/kailas-cloud/feedex/internal/domain/critical"
	domfb "github.com/kailas-cloud/feedex/internal/domain/feedback"
)

// Input is one feedback submission.
type Input struct {
	Source        string    `json:"source" yaml:"source"`
	Content       string    `json:"content" yaml:"content"`
	Author        string    `json:"author" yaml:"author"`
	CreatedAt     time.Time `json:"created_at" yaml:"created_at"`
	AttachmentRef string    `json:"attachment_ref" yaml:"attachment_ref"`
}

// Service handles feedback CRUD.
type Service struct {
	repo     Repository
	critical CriticalReader
	cache    Invalidator
	logger   *zap.Logger
}

// New creates a feedback service.
func New(repo Repository, crit CriticalReader, cache Invalidator, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, critical: crit, cache: cache, logger: logger}
}

// Create validates and stores a new unprocessed item.
func (s *Service) Create(ctx context.Context, in Input) (domfb.Item, error) {
	it, err := toItem(in)
	if err != nil {
		return domfb.Item{}, err
	}
	created, err := s.repo.Create(ctx, it)
	if err != nil {
		return domfb.Item{}, fmt.Errorf("create feedback: %w", err)
	}
	s.invalidate(ctx)
	return created, nil
}

// Get returns one item.
func (s *Service) Get(ctx context.Context, id int64) (domfb.Item, error) {
	it, err := s.repo.Get(ctx, id)
	if err != nil {
		return domfb.Item{}, fmt.Errorf("get feedback %d: %w", id, err)
	}
	return it, nil
}

// List returns a filtered page.
func (s *Service) List(ctx context.Context, f domfb.Filter) (domfb.Page, error) {
	f, err := f.Normalize()
	if err != nil {
		return domfb.Page{}, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	page, err := s.repo.List(ctx, f)
	if err != nil {
		return domfb.Page{}, fmt.Errorf("list feedback: %w", err)
	}
	return page, nil
}

// Reseed replaces the whole corpus. Every input is validated before anything is dropped.
// Vector records are left as they are.
func (s *Service) Reseed(ctx context.Context, inputs []Input) (int, error) {
	items := make([]domfb.Item, 0, len(inputs))
	for i, in := range inputs {
		it, err := toItem(in)
		if err != nil {
			return 0, fmt.Errorf("record %d: %w", i, err)
		}
		items = append(items, it)
	}
	created, err := s.repo.Replace(ctx, items)
	if err != nil {
		return len(created), fmt.Errorf("replace feedback: %w", err)
	}
	s.invalidate(ctx)
	s.logger.Info("Feedback reseeded", zap.Int("items", len(created)))
	return len(created), nil
}

// Critical lists critical flags, newest first.
func (s *Service) Critical(ctx context.Context) ([]critical.Flag, error) {
	flags, err := s.critical.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list critical: %w", err)
	}
	return flags, nil
}

func (s *Service) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("Analytics invalidation failed", zap.Error(err))
	}
}

func toItem(in Input) (domfb.Item, error) {
	it, err := domfb.New(in.Source, in.Content, in.Author, in.CreatedAt)
	if err != nil {
		return domfb.Item{}, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	if in.AttachmentRef != "" {
		it = it.WithAttachment(in.AttachmentRef)
	}
	return it, nil
}
