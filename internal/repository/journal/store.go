// Package journal records completed batch steps so reruns can skip them.
package journal

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/kailas-cloud/feedex/internal/db"
	"github.com/kailas-cloud/feedex/internal/domain"
)

// DefaultTTL bounds how long a completed step is remembered.
const DefaultTTL = 24 * time.Hour

// store is the consumer interface for journal operations (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Store implements the step journal on top of GET + SET EX.
type Store struct {
	store store
	ttl   time.Duration
}

// New creates a journal store. Non-positive ttl falls back to DefaultTTL.
func New(s store, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{store: s, ttl: ttl}
}

func entryKey(id int64, step, digest string) string {
	return domain.KeyPrefix + "journal:" + strconv.FormatInt(id, 10) + ":" + step + ":" + digest
}

// Done reports whether step already completed for this item content.
// The second value is the run that committed it.
func (s *Store) Done(ctx context.Context, id int64, step, digest string) (bool, string, error) {
	key := entryKey(id, step, digest)
	data, err := s.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return false, "", nil
		}
		return false, "", fmt.Errorf("journal GET %s: %w", key, err)
	}
	return true, string(data), nil
}

// Mark records that runID completed step for this item content.
func (s *Store) Mark(ctx context.Context, id int64, step, digest, runID string) error {
	key := entryKey(id, step, digest)
	if err := s.store.SetWithTTL(ctx, key, []byte(runID), s.ttl); err != nil {
		return fmt.Errorf("journal SET %s: %w", key, err)
	}
	return nil
}
