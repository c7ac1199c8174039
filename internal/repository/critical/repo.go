// Package critical stores CriticalFlags as Redis hashes keyed by feedback id.
package critical

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/kailas-cloud/feedex/internal/domain"
	"github.com/kailas-cloud/feedex/internal/domain/critical"
)

// store is the consumer interface for critical flags (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Repo persists critical flags.
type Repo struct {
	store store
}

// New creates a critical flag repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

func keyPrefix() string { return domain.KeyPrefix + "crit:" }

// Upsert writes the flag, replacing any earlier flag for the same feedback item.
func (r *Repo) Upsert(ctx context.Context, f critical.Flag) error {
	key := keyPrefix() + strconv.FormatInt(f.FeedbackID, 10)
	fields := map[string]string{
		"feedback_id": strconv.FormatInt(f.FeedbackID, 10),
		"content":     f.Content,
		"source":      f.Source,
		"author":      f.Author,
		"score":       strconv.FormatFloat(f.Score, 'f', -1, 64),
		"themes":      strings.Join(f.Themes, ","),
		"flagged_at":  strconv.FormatInt(f.FlaggedAt.UnixMilli(), 10),
	}
	if err := r.store.HSet(ctx, key, fields); err != nil {
		return fmt.Errorf("hset %s: %w", key, err)
	}
	return nil
}

// List returns all flags, newest first.
func (r *Repo) List(ctx context.Context) ([]critical.Flag, error) {
	keys, err := r.store.Scan(ctx, keyPrefix()+"*")
	if err != nil {
		return nil, fmt.Errorf("scan critical flags: %w", err)
	}
	if len(keys) == 0 {
		return nil, nil
	}
	rows, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("load critical flags: %w", err)
	}

	flags := make([]critical.Flag, 0, len(rows))
	for _, m := range rows {
		if m == nil {
			continue
		}
		f, err := parseFlag(m)
		if err != nil {
			continue
		}
		flags = append(flags, f)
	}
	sort.Slice(flags, func(i, j int) bool {
		if !flags[i].FlaggedAt.Equal(flags[j].FlaggedAt) {
			return flags[i].FlaggedAt.After(flags[j].FlaggedAt)
		}
		return flags[i].FeedbackID > flags[j].FeedbackID
	})
	return flags, nil
}

func parseFlag(m map[string]string) (critical.Flag, error) {
	id, err := strconv.ParseInt(m["feedback_id"], 10, 64)
	if err != nil {
		return critical.Flag{}, fmt.Errorf("parse feedback_id: %w", err)
	}
	f := critical.Flag{
		FeedbackID: id,
		Content:    m["content"],
		Source:     m["source"],
		Author:     m["author"],
	}
	f.Score, _ = strconv.ParseFloat(m["score"], 64)
	if t := m["themes"]; t != "" {
		f.Themes = strings.Split(t, ",")
	}
	if ms, err := strconv.ParseInt(m["flagged_at"], 10, 64); err == nil {
		f.FlaggedAt = time.UnixMilli(ms).UTC()
	}
	return f, nil
}
