// Package analytics computes the aggregate read-model over all feedback.
package analytics

import (
	"cmp"
	"slices"
	"time"

	"github.com/kailas-cloud/feedex/internal/domain/classification"
	"github.com/kailas-cloud/feedex/internal/domain/feedback"
)

const (
	// TopThemes is the number of themes reported, by frequency.
	TopThemes = 5
	// TimelineDays is the length of the daily timeline, ending today.
	TimelineDays = 7
)

// ThemeCount is a theme and how many items carry it.
type ThemeCount struct {
	Theme string `json:"theme"`
	Count int    `json:"count"`
}

// DayCount is the number of items created on one UTC day.
type DayCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// Snapshot is the cached aggregate over the current feedback set.
type Snapshot struct {
	Total        int            `json:"total"`
	Processed    int            `json:"processed"`
	Sentiment    map[string]int `json:"sentiment"`
	Urgency      map[string]int `json:"urgency"`
	AverageScore float64        `json:"average_score"`
	Themes       []ThemeCount   `json:"top_themes"`
	Timeline     []DayCount     `json:"timeline"`
	GeneratedAt  time.Time      `json:"generated_at"`
}

// Build aggregates items as of now. AverageScore covers processed items only.
func Build(items []feedback.Item, now time.Time) Snapshot {
	now = now.UTC()
	s := Snapshot{
		Total: len(items),
		Sentiment: map[string]int{
			string(classification.Positive): 0,
			string(classification.Neutral):  0,
			string(classification.Negative): 0,
		},
		Urgency: map[string]int{
			string(classification.Low):      0,
			string(classification.Medium):   0,
			string(classification.High):     0,
			string(classification.Critical): 0,
		},
		GeneratedAt: now,
	}

	days := make(map[string]int, TimelineDays)
	themes := make(map[string]int)
	var scoreSum float64

	for _, it := range items {
		days[it.CreatedAt().UTC().Format(time.DateOnly)]++

		labels, ok := it.Labels()
		if !ok {
			continue
		}
		s.Processed++
		s.Sentiment[string(labels.Sentiment)]++
		s.Urgency[string(labels.Urgency)]++
		scoreSum += labels.Score
		for _, t := range labels.Themes {
			themes[t]++
		}
	}

	if s.Processed > 0 {
		s.AverageScore = scoreSum / float64(s.Processed)
	}
	s.Themes = topThemes(themes, TopThemes)

	s.Timeline = make([]DayCount, 0, TimelineDays)
	for d := TimelineDays - 1; d >= 0; d-- {
		date := now.AddDate(0, 0, -d).Format(time.DateOnly)
		s.Timeline = append(s.Timeline, DayCount{Date: date, Count: days[date]})
	}
	return s
}

func topThemes(counts map[string]int, n int) []ThemeCount {
	out := make([]ThemeCount, 0, len(counts))
	for t, c := range counts {
		out = append(out, ThemeCount{Theme: t, Count: c})
	}
	slices.SortFunc(out, func(a, b ThemeCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Theme, b.Theme)
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
