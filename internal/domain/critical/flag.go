// Package critical holds the high-priority view over critical feedback.
package critical

import "time"

// Flag mirrors a feedback item classified as critical. Keyed by FeedbackID:
// re-analysis overwrites the flag instead of appending a duplicate.
type Flag struct {
	FeedbackID int64
	Content    string
	Source     string
	Author     string
	Score      float64
	Themes     []string
	FlaggedAt  time.Time
}
