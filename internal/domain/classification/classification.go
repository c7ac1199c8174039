// Package classification holds the labels the classifier assigns to feedback.
package classification

import (
	"math"
	"slices"
	"strings"
)

// Sentiment is categorical polarity.
type Sentiment string

// Sentiment values.
const (
	Positive Sentiment = "positive"
	Neutral  Sentiment = "neutral"
	Negative Sentiment = "negative"
)

// ParseSentiment maps free-form model output onto a Sentiment. Unknown values become Neutral.
func ParseSentiment(s string) Sentiment {
	switch Sentiment(strings.ToLower(strings.TrimSpace(s))) {
	case Positive:
		return Positive
	case Negative:
		return Negative
	default:
		return Neutral
	}
}

// Valid reports whether s is one of the three sentiment values.
func (s Sentiment) Valid() bool {
	return s == Positive || s == Neutral || s == Negative
}

// Urgency is triage severity.
type Urgency string

// Urgency values, lowest first.
const (
	Low      Urgency = "low"
	Medium   Urgency = "medium"
	High     Urgency = "high"
	Critical Urgency = "critical"
)

// Valid reports whether u is a known urgency.
func (u Urgency) Valid() bool {
	return u == Low || u == Medium || u == High || u == Critical
}

// MaxThemes bounds the theme set of one item.
const MaxThemes = 3

// GeneralTheme is assigned when no topic rule matches.
const GeneralTheme = "general"

// Path records which sentiment path produced a Result.
type Path string

// Sentiment paths.
const (
	PathModel    Path = "model"
	PathFallback Path = "fallback"
)

// Result is the output of classifying one text.
type Result struct {
	Sentiment Sentiment
	Score     float64
	Urgency   Urgency
	Themes    []string
	Path      Path
}

// Normalize enforces the label invariants: known sentiment and urgency,
// score clamped to [-1, 1], and 1 to 3 unique lowercase themes.
func (r Result) Normalize() Result {
	if !r.Sentiment.Valid() {
		r.Sentiment = Neutral
	}
	if !r.Urgency.Valid() {
		r.Urgency = Medium
	}
	r.Score = ClampScore(r.Score)
	r.Themes = NormalizeThemes(r.Themes)
	return r
}

// ClampScore bounds a score to [-1, 1]. NaN becomes 0.
func ClampScore(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(-1, math.Min(1, v))
}

// NormalizeThemes lowercases, dedups and truncates themes, keeping first-seen order.
func NormalizeThemes(themes []string) []string {
	out := make([]string, 0, MaxThemes)
	for _, t := range themes {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || slices.Contains(out, t) {
			continue
		}
		out = append(out, t)
		if len(out) == MaxThemes {
			break
		}
	}
	if len(out) == 0 {
		out = append(out, GeneralTheme)
	}
	return out
}
