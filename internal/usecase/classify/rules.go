package classify

import (
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kailas-cloud/feedex/internal/domain/classification"
)

// KeywordSentiment is the deterministic sentiment path.
//
// Hits are counted per occurrence, so a repeated word counts each time.
// More positive hits: positive, 0.4 + 0.15 per hit, capped at 1.
// More negative hits: negative, -0.4 - 0.15 per hit, capped at -1.
// A tie is neutral with 0.1 per hit of difference, which is 0.
// A positive result from at most two hits is halved when a negation word is present,
// and becomes neutral if the halved score drops below 0.3.
func KeywordSentiment(text string) (classification.Sentiment, float64) {
	lower := normalize(text)
	pos := countOccurrences(lower, positiveWords)
	neg := countOccurrences(lower, negativeWords)

	var sentiment classification.Sentiment
	var score float64
	switch {
	case pos > neg:
		sentiment, score = classification.Positive, math.Min(0.4+0.15*float64(pos), 1)
	case neg > pos:
		sentiment, score = classification.Negative, math.Max(-0.4-0.15*float64(neg), -1)
	default:
		sentiment, score = classification.Neutral, 0.1*float64(pos-neg)
	}

	if sentiment == classification.Positive && pos <= 2 && countMatches(lower, negationWords) > 0 {
		score *= 0.5
		if score < 0.3 {
			sentiment = classification.Neutral
		}
	}
	return sentiment, roundScore(score)
}

// Themes returns up to three theme tags in rule order, or {general}.
func Themes(text string) []string {
	lower := normalize(text)
	themes := make([]string, 0, classification.MaxThemes)
	for _, r := range themeRules {
		if countMatches(lower, r.words) == 0 {
			continue
		}
		themes = append(themes, r.theme)
		if len(themes) == classification.MaxThemes {
			break
		}
	}
	if len(themes) == 0 {
		themes = append(themes, classification.GeneralTheme)
	}
	return themes
}

// Urgency walks the ladder critical, high, low and defaults to medium.
func Urgency(text string) classification.Urgency {
	lower := normalize(text)
	for _, tier := range urgencyLadder {
		if countMatches(lower, tier.words) > 0 {
			return tier.level
		}
	}
	return classification.Medium
}

// Rules classifies text with keyword rules only.
func Rules(text string) classification.Result {
	sentiment, score := KeywordSentiment(text)
	return classification.Result{
		Sentiment: sentiment,
		Score:     score,
		Urgency:   Urgency(text),
		Themes:    Themes(text),
		Path:      classification.PathFallback,
	}
}

var quoteFolder = strings.NewReplacer("\u2019", "'", "\u2018", "'")

// normalize lowercases text and folds typographic apostrophes to ASCII.
func normalize(text string) string {
	return quoteFolder.Replace(strings.ToLower(text))
}

// countMatches counts how many words occur in lower as whole words or phrases.
func countMatches(lower string, words []string) int {
	n := 0
	for _, w := range words {
		if containsWord(lower, w) {
			n++
		}
	}
	return n
}

// countOccurrences sums the non-overlapping whole-word hits of every word.
func countOccurrences(lower string, words []string) int {
	n := 0
	for _, w := range words {
		n += wordHits(lower, w, -1)
	}
	return n
}

func containsWord(s, w string) bool {
	return wordHits(s, w, 1) > 0
}

// wordHits counts boundary-checked hits of w in s, stopping at limit when limit > 0.
func wordHits(s, w string, limit int) int {
	if w == "" {
		return 0
	}
	n := 0
	for off := 0; off < len(s); {
		i := strings.Index(s[off:], w)
		if i < 0 {
			break
		}
		start := off + i
		end := start + len(w)
		if !wordCharBefore(s, start) && !wordCharAt(s, end) {
			n++
			if limit > 0 && n >= limit {
				break
			}
			off = end
			continue
		}
		off = start + 1
	}
	return n
}

func isLetterOrDigit(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// wordCharBefore reports whether the rune ending at i continues a word.
// An apostrophe only does so when it sits between two letters, as in "can't".
func wordCharBefore(s string, i int) bool {
	if i <= 0 {
		return false
	}
	r, size := utf8.DecodeLastRuneInString(s[:i])
	if r != '\'' {
		return isLetterOrDigit(r)
	}
	prev, _ := utf8.DecodeLastRuneInString(s[:i-size])
	next, _ := utf8.DecodeRuneInString(s[i:])
	return unicode.IsLetter(prev) && unicode.IsLetter(next)
}

// wordCharAt reports whether the rune starting at i continues a word.
func wordCharAt(s string, i int) bool {
	if i >= len(s) {
		return false
	}
	r, size := utf8.DecodeRuneInString(s[i:])
	if r != '\'' {
		return isLetterOrDigit(r)
	}
	prev, _ := utf8.DecodeLastRuneInString(s[:i])
	next, _ := utf8.DecodeRuneInString(s[i+size:])
	return unicode.IsLetter(prev) && unicode.IsLetter(next)
}

func roundScore(v float64) float64 {
	return math.Round(v*1000) / 1000
}
