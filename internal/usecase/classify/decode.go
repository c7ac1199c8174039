package classify

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/kailas-cloud/feedex/internal/domain"
	"github.com/kailas-cloud/feedex/internal/domain/classification"
)

var (
	errNoObject     = errors.New("no JSON object in reply")
	errNoSentiment  = errors.New("missing sentiment")
	errInvalidScore = errors.New("missing or non-numeric score")
)

type sentimentReply struct {
	Sentiment *string         `json:"sentiment"`
	Score     json.RawMessage `json:"score"`
}

// decodeSentiment reads {"sentiment": ..., "score": ...} from a model reply.
// Unknown sentiments become neutral and the score is clamped. Any other problem
// is a *domain.DecodeError.
func decodeSentiment(reply string) (classification.Sentiment, float64, error) {
	for _, obj := range jsonObjects(reply) {
		var r sentimentReply
		if err := json.Unmarshal([]byte(obj), &r); err != nil {
			continue
		}
		if r.Sentiment == nil {
			return "", 0, &domain.DecodeError{Reply: reply, Err: errNoSentiment}
		}
		score, err := parseScore(r.Score)
		if err != nil {
			return "", 0, &domain.DecodeError{Reply: reply, Err: err}
		}
		return classification.ParseSentiment(*r.Sentiment), classification.ClampScore(score), nil
	}
	return "", 0, &domain.DecodeError{Reply: reply, Err: errNoObject}
}

// parseScore accepts a JSON number or a numeric string.
func parseScore(raw json.RawMessage) (float64, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, errInvalidScore
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return f, nil
		}
	}
	return 0, fmt.Errorf("%w: %s", errInvalidScore, raw)
}

// jsonObjects returns every balanced {...} candidate in s, in order of appearance.
// Braces inside string literals are ignored. Code fences and prose around the
// object are skipped naturally since only brace-delimited spans are returned.
func jsonObjects(s string) []string {
	var out []string
	for start := strings.IndexByte(s, '{'); start >= 0; {
		end := matchBrace(s, start)
		if end > start {
			out = append(out, s[start:end+1])
		}
		next := strings.IndexByte(s[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return out
}

// matchBrace returns the index of the brace closing s[open], or -1.
func matchBrace(s string, open int) int {
	depth := 0
	inString := false
	escaped := false
	for i := open; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
