package analytics

import (
	"math"
	"testing"
	"time"

	"github.com/kailas-cloud/feedex/internal/domain/classification"
	"github.com/kailas-cloud/feedex/internal/domain/feedback"
)

func item(t *testing.T, created time.Time, r *classification.Result) feedback.Item {
	t.Helper()
	it, err := feedback.New("web", "text", "", created)
	if err != nil {
		t.Fatal(err)
	}
	if r != nil {
		it = it.Classified(*r)
	}
	return it
}

func TestBuild(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	items := []feedback.Item{
		item(t, now, &classification.Result{
			Sentiment: classification.Negative, Score: -0.8, Urgency: classification.Critical,
			Themes: []string{"bugs", "performance"},
		}),
		item(t, now.AddDate(0, 0, -1), &classification.Result{
			Sentiment: classification.Positive, Score: 0.6, Urgency: classification.Low,
			Themes: []string{"bugs"},
		}),
		item(t, now.AddDate(0, 0, -30), nil),
	}

	s := Build(items, now)

	if s.Total != 3 || s.Processed != 2 {
		t.Errorf("Total/Processed = %d/%d", s.Total, s.Processed)
	}
	if s.Sentiment["negative"] != 1 || s.Sentiment["positive"] != 1 || s.Sentiment["neutral"] != 0 {
		t.Errorf("Sentiment = %v", s.Sentiment)
	}
	if s.Urgency["critical"] != 1 || s.Urgency["medium"] != 0 {
		t.Errorf("Urgency = %v", s.Urgency)
	}
	if math.Abs(s.AverageScore-(-0.1)) > 1e-9 {
		t.Errorf("AverageScore = %v, want -0.1", s.AverageScore)
	}
	if len(s.Themes) != 2 || s.Themes[0] != (ThemeCount{"bugs", 2}) {
		t.Errorf("Themes = %v", s.Themes)
	}
	if len(s.Timeline) != TimelineDays {
		t.Fatalf("timeline length = %d", len(s.Timeline))
	}
	last := s.Timeline[TimelineDays-1]
	if last.Date != "2026-03-10" || last.Count != 1 {
		t.Errorf("last day = %+v", last)
	}
	if s.Timeline[TimelineDays-2].Count != 1 || s.Timeline[0].Date != "2026-03-04" {
		t.Errorf("timeline = %+v", s.Timeline)
	}
}

func TestBuild_TopThemesTruncatedAndOrdered(t *testing.T) {
	now := time.Now()
	var items []feedback.Item
	for _, th := range [][]string{{"a", "b", "c"}, {"d", "e", "f"}, {"a", "b"}, {"a"}} {
		items = append(items, item(t, now, &classification.Result{Themes: th}))
	}

	s := Build(items, now)
	if len(s.Themes) != TopThemes {
		t.Fatalf("themes = %v", s.Themes)
	}
	want := []string{"a", "b", "c", "d", "e"}
	for i, w := range want {
		if s.Themes[i].Theme != w {
			t.Errorf("Themes[%d] = %q, want %q", i, s.Themes[i].Theme, w)
		}
	}
}

func TestBuild_Empty(t *testing.T) {
	s := Build(nil, time.Now())
	if s.Total != 0 || s.AverageScore != 0 || len(s.Themes) != 0 || len(s.Timeline) != TimelineDays {
		t.Errorf("unexpected empty snapshot: %+v", s)
	}
}
