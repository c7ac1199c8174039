package chi

import (
	"context"

	domanalytics "github.com/kailas-cloud/feedex/internal/domain/analytics"
	"github.com/kailas-cloud/feedex/internal/domain/batch"
	"github.com/kailas-cloud/feedex/internal/domain/classification"
	"github.com/kailas-cloud/feedex/internal/domain/critical"
	domfb "github.com/kailas-cloud/feedex/internal/domain/feedback"
	domsearch "github.com/kailas-cloud/feedex/internal/domain/search"
	feedbackuc "github.com/kailas-cloud/feedex/internal/usecase/feedback"
	healthuc "github.com/kailas-cloud/feedex/internal/usecase/health"
)

// FeedbackService creates and reads raw feedback.
type FeedbackService interface {
	Create(ctx context.Context, in feedbackuc.Input) (domfb.Item, error)
	Get(ctx context.Context, id int64) (domfb.Item, error)
	List(ctx context.Context, f domfb.Filter) (domfb.Page, error)
	Critical(ctx context.Context) ([]critical.Flag, error)
}

// Classifier labels a single text.
type Classifier interface {
	Classify(ctx context.Context, text string) classification.Result
}

// BatchRunner runs one analysis batch.
type BatchRunner interface {
	RunBatch(ctx context.Context) (batch.RunResult, error)
}

// CorpusIndexer re-embeds the whole corpus.
type CorpusIndexer interface {
	IndexAll(ctx context.Context) (batch.IndexResult, error)
}

// Searcher runs semantic search.
type Searcher interface {
	Search(ctx context.Context, query string, k int) ([]domsearch.Match, error)
}

// AnalyticsReader serves the global snapshot.
type AnalyticsReader interface {
	Snapshot(ctx context.Context) (domanalytics.Snapshot, error)
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}
