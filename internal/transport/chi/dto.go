package chi

import (
	"time"

	"github.com/kailas-cloud/feedex/internal/domain/batch"
	"github.com/kailas-cloud/feedex/internal/domain/classification"
	"github.com/kailas-cloud/feedex/internal/domain/critical"
	domfb "github.com/kailas-cloud/feedex/internal/domain/feedback"
	domsearch "github.com/kailas-cloud/feedex/internal/domain/search"
)

// Error codes returned in errorResponse.Code.
const (
	codeBadRequest       = "bad_request"
	codeUnauthorized     = "unauthorized"
	codeNotFound         = "not_found"
	codeValidationFailed = "validation_failed"
	codeDimMismatch      = "vector_dim_mismatch"
	codeRateLimited      = "rate_limited"
	codeEmbeddingError   = "embedding_provider_error"
	codeInferenceError   = "inference_provider_error"
	codeInternalError    = "internal_error"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type createFeedbackRequest struct {
	Source        string     `json:"source"`
	Content       string     `json:"content"`
	Author        string     `json:"author"`
	CreatedAt     *time.Time `json:"created_at,omitempty"`
	AttachmentRef string     `json:"attachment_ref,omitempty"`
}

type classifyRequest struct {
	Text string `json:"text"`
}

type labelsResponse struct {
	Sentiment string   `json:"sentiment"`
	Score     float64  `json:"score"`
	Urgency   string   `json:"urgency"`
	Themes    []string `json:"themes"`
	Path      string   `json:"path,omitempty"`
}

type feedbackResponse struct {
	ID            int64           `json:"id"`
	Source        string          `json:"source"`
	Content       string          `json:"content"`
	Author        string          `json:"author"`
	CreatedAt     time.Time       `json:"created_at"`
	AttachmentRef string          `json:"attachment_ref,omitempty"`
	Processed     bool            `json:"processed"`
	Labels        *labelsResponse `json:"labels,omitempty"`
}

type feedbackListResponse struct {
	Items  []feedbackResponse `json:"items"`
	Total  int                `json:"total"`
	Offset int                `json:"offset"`
	Limit  int                `json:"limit"`
}

type itemRunResponse struct {
	ID        int64    `json:"id"`
	Status    string   `json:"status"`
	Embedded  bool     `json:"embedded"`
	Skipped   []string `json:"skipped,omitempty"`
	Sentiment string   `json:"sentiment,omitempty"`
	Urgency   string   `json:"urgency,omitempty"`
	Error     string   `json:"error,omitempty"`
}

const (
	runCompleted = "completed"
	runCancelled = "cancelled"
)

type runResponse struct {
	RunID      string            `json:"run_id"`
	Status     string            `json:"status"`
	Processed  int               `json:"processed"`
	Successful int               `json:"successful"`
	Embedded   int               `json:"embedded"`
	Failed     int               `json:"failed"`
	Items      []itemRunResponse `json:"items"`
}

type indexResponse struct {
	Indexed      int `json:"indexed"`
	Failed       int `json:"failed"`
	Total        int `json:"total"`
	Chunks       int `json:"chunks"`
	FailedChunks int `json:"failed_chunks"`
}

type matchResponse struct {
	ID         int64   `json:"id"`
	Content    string  `json:"content"`
	Source     string  `json:"source"`
	Similarity float64 `json:"similarity"`
}

type searchResponse struct {
	Query   string          `json:"query"`
	Matches []matchResponse `json:"matches"`
}

type criticalResponse struct {
	FeedbackID int64     `json:"feedback_id"`
	Content    string    `json:"content"`
	Source     string    `json:"source"`
	Author     string    `json:"author"`
	Score      float64   `json:"score"`
	Themes     []string  `json:"themes"`
	FlaggedAt  time.Time `json:"flagged_at"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func labelsToResponse(r classification.Result) *labelsResponse {
	themes := r.Themes
	if themes == nil {
		themes = []string{}
	}
	return &labelsResponse{
		Sentiment: string(r.Sentiment),
		Score:     r.Score,
		Urgency:   string(r.Urgency),
		Themes:    themes,
		Path:      string(r.Path),
	}
}

func feedbackToResponse(it domfb.Item) feedbackResponse {
	resp := feedbackResponse{
		ID:            it.ID(),
		Source:        it.Source(),
		Content:       it.Content(),
		Author:        it.Author(),
		CreatedAt:     it.CreatedAt().UTC(),
		AttachmentRef: it.AttachmentRef(),
		Processed:     it.Processed(),
	}
	if labels, ok := it.Labels(); ok {
		resp.Labels = labelsToResponse(labels)
	}
	return resp
}

func runToResponse(r batch.RunResult) runResponse {
	items := make([]itemRunResponse, len(r.Items))
	for i, it := range r.Items {
		items[i] = itemRunResponse{
			ID:        it.ID,
			Status:    string(it.Status),
			Embedded:  it.Embedded,
			Skipped:   it.Skipped,
			Sentiment: string(it.Sentiment),
			Urgency:   string(it.Urgency),
			Error:     it.Error(),
		}
	}
	return runResponse{
		RunID:      r.RunID,
		Processed:  r.Processed,
		Successful: r.Successful,
		Embedded:   r.Embedded,
		Failed:     r.Failed,
		Items:      items,
	}
}

func indexToResponse(r batch.IndexResult) indexResponse {
	return indexResponse{
		Indexed:      r.Indexed,
		Failed:       r.Failed,
		Total:        r.Total,
		Chunks:       r.Chunks,
		FailedChunks: r.FailedChunks,
	}
}

func matchesToResponse(query string, ms []domsearch.Match) searchResponse {
	out := make([]matchResponse, len(ms))
	for i, m := range ms {
		out[i] = matchResponse{ID: m.ID, Content: m.Content, Source: m.Source, Similarity: m.Similarity}
	}
	return searchResponse{Query: query, Matches: out}
}

func criticalToResponse(f critical.Flag) criticalResponse {
	themes := f.Themes
	if themes == nil {
		themes = []string{}
	}
	return criticalResponse{
		FeedbackID: f.FeedbackID,
		Content:    f.Content,
		Source:     f.Source,
		Author:     f.Author,
		Score:      f.Score,
		Themes:     themes,
		FlaggedAt:  f.FlaggedAt.UTC(),
	}
}
