// Package batch holds outcomes of batch analysis and indexing runs.
package batch

import "github.com/kailas-cloud/feedex/internal/domain/classification"

// ItemStatus is the processing outcome of a single batch item.
type ItemStatus string

// Batch item status values.
const (
	StatusOK     ItemStatus = "ok"
	StatusFailed ItemStatus = "failed"
)

// ItemResult is the outcome of analyzing one item.
// Embedded is independent of Status: an item can persist and still fail to embed.
type ItemResult struct {
	ID        int64
	Status    ItemStatus
	Embedded  bool
	Skipped   []string // steps the journal reported as already done
	Sentiment classification.Sentiment
	Urgency   classification.Urgency
	Err       error
}

// NewOK creates a result for an item whose labels were committed.
func NewOK(id int64, r classification.Result) ItemResult {
	return ItemResult{ID: id, Status: StatusOK, Sentiment: r.Sentiment, Urgency: r.Urgency}
}

// NewFailed creates a result for an item whose labels were not committed.
func NewFailed(id int64, err error) ItemResult {
	return ItemResult{ID: id, Status: StatusFailed, Err: err}
}

// Error returns the error message, empty when there is none.
func (r ItemResult) Error() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// RunResult summarizes one orchestrator run.
// Failed is always Processed - Successful.
type RunResult struct {
	RunID      string
	Processed  int
	Successful int
	Embedded   int
	Failed     int
	Items      []ItemResult
}

// Add records one item outcome and keeps the counters consistent.
func (r *RunResult) Add(item ItemResult) {
	r.Items = append(r.Items, item)
	r.Processed++
	if item.Status == StatusOK {
		r.Successful++
	}
	if item.Embedded {
		r.Embedded++
	}
	r.Failed = r.Processed - r.Successful
}

// IndexResult summarizes a chunked batch upsert.
type IndexResult struct {
	Indexed      int
	Failed       int
	Total        int
	Chunks       int
	FailedChunks int
}

// Merge folds another result into r.
func (r *IndexResult) Merge(o IndexResult) {
	r.Indexed += o.Indexed
	r.Failed += o.Failed
	r.Total += o.Total
	r.Chunks += o.Chunks
	r.FailedChunks += o.FailedChunks
}
