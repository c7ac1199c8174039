package batch

import (
	"errors"
	"testing"

	"github.com/kailas-cloud/feedex/internal/domain/classification"
)

func TestRunResult_Add(t *testing.T) {
	var r RunResult

	ok := NewOK(1, classification.Result{Sentiment: classification.Negative, Urgency: classification.Critical})
	ok.Embedded = true
	r.Add(ok)
	r.Add(NewOK(2, classification.Result{Sentiment: classification.Positive, Urgency: classification.Low}))
	r.Add(NewFailed(3, errors.New("write failed")))

	if r.Processed != 3 || r.Successful != 2 || r.Embedded != 1 || r.Failed != 1 {
		t.Errorf("unexpected counts: %+v", r)
	}
	if r.Items[0].Sentiment != classification.Negative || r.Items[0].Urgency != classification.Critical {
		t.Errorf("labels not carried: %+v", r.Items[0])
	}
	if r.Items[2].Error() != "write failed" || r.Items[0].Error() != "" {
		t.Errorf("Error() = %q / %q", r.Items[2].Error(), r.Items[0].Error())
	}
}

func TestIndexResult_Merge(t *testing.T) {
	r := IndexResult{Indexed: 10, Total: 10, Chunks: 1}
	r.Merge(IndexResult{Failed: 10, Total: 10, Chunks: 1, FailedChunks: 1})

	want := IndexResult{Indexed: 10, Failed: 10, Total: 20, Chunks: 2, FailedChunks: 1}
	if r != want {
		t.Errorf("got %+v, want %+v", r, want)
	}
}
