package domain

import "context"

// CompletionRequest is a single-turn chat completion.
type CompletionRequest struct {
	System      string
	User        string
	Temperature float32
	MaxTokens   int
}

// Completer is the inference service contract: messages in, reply text out.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}
