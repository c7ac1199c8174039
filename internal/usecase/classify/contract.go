package classify

import (
	"context"

	"github.com/kailas-cloud/feedex/internal/domain"
)

// Completer calls the inference service.
type Completer interface {
	Complete(ctx context.Context, req domain.CompletionRequest) (string, error)
}
