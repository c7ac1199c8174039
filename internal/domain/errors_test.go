package domain

import (
	"context"
	"errors"
	"testing"
)

func TestTypedErrors_Unwrap(t *testing.T) {
	cause := errors.New("boom")

	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"decode", &DecodeError{Reply: "nope", Err: cause}, ErrMalformedReply},
		{"call", &CallError{Backend: "inference", Err: context.DeadlineExceeded}, context.DeadlineExceeded},
		{"embedding", &EmbeddingError{Err: ErrVectorDimMismatch}, ErrVectorDimMismatch},
		{"persistence", &PersistenceError{ID: 4, Err: cause}, ErrPersistence},
		{"invalidation", &InvalidationError{Key: "k", Err: cause}, ErrInvalidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.sentinel) {
				t.Errorf("errors.Is(%v, %v) = false", tt.err, tt.sentinel)
			}
			if tt.err.Error() == "" {
				t.Error("empty message")
			}
		})
	}

	if !errors.Is(&PersistenceError{ID: 1, Err: cause}, cause) {
		t.Error("PersistenceError should unwrap to its cause")
	}
	var de *DecodeError
	if !errors.As(error(&DecodeError{Reply: "x"}), &de) || de.Reply != "x" {
		t.Error("errors.As should find DecodeError")
	}
}
