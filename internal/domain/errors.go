package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput signals a request the caller must fix.
	ErrInvalidInput = errors.New("invalid input")
	// ErrVectorDimMismatch signals a vector of unexpected shape.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrInferenceProviderError signals a chat completion provider failure.
	ErrInferenceProviderError = errors.New("inference provider error")
	// ErrRateLimited signals a provider rate limit hit.
	ErrRateLimited = errors.New("rate limited")
	// ErrMalformedReply signals a model reply that could not be decoded.
	ErrMalformedReply = errors.New("malformed model reply")
	// ErrPersistence signals a failed store write.
	ErrPersistence = errors.New("persistence failed")
	// ErrInvalidation signals a failed cache invalidation.
	ErrInvalidation = errors.New("cache invalidation failed")
)

// DecodeError is a model reply that is not the expected JSON.
type DecodeError struct {
	Reply string
	Err   error
}

func (e *DecodeError) Error() string {
	if e.Err == nil {
		return ErrMalformedReply.Error()
	}
	return fmt.Sprintf("%s: %v", ErrMalformedReply, e.Err)
}

func (e *DecodeError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrMalformedReply}
	}
	return []error{ErrMalformedReply, e.Err}
}

// CallError is a failed call to an inference, embedding or index backend.
type CallError struct {
	Backend string
	Err     error
}

func (e *CallError) Error() string { return e.Backend + " call: " + e.Err.Error() }
func (e *CallError) Unwrap() error { return e.Err }

// EmbeddingError is a backend failure or a malformed embedding.
// It unwraps to ErrEmbeddingProviderError or ErrVectorDimMismatch.
type EmbeddingError struct {
	Err error
}

func (e *EmbeddingError) Error() string { return "embedding: " + e.Err.Error() }
func (e *EmbeddingError) Unwrap() error { return e.Err }

// PersistenceError is a failed write of an item's classification.
type PersistenceError struct {
	ID  int64
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s for item %d: %v", ErrPersistence, e.ID, e.Err)
}

func (e *PersistenceError) Unwrap() []error { return []error{ErrPersistence, e.Err} }

// InvalidationError is a failed analytics cache delete.
type InvalidationError struct {
	Key string
	Err error
}

func (e *InvalidationError) Error() string {
	return fmt.Sprintf("%s (%s): %v", ErrInvalidation, e.Key, e.Err)
}

func (e *InvalidationError) Unwrap() []error { return []error{ErrInvalidation, e.Err} }
