package domain

import "errors"

var (
	// ErrMissingConfig marks a required setting that was absent at
	// client construction time. Fatal, never retried.
	ErrMissingConfig = errors.New("missing required configuration")

	// ErrConnection marks an unreachable vector store.
	ErrConnection = errors.New("vector store connection failed")

	// ErrEmptyEmbedding marks an embedding call that produced no
	// vector. Per-item: callers skip the item and continue.
	ErrEmptyEmbedding = errors.New("empty embedding")
)
