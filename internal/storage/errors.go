package storage

import "errors"

var (
	ErrQdrantUnreachable = errors.New("qdrant server unreachable")
	ErrPaperNotFound     = errors.New("paper not found in vector store")
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)
