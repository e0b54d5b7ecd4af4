package search

import "errors"

var (
	// ErrPaperNotFound is returned by Get for an ID that is not in the index.
	ErrPaperNotFound = errors.New("paper not found")

	// ErrUnknownField is returned when a field name is not title, content or tags.
	ErrUnknownField = errors.New("unknown search field")
)
