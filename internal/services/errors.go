package services

import "errors"

var (
	ErrAwardNotFound    = errors.New("award not found")
	ErrSummaryNotFound  = errors.New("summary not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrInvalidSummary   = errors.New("year_start must not be after year_end")

	// ErrBatchRejected is returned when any pair of a reorder batch cannot be
	// applied. Nothing from the batch has been written when it is returned.
	ErrBatchRejected = errors.New("reorder batch rejected")
)
