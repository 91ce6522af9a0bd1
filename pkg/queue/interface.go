package queue

import (
	"errors"

	"insights/pkg/schema"
)

var (
	ErrFull    = errors.New("queue is full")
	ErrStopped = errors.New("queue is stopped")
)

// Result is the outcome of one queued analysis.
type Result struct {
	Analysis schema.Analysis
	Err      error
}

type Queue interface {
	Start()
	Stop()
	Add(url string) (<-chan Result, error)
}
