// Package store persists fuzz run history so anonymization jobs are auditable.
package store

import (
	"context"
	"time"
)

// Status is the terminal state of a fuzz run.
type Status string

const (
	StatusComplete Status = "complete"
	StatusFailed   Status = "failed"
)

// Run records one fuzz invocation.
type Run struct {
	ID          string    `json:"id"`
	InputFile   string    `json:"input_file"`
	OutputFile  string    `json:"output_file"`
	Encoding    string    `json:"encoding"`
	Radius      float64   `json:"radius"`
	Status      Status    `json:"status"`
	LinesRead   int       `json:"lines_read"`
	LinesFuzzed int       `json:"lines_fuzzed"`
	Warnings    int       `json:"warnings"`
	Errors      int       `json:"errors"`
	CreatedAt   time.Time `json:"created_at"`
}

// RunFilter narrows ListRuns results.
type RunFilter struct {
	Status Status
	Limit  int
}

// Store is the run-history backend.
type Store interface {
	Migrate(ctx context.Context) error
	RecordRun(ctx context.Context, run Run) (*Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]Run, error)
	Close() error
}
