// Package repository persists the audit trail of pipeline runs.
package repository

import (
	"context"

	"github.com/okian/matchbot/internal/domain/model"
)

// RunLog stores one record per pipeline execution.
type RunLog interface {
	// Record saves run. Recording the same ID again replaces the earlier record.
	Record(ctx context.Context, run model.Run) error

	// Get returns the run with id, or ErrNotFound.
	Get(ctx context.Context, id string) (model.Run, error)

	// Recent returns up to n runs, newest first.
	Recent(ctx context.Context, n int) ([]model.Run, error)

	// Count returns the number of stored runs.
	Count(ctx context.Context) (int, error)
}
